package game

import (
	"time"
)

// CardView is the presentation-layer shape of one card. Face-down cards and
// hidden zones expose only position, never identity.
type CardView struct {
	ID             string   `json:"id,omitempty"`
	RuntimeID      string   `json:"runtime_id,omitempty"`
	Name           string   `json:"name,omitempty"`
	Kind           CardKind `json:"kind,omitempty"`
	Stage          Stage    `json:"stage,omitempty"`
	HP             int      `json:"hp,omitempty"`
	Damage         int      `json:"damage"`
	EnergyType     string   `json:"energy_type,omitempty"`
	Attacks        []Attack `json:"attacks,omitempty"`
	RetreatCost    int      `json:"retreat_cost,omitempty"`
	AttachedEnergy int      `json:"attached_energy"`
	FaceDown       bool     `json:"face_down"`
}

// PlayerView is one side of the board as the viewer may see it.
type PlayerView struct {
	Seat           Seat        `json:"seat"`
	DeckCount      int         `json:"deck_count"`
	HandCount      int         `json:"hand_count"`
	Hand           []CardView  `json:"hand,omitempty"`
	Active         *CardView   `json:"active,omitempty"`
	Bench          []*CardView `json:"bench"`
	DiscardCount   int         `json:"discard_count"`
	Discard        []CardView  `json:"discard"`
	PrizeRemaining int         `json:"prize_remaining"`
	PrizesToTake   int         `json:"prizes_to_take"`
}

// GameView is the full state projection pushed to the presentation layer.
type GameView struct {
	GameID     string     `json:"game_id"`
	Phase      string     `json:"phase"`
	Prompt     string     `json:"prompt"`
	Actions    []Action   `json:"actions"`
	Turn       int        `json:"turn"`
	TurnPlayer Seat       `json:"turn_player"`
	You        PlayerView `json:"you"`
	Rival      PlayerView `json:"rival"`
	Winner     Seat       `json:"winner,omitempty"`
	EndReason  EndReason  `json:"end_reason,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// BuildView projects state for the given viewer seat, hiding the other
// side's hand and everything face down.
func BuildView(s *GameState, viewer Seat) GameView {
	v := GameView{
		GameID:     s.GameID,
		Phase:      s.Phase.String(),
		Turn:       s.Turn,
		TurnPlayer: s.TurnPlayer,
		Winner:     s.Winner,
		EndReason:  s.GameEndReason,
		Timestamp:  time.Now(),
	}
	if viewer == SeatHuman {
		v.Prompt = PhasePrompt(s)
		v.Actions = AvailableActions(s)
	}
	v.You = buildPlayerView(s.Player(viewer), viewer, true)
	v.Rival = buildPlayerView(s.Player(viewer.Other()), viewer.Other(), false)
	return v
}

func buildPlayerView(p *PlayerState, seat Seat, own bool) PlayerView {
	pv := PlayerView{
		Seat:           seat,
		DeckCount:      len(p.Deck),
		HandCount:      len(p.Hand),
		DiscardCount:   len(p.Discard),
		PrizeRemaining: p.PrizeRemaining,
		PrizesToTake:   p.PrizesToTake,
		Discard:        make([]CardView, 0, len(p.Discard)),
		Bench:          make([]*CardView, len(p.Bench)),
	}
	if own {
		pv.Hand = make([]CardView, 0, len(p.Hand))
		for _, c := range p.Hand {
			pv.Hand = append(pv.Hand, cardView(c, true))
		}
	}
	if p.Active != nil {
		cv := cardView(p.Active, own)
		pv.Active = &cv
	}
	for i, c := range p.Bench {
		if c != nil {
			cv := cardView(c, own)
			pv.Bench[i] = &cv
		}
	}
	// The discard is public information for both sides.
	for _, c := range p.Discard {
		pv.Discard = append(pv.Discard, cardView(c, true))
	}
	return pv
}

func cardView(c *Card, reveal bool) CardView {
	if c.FaceDown && !reveal {
		return CardView{RuntimeID: c.RuntimeID, FaceDown: true}
	}
	return CardView{
		ID:             c.ID,
		RuntimeID:      c.RuntimeID,
		Name:           c.Name,
		Kind:           c.Kind,
		Stage:          c.Stage,
		HP:             c.HP,
		Damage:         c.Damage,
		EnergyType:     c.EnergyType,
		Attacks:        c.Attacks,
		RetreatCost:    c.RetreatCost,
		AttachedEnergy: len(c.AttachedEnergy),
		FaceDown:       c.FaceDown,
	}
}
