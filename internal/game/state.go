package game

import (
	"github.com/pokebattle/battle-server-go/internal/game/rules"
)

// DeckSize is the legal deck list length.
const DeckSize = 60

// BenchSize is the number of bench slots each player owns.
const BenchSize = 5

// PrizeCount is the number of prize cards dealt to each side at game start.
const PrizeCount = 6

// Seat identifies one of the two players.
type Seat string

const (
	SeatHuman    Seat = "human"
	SeatOpponent Seat = "opponent"
)

// Other returns the opposing seat.
func (s Seat) Other() Seat {
	if s == SeatHuman {
		return SeatOpponent
	}
	return SeatHuman
}

// Zone identifies a placement target on a player's board.
type Zone string

const (
	ZoneActive Zone = "active"
	ZoneBench  Zone = "bench"
)

// PendingKind tags the variant of a pending action.
type PendingKind string

const (
	PendingAttachEnergy   PendingKind = "attach_energy"
	PendingRetreatPromote PendingKind = "retreat_promote"
)

// PendingAction is a tagged union describing a started-but-unfinished player
// action awaiting a follow-up selection. At most one may be outstanding.
type PendingAction struct {
	Kind PendingKind `json:"kind"`

	// AttachEnergy variant.
	SourceCardID string `json:"source_card_id,omitempty"`
	EnergyType   string `json:"energy_type,omitempty"`
}

// KnockoutContext is present only between a knockout and its full resolution.
type KnockoutContext struct {
	DefeatedOwner Seat `json:"defeated_owner"`
	PrizesOwed    int  `json:"prizes_owed"`
}

// SetupSelection tracks the human side of the setup rendezvous.
type SetupSelection struct {
	ActivePlaced bool `json:"active_placed"`
	Confirmed    bool `json:"confirmed"`
}

// EndReason enumerates why a game ended.
type EndReason string

const (
	EndReasonPrizes    EndReason = "prizes"
	EndReasonNoPokemon EndReason = "no_pokemon"
)

// PlayerState is one side of the board. Deck top is index 0. Bench always has
// exactly BenchSize slots (nil = empty); prize has at most PrizeCount slots.
type PlayerState struct {
	Deck           []*Card `json:"deck"`
	Hand           []*Card `json:"hand"`
	Active         *Card   `json:"active,omitempty"`
	Bench          []*Card `json:"bench"`
	Discard        []*Card `json:"discard"`
	Prize          []*Card `json:"prize"`
	PrizeRemaining int     `json:"prize_remaining"`
	PrizesToTake   int     `json:"prizes_to_take"`
	MulliganCount  int     `json:"mulligan_count"`
}

// NewPlayerState builds an empty player state with the fixed board shape.
func NewPlayerState() *PlayerState {
	return &PlayerState{
		Deck:    make([]*Card, 0),
		Hand:    make([]*Card, 0),
		Bench:   make([]*Card, BenchSize),
		Discard: make([]*Card, 0),
		Prize:   make([]*Card, 0),
	}
}

// BenchedCount returns the number of occupied bench slots.
func (p *PlayerState) BenchedCount() int {
	n := 0
	for _, c := range p.Bench {
		if c != nil {
			n++
		}
	}
	return n
}

// FirstBenchIndex returns the lowest occupied bench index, or -1.
func (p *PlayerState) FirstBenchIndex() int {
	for i, c := range p.Bench {
		if c != nil {
			return i
		}
	}
	return -1
}

// HasBasic reports whether the hand contains at least one Basic pokemon.
func (p *PlayerState) HasBasic() bool {
	for _, c := range p.Hand {
		if c.Basic() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the player state.
func (p *PlayerState) Clone() *PlayerState {
	if p == nil {
		return nil
	}
	return &PlayerState{
		Deck:           cloneCards(p.Deck),
		Hand:           cloneCards(p.Hand),
		Active:         p.Active.Clone(),
		Bench:          cloneCards(p.Bench),
		Discard:        cloneCards(p.Discard),
		Prize:          cloneCards(p.Prize),
		PrizeRemaining: p.PrizeRemaining,
		PrizesToTake:   p.PrizesToTake,
		MulliganCount:  p.MulliganCount,
	}
}

// GameState is the single root of all mutable game data. It is owned
// exclusively by the mutation pipeline; every other component reads a deep
// copy or submits a mutation. Accepted mutations replace the state with an
// edited clone, never edit in place.
type GameState struct {
	GameID        string                `json:"game_id"`
	Turn          int                   `json:"turn"`
	Phase         rules.Phase           `json:"phase"`
	PreviousPhase rules.Phase           `json:"previous_phase"`
	TurnPlayer    Seat                  `json:"turn_player"`
	TurnState     rules.TurnState       `json:"turn_state"`
	Players       map[Seat]*PlayerState `json:"players"`

	PendingAction   *PendingAction   `json:"pending_action,omitempty"`
	KnockoutContext *KnockoutContext `json:"knockout_context,omitempty"`

	SetupSelection SetupSelection `json:"setup_selection"`
	CPUSetupReady  bool           `json:"cpu_setup_ready"`

	// PrizeTaker is the seat currently owed prize selections, set while the
	// phase is PRIZE_SELECTION.
	PrizeTaker Seat `json:"prize_taker,omitempty"`
	// PendingNewActive is the seat that must promote a bench pokemon, set
	// while the phase is AWAITING_NEW_ACTIVE.
	PendingNewActive Seat `json:"pending_new_active,omitempty"`
	// ResumePhase records where normal turn flow resumes after the knockout
	// side branches complete.
	ResumePhase rules.Phase `json:"resume_phase,omitempty"`

	Winner        Seat      `json:"winner,omitempty"`
	GameEndReason EndReason `json:"game_end_reason,omitempty"`
}

// NewGameState creates the initial state for a fresh game: decks built and
// shuffled by the caller, zero cards dealt, setup phase.
func NewGameState(gameID string) *GameState {
	return &GameState{
		GameID:     gameID,
		Turn:       1,
		Phase:      rules.PhaseSetup,
		TurnPlayer: SeatHuman,
		TurnState:  rules.NewTurnState(1),
		Players: map[Seat]*PlayerState{
			SeatHuman:    NewPlayerState(),
			SeatOpponent: NewPlayerState(),
		},
	}
}

// Player returns the state for seat, creating an empty one for a malformed
// state rather than returning nil.
func (s *GameState) Player(seat Seat) *PlayerState {
	if s.Players == nil {
		s.Players = make(map[Seat]*PlayerState)
	}
	p, ok := s.Players[seat]
	if !ok || p == nil {
		p = NewPlayerState()
		s.Players[seat] = p
	}
	return p
}

// SetPhase moves the state to next, recording the phase being left.
func (s *GameState) SetPhase(next rules.Phase) {
	s.PreviousPhase = s.Phase
	s.Phase = next
}

// Clone returns a deep copy of the entire game state.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	out := *s
	out.Players = make(map[Seat]*PlayerState, len(s.Players))
	for seat, p := range s.Players {
		out.Players[seat] = p.Clone()
	}
	if s.PendingAction != nil {
		pa := *s.PendingAction
		out.PendingAction = &pa
	}
	if s.KnockoutContext != nil {
		kc := *s.KnockoutContext
		out.KnockoutContext = &kc
	}
	return &out
}
