package game

import (
	"fmt"

	"github.com/pokebattle/battle-server-go/internal/game/rules"
)

// Action is a user-facing action identifier surfaced to the presentation
// layer alongside the phase prompt.
type Action string

const (
	ActionPlaceActive  Action = "place_active"
	ActionPlaceBench   Action = "place_bench"
	ActionConfirmSetup Action = "confirm_setup"
	ActionDraw         Action = "draw"
	ActionAttachEnergy Action = "attach_energy"
	ActionEvolve       Action = "evolve"
	ActionRetreat      Action = "retreat"
	ActionAttack       Action = "attack"
	ActionEndTurn      Action = "end_turn"
	ActionTakePrize    Action = "take_prize"
	ActionPromote      Action = "promote"
)

// PhasePrompt is a pure projection of (phase, state) into user-facing text.
// It never mutates state.
func PhasePrompt(s *GameState) string {
	if s == nil {
		return ""
	}
	switch s.Phase {
	case rules.PhaseSetup:
		return "Shuffling decks and dealing hands..."
	case rules.PhaseInitialPokemonSelection:
		if !s.SetupSelection.ActivePlaced {
			return "Choose a Basic pokemon for your active spot"
		}
		if !s.SetupSelection.Confirmed {
			return "Add Basic pokemon to your bench, then confirm"
		}
		return "Waiting for your opponent to finish setup..."
	case rules.PhasePrizeCardSetup:
		return "Setting out prize cards..."
	case rules.PhaseGameStartReady:
		return "Both sides ready. The battle begins!"
	case rules.PhaseHumanDraw:
		return "Draw a card to start your turn"
	case rules.PhaseHumanMain:
		return "Your turn: play cards, attach energy, or attack"
	case rules.PhaseHumanAttack:
		return "Choose an attack"
	case rules.PhaseOpponentDraw, rules.PhaseOpponentMain, rules.PhaseOpponentAttack:
		return "Opponent is thinking..."
	case rules.PhaseAwaitingNewActive:
		if s.PendingNewActive == SeatHuman {
			return "Your active pokemon was knocked out. Choose a replacement from your bench"
		}
		return "Opponent is choosing a new active pokemon..."
	case rules.PhasePrizeSelection:
		p := s.Player(s.PrizeTaker)
		if s.PrizeTaker == SeatHuman {
			return fmt.Sprintf("Take %d prize card(s)", p.PrizesToTake)
		}
		return "Opponent is taking prize cards..."
	case rules.PhaseGameOver:
		if s.Winner == SeatHuman {
			return "You win!"
		}
		return "You lose..."
	}
	return ""
}

// AvailableActions is a pure projection of (phase, state) into the set of
// actions the human may currently take.
func AvailableActions(s *GameState) []Action {
	if s == nil {
		return nil
	}
	var actions []Action
	switch s.Phase {
	case rules.PhaseInitialPokemonSelection:
		if !s.SetupSelection.ActivePlaced {
			actions = append(actions, ActionPlaceActive)
		} else if !s.SetupSelection.Confirmed {
			actions = append(actions, ActionPlaceBench, ActionConfirmSetup)
		}
	case rules.PhaseHumanDraw:
		if s.TurnState.AllowDraw() {
			actions = append(actions, ActionDraw)
		}
	case rules.PhaseHumanMain:
		if s.TurnState.AllowEnergyAttach() {
			actions = append(actions, ActionAttachEnergy)
		}
		actions = append(actions, ActionEvolve)
		active := s.Player(SeatHuman).Active
		if active != nil && s.TurnState.AllowRetreat(len(active.AttachedEnergy), active.RetreatCost) &&
			s.Player(SeatHuman).BenchedCount() > 0 {
			actions = append(actions, ActionRetreat)
		}
		if CanEnterAttackPhase(s) {
			actions = append(actions, ActionAttack)
		}
		if CanEndTurn(s) {
			actions = append(actions, ActionEndTurn)
		}
	case rules.PhaseHumanAttack:
		actions = append(actions, ActionAttack, ActionEndTurn)
	case rules.PhasePrizeSelection:
		if s.PrizeTaker == SeatHuman && s.Player(SeatHuman).PrizesToTake > 0 {
			actions = append(actions, ActionTakePrize)
		}
	case rules.PhaseAwaitingNewActive:
		if s.PendingNewActive == SeatHuman {
			actions = append(actions, ActionPromote)
		}
	}
	return actions
}
