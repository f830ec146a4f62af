package game

import (
	"github.com/pokebattle/battle-server-go/internal/game/rules"
)

// Guard predicates are pure functions over GameState with no side effects.
// The phase machine records whatever transition it is told; these decide
// whether a caller may ask for one.

// CanAdvanceFromSetup reports whether the pre-deal setup work is done: both
// hands dealt and mulligan-qualified (or the mulligan ceiling exhausted).
func CanAdvanceFromSetup(s *GameState) bool {
	if s == nil || s.Phase != rules.PhaseSetup {
		return false
	}
	for _, seat := range []Seat{SeatHuman, SeatOpponent} {
		p := s.Player(seat)
		if len(p.Hand) == 0 {
			return false
		}
	}
	return true
}

// CanAdvanceFromPokemonSelection reports whether both sides have completed
// initial placement: the dual-readiness gate. The two flags become true
// independently and in either order; this predicate is re-checked after every
// relevant event rather than triggered once.
func CanAdvanceFromPokemonSelection(s *GameState) bool {
	if s == nil || s.Phase != rules.PhaseInitialPokemonSelection {
		return false
	}
	return s.CPUSetupReady && s.SetupSelection.Confirmed
}

// CanEnterAttackPhase reports whether the turn player may move into the
// attack phase: an active pokemon exists and no attack has been declared yet.
// Whether the attack's cost is payable is the rules engine's call, made at
// declaration time.
func CanEnterAttackPhase(s *GameState) bool {
	if s == nil {
		return false
	}
	switch s.Phase {
	case rules.PhaseHumanMain, rules.PhaseOpponentMain:
	default:
		return false
	}
	if s.TurnState.HasAttacked {
		return false
	}
	return s.Player(s.TurnPlayer).Active != nil
}

// CanEndTurn reports whether the turn player may hand over the turn: the
// mandatory draw happened and nothing is pending resolution.
func CanEndTurn(s *GameState) bool {
	if s == nil {
		return false
	}
	switch s.Phase {
	case rules.PhaseHumanMain, rules.PhaseHumanAttack, rules.PhaseOpponentMain, rules.PhaseOpponentAttack:
	default:
		return false
	}
	if s.PendingAction != nil || s.KnockoutContext != nil {
		return false
	}
	return s.TurnState.HasDrawn
}

// drawPhaseFor returns the draw phase owned by seat.
func drawPhaseFor(seat Seat) rules.Phase {
	if seat == SeatHuman {
		return rules.PhaseHumanDraw
	}
	return rules.PhaseOpponentDraw
}

// mainPhaseFor returns the main phase owned by seat.
func mainPhaseFor(seat Seat) rules.Phase {
	if seat == SeatHuman {
		return rules.PhaseHumanMain
	}
	return rules.PhaseOpponentMain
}

// attackPhaseFor returns the attack phase owned by seat.
func attackPhaseFor(seat Seat) rules.Phase {
	if seat == SeatHuman {
		return rules.PhaseHumanAttack
	}
	return rules.PhaseOpponentAttack
}

// seatOwnsPhase reports whether a phase belongs to seat's turn flow.
func seatOwnsPhase(seat Seat, p rules.Phase) bool {
	switch p {
	case rules.PhaseHumanDraw, rules.PhaseHumanMain, rules.PhaseHumanAttack:
		return seat == SeatHuman
	case rules.PhaseOpponentDraw, rules.PhaseOpponentMain, rules.PhaseOpponentAttack:
		return seat == SeatOpponent
	}
	return false
}
