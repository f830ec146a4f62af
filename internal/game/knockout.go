package game

import (
	"github.com/pokebattle/battle-server-go/internal/game/rules"
)

// resolveKnockouts moves a defeated active pokemon to its owner's discard,
// computes the prizes owed to the attacker, and opens the prize-selection
// sub-phase. Call after damage has been applied and the turn handover
// completed, so the side branches resume into the next player's draw.
func resolveKnockouts(s *GameState, re RulesEngine, attacker Seat) {
	defender := attacker.Other()
	p := s.Player(defender)
	if p.Active == nil || !p.Active.KnockedOut() {
		return
	}

	defeated := p.Active
	prizes := re.PrizesForKnockout(defeated)
	p.Active = nil
	p.Discard = append(p.Discard, stripBattleState(defeated))
	for _, e := range defeated.AttachedEnergy {
		p.Discard = append(p.Discard, e)
	}

	s.KnockoutContext = &KnockoutContext{
		DefeatedOwner: defender,
		PrizesOwed:    prizes,
	}
	s.Player(attacker).PrizesToTake = prizes
	s.PrizeTaker = attacker
	s.ResumePhase = s.Phase
	s.SetPhase(rules.PhasePrizeSelection)
}

// doTakePrize takes one prize slot for the seat owed prizes. Draining
// prizesToTake moves the flow on: to AWAITING_NEW_ACTIVE when the knockout
// emptied the defender's active slot, otherwise straight back to normal turn
// flow.
func doTakePrize(s *GameState, seat Seat, re RulesEngine, index int) error {
	if s.Phase != rules.PhasePrizeSelection {
		return reject(ReasonWrongPhase, "no prize selection in progress")
	}
	if s.PrizeTaker != seat {
		return reject(ReasonNotYourTurn, "%s is not owed prizes", seat)
	}
	p := s.Player(seat)
	if p.PrizesToTake <= 0 {
		return reject(ReasonNoPrizesOwed, "no prizes left to take")
	}

	next, err := re.TakePrizeCard(s, seat, index)
	if err != nil {
		return err
	}
	*s = *next

	p = s.Player(seat)
	p.PrizesToTake--

	checkGameEnd(s)
	if s.Phase == rules.PhaseGameOver {
		return nil
	}
	if p.PrizesToTake > 0 {
		return nil
	}
	finishPrizeSelection(s)
	return nil
}

// finishPrizeSelection leaves the prize sub-phase once every owed prize is
// taken.
func finishPrizeSelection(s *GameState) {
	s.PrizeTaker = ""
	defender := SeatHuman
	if s.KnockoutContext != nil {
		defender = s.KnockoutContext.DefeatedOwner
	}

	if s.Player(defender).Active == nil {
		s.PendingNewActive = defender
		s.SetPhase(rules.PhaseAwaitingNewActive)
		return
	}
	closeKnockout(s)
}

// doPromoteActive moves the chosen bench pokemon into the empty active slot
// and returns control to normal turn flow.
func doPromoteActive(s *GameState, seat Seat, benchIndex int) error {
	if s.Phase != rules.PhaseAwaitingNewActive {
		return reject(ReasonWrongPhase, "no replacement selection in progress")
	}
	if s.PendingNewActive != seat {
		return reject(ReasonNotYourTurn, "%s does not need a new active", seat)
	}
	if benchIndex < 0 || benchIndex >= BenchSize {
		return reject(ReasonBadIndex, "bench index %d out of range", benchIndex)
	}
	p := s.Player(seat)
	if p.Active != nil {
		return reject(ReasonSlotOccupied, "active slot is already filled")
	}
	chosen := p.Bench[benchIndex]
	if chosen == nil {
		return reject(ReasonEmptySlot, "bench slot %d is empty", benchIndex)
	}

	p.Bench[benchIndex] = nil
	p.Active = chosen
	s.PendingNewActive = ""
	closeKnockout(s)
	return nil
}

// closeKnockout clears the knockout context and resumes the recorded phase.
func closeKnockout(s *GameState) {
	s.KnockoutContext = nil
	resume := s.ResumePhase
	s.ResumePhase = 0
	if resume == rules.PhaseSetup {
		// No recorded resumption; fall back to the turn player's draw.
		resume = drawPhaseFor(s.TurnPlayer)
	}
	s.SetPhase(resume)
}
