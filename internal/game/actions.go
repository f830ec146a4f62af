package game

import (
	"github.com/pokebattle/battle-server-go/internal/game/rules"
)

// The functions in this file are the in-place mutation bodies the engine
// submits through the pipeline. Each one guards legality first and only then
// edits the state it was handed (always a clone of the canonical state).

// checkTurnAccess rejects actions out of phase or out of turn.
func checkTurnAccess(s *GameState, seat Seat, allowed ...rules.Phase) error {
	if s.Phase == rules.PhaseGameOver {
		return reject(ReasonGameOver, "the game has ended")
	}
	ok := false
	for _, p := range allowed {
		if s.Phase == p {
			ok = true
			break
		}
	}
	if !ok {
		return reject(ReasonWrongPhase, "action not available during %s", s.Phase)
	}
	if seatOwnsPhase(seat.Other(), s.Phase) || (s.TurnPlayer != seat && !s.Phase.Setup()) {
		return reject(ReasonNotYourTurn, "it is not %s's turn", seat)
	}
	return nil
}

// doDraw executes the mandatory turn draw and advances into the main phase.
func doDraw(s *GameState, seat Seat) error {
	if err := checkTurnAccess(s, seat, drawPhaseFor(seat)); err != nil {
		return err
	}
	if !s.TurnState.AllowDraw() {
		return reject(ReasonAlreadyDrawn, "already drew this turn")
	}
	p := s.Player(seat)
	if len(p.Deck) == 0 {
		return reject(ReasonEmptyDeck, "deck is empty")
	}
	card := p.Deck[0]
	p.Deck = p.Deck[1:]
	card.FaceDown = false
	p.Hand = append(p.Hand, card)
	s.TurnState.HasDrawn = true
	s.SetPhase(mainPhaseFor(seat))
	return nil
}

// doStartAttachEnergy opens the attach-energy pending action: an energy card
// is selected, a target pokemon is awaited.
func doStartAttachEnergy(s *GameState, seat Seat, energyID string) error {
	if err := checkTurnAccess(s, seat, mainPhaseFor(seat)); err != nil {
		return err
	}
	if s.PendingAction != nil {
		return reject(ReasonPendingAction, "another action is awaiting a selection")
	}
	if !s.TurnState.AllowEnergyAttach() {
		return reject(ReasonEnergyLimit, "only one energy may be attached per turn")
	}
	_, card := findCard(s.Player(seat).Hand, energyID)
	if card == nil {
		return reject(ReasonCardNotFound, "energy card %s not in hand", energyID)
	}
	if card.Kind != KindEnergy {
		return reject(ReasonCardNotFound, "%s is not an energy card", card.Name)
	}
	s.PendingAction = &PendingAction{
		Kind:         PendingAttachEnergy,
		SourceCardID: card.RuntimeID,
		EnergyType:   card.EnergyType,
	}
	return nil
}

// doCompleteAttachEnergy resolves the pending attach onto the chosen target.
func doCompleteAttachEnergy(s *GameState, seat Seat, targetID string) error {
	if err := checkTurnAccess(s, seat, mainPhaseFor(seat)); err != nil {
		return err
	}
	pa := s.PendingAction
	if pa == nil || pa.Kind != PendingAttachEnergy {
		return reject(ReasonPendingAction, "no energy attachment in progress")
	}
	p := s.Player(seat)
	handIdx, energy := findCard(p.Hand, pa.SourceCardID)
	if energy == nil {
		s.PendingAction = nil
		return reject(ReasonCardNotFound, "pending energy card left the hand")
	}

	var target *Card
	if p.Active != nil && (p.Active.RuntimeID == targetID || p.Active.ID == targetID) {
		target = p.Active
	} else if _, c := findCard(p.Bench, targetID); c != nil {
		target = c
	}
	if target == nil {
		return reject(ReasonCardNotFound, "no pokemon %s in play on your side", targetID)
	}

	p.Hand = append(p.Hand[:handIdx], p.Hand[handIdx+1:]...)
	target.AttachedEnergy = append(target.AttachedEnergy, energy)
	s.TurnState.EnergyAttached++
	s.PendingAction = nil
	return nil
}

// doCancelPending drops an outstanding pending action with no other change.
func doCancelPending(s *GameState, seat Seat) error {
	if s.PendingAction == nil {
		return reject(ReasonPendingAction, "nothing to cancel")
	}
	s.PendingAction = nil
	return nil
}

// doEvolve delegates evolution legality and mechanics to the rules engine.
func doEvolve(s *GameState, seat Seat, re RulesEngine, cardID string, zone Zone, index int) error {
	if err := checkTurnAccess(s, seat, mainPhaseFor(seat)); err != nil {
		return err
	}
	next, err := re.EvolvePokemon(s, seat, cardID, zone, index)
	if err != nil {
		return err
	}
	*s = *next
	return nil
}

// doStartRetreat opens the retreat pending action: the bench replacement is
// awaited.
func doStartRetreat(s *GameState, seat Seat) error {
	if err := checkTurnAccess(s, seat, mainPhaseFor(seat)); err != nil {
		return err
	}
	if s.PendingAction != nil {
		return reject(ReasonPendingAction, "another action is awaiting a selection")
	}
	p := s.Player(seat)
	if p.Active == nil {
		return reject(ReasonEmptySlot, "no active pokemon to retreat")
	}
	if p.BenchedCount() == 0 {
		return reject(ReasonRetreatBlocked, "no benched pokemon to switch in")
	}
	if !s.TurnState.AllowRetreat(len(p.Active.AttachedEnergy), p.Active.RetreatCost) {
		return reject(ReasonRetreatBlocked, "retreat is not available")
	}
	s.PendingAction = &PendingAction{Kind: PendingRetreatPromote}
	return nil
}

// doCompleteRetreat swaps the active with the chosen bench pokemon, paying
// the retreat cost in discarded energy.
func doCompleteRetreat(s *GameState, seat Seat, benchIndex int) error {
	if err := checkTurnAccess(s, seat, mainPhaseFor(seat)); err != nil {
		return err
	}
	pa := s.PendingAction
	if pa == nil || pa.Kind != PendingRetreatPromote {
		return reject(ReasonPendingAction, "no retreat in progress")
	}
	if benchIndex < 0 || benchIndex >= BenchSize {
		return reject(ReasonBadIndex, "bench index %d out of range", benchIndex)
	}
	p := s.Player(seat)
	replacement := p.Bench[benchIndex]
	if replacement == nil {
		return reject(ReasonEmptySlot, "bench slot %d is empty", benchIndex)
	}
	retreating := p.Active

	// Pay the retreat cost from attached energy.
	cost := retreating.RetreatCost
	if cost > len(retreating.AttachedEnergy) {
		cost = len(retreating.AttachedEnergy)
	}
	for _, e := range retreating.AttachedEnergy[:cost] {
		p.Discard = append(p.Discard, e)
	}
	retreating.AttachedEnergy = retreating.AttachedEnergy[cost:]

	p.Active = replacement
	p.Bench[benchIndex] = retreating
	s.TurnState.CanRetreat = false
	s.PendingAction = nil
	return nil
}

// doAttack declares an attack with the active pokemon: damage is applied by
// the rules engine, knockouts are resolved, and the turn ends.
func doAttack(s *GameState, seat Seat, re RulesEngine, attackIndex int) error {
	if err := checkTurnAccess(s, seat, mainPhaseFor(seat), attackPhaseFor(seat)); err != nil {
		return err
	}
	if s.PendingAction != nil {
		return reject(ReasonPendingAction, "resolve the pending selection first")
	}
	attacker := s.Player(seat).Active
	if attacker == nil {
		return reject(ReasonEmptySlot, "no active pokemon")
	}
	if attackIndex < 0 || attackIndex >= len(attacker.Attacks) {
		return reject(ReasonBadIndex, "attack index %d out of range", attackIndex)
	}
	attack := attacker.Attacks[attackIndex]
	if !s.TurnState.AllowAttack(re.HasEnoughEnergy(attacker, attack)) {
		if s.TurnState.HasAttacked {
			return reject(ReasonAlreadyAttacked, "already attacked this turn")
		}
		return reject(ReasonCostUnpayable, "not enough energy for %s", attack.Name)
	}

	defenderActive := s.Player(seat.Other()).Active
	if defenderActive == nil {
		return reject(ReasonEmptySlot, "no defending pokemon")
	}

	s.SetPhase(attackPhaseFor(seat))
	next, err := re.ApplyDamage(s, defenderActive.RuntimeID, attack.Damage)
	if err != nil {
		return err
	}
	*s = *next
	s.TurnState.HasAttacked = true

	// In this game an attack always ends the turn. Hand the turn over first
	// so that knockout side branches resume into the next player's draw.
	endTurn(s)
	resolveKnockouts(s, re, seat)
	checkGameEnd(s)
	return nil
}

// doEndTurn passes the turn without attacking.
func doEndTurn(s *GameState, seat Seat) error {
	if err := checkTurnAccess(s, seat, mainPhaseFor(seat), attackPhaseFor(seat)); err != nil {
		return err
	}
	if !CanEndTurn(s) {
		return reject(ReasonWrongPhase, "the turn cannot end yet")
	}
	endTurn(s)
	return nil
}

// endTurn hands the turn to the other seat with a brand-new turn state.
func endTurn(s *GameState) {
	s.TurnState = s.TurnState.Next()
	s.Turn = s.TurnState.TurnNumber
	s.TurnPlayer = s.TurnPlayer.Other()
	s.PendingAction = nil
	s.SetPhase(drawPhaseFor(s.TurnPlayer))
}

// checkGameEnd stamps the winner and moves to GAME_OVER when a win condition
// holds. Re-run after every prize take and every knockout.
func checkGameEnd(s *GameState) {
	if s.Phase == rules.PhaseGameOver {
		return
	}
	if result := EvaluateGameEnd(s); result != nil {
		s.Winner = result.Winner
		s.GameEndReason = result.Reason
		s.KnockoutContext = nil
		s.PendingAction = nil
		s.SetPhase(rules.PhaseGameOver)
	}
}
