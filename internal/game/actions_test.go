package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokebattle/battle-server-go/internal/game/rules"
)

func attacker(id string, damage int) *Card {
	return &Card{
		ID:        id,
		RuntimeID: "r-" + id,
		Name:      id,
		Kind:      KindPokemon,
		Stage:     StageBasic,
		HP:        60,
		Attacks: []Attack{
			{Name: "Tackle", Cost: []string{"colorless"}, Damage: damage},
		},
		RetreatCost: 1,
	}
}

func withEnergy(c *Card, n int) *Card {
	for i := 0; i < n; i++ {
		c.AttachedEnergy = append(c.AttachedEnergy, energyCard(i))
	}
	return c
}

// drawPhaseState builds a game at the start of the human's turn with stocked
// decks and full prize racks on both sides.
func drawPhaseState() *GameState {
	s := midGameState()
	s.Phase = rules.PhaseHumanDraw
	s.TurnPlayer = SeatHuman
	s.TurnState = rules.NewTurnState(3)
	s.Turn = 3
	for _, seat := range []Seat{SeatHuman, SeatOpponent} {
		s.Player(seat).Deck = testDeck(string(seat), 10)
	}
	return s
}

func TestDrawMovesTopCardAndAdvancesPhase(t *testing.T) {
	s := drawPhaseState()
	top := s.Player(SeatHuman).Deck[0]

	require.NoError(t, doDraw(s, SeatHuman))
	assert.Equal(t, rules.PhaseHumanMain, s.Phase)
	assert.True(t, s.TurnState.HasDrawn)
	p := s.Player(SeatHuman)
	assert.Equal(t, top.RuntimeID, p.Hand[len(p.Hand)-1].RuntimeID)

	err := doDraw(s, SeatHuman)
	re, ok := IsRejected(err)
	require.True(t, ok)
	assert.Equal(t, ReasonWrongPhase, re.Reason)
}

func TestDrawRejectedOutOfTurn(t *testing.T) {
	s := drawPhaseState()
	err := doDraw(s, SeatOpponent)
	_, ok := IsRejected(err)
	assert.True(t, ok)
}

func TestDrawRejectedOnEmptyDeck(t *testing.T) {
	s := drawPhaseState()
	s.Player(SeatHuman).Deck = nil

	err := doDraw(s, SeatHuman)
	re, ok := IsRejected(err)
	require.True(t, ok)
	assert.Equal(t, ReasonEmptyDeck, re.Reason)
}

func mainPhaseState() *GameState {
	s := drawPhaseState()
	s.Phase = rules.PhaseHumanMain
	s.TurnState.HasDrawn = true
	return s
}

func TestAttachEnergyTwoStepFlow(t *testing.T) {
	s := mainPhaseState()
	p := s.Player(SeatHuman)
	energy := energyCard(0)
	p.Hand = append(p.Hand, energy)

	require.NoError(t, doStartAttachEnergy(s, SeatHuman, energy.RuntimeID))
	require.NotNil(t, s.PendingAction)
	assert.Equal(t, PendingAttachEnergy, s.PendingAction.Kind)
	assert.Equal(t, energy.RuntimeID, s.PendingAction.SourceCardID)

	require.NoError(t, doCompleteAttachEnergy(s, SeatHuman, p.Active.RuntimeID))
	assert.Nil(t, s.PendingAction)
	assert.Equal(t, 1, s.TurnState.EnergyAttached)
	assert.Len(t, s.Player(SeatHuman).Active.AttachedEnergy, 1)
}

func TestAttachEnergyOncePerTurn(t *testing.T) {
	s := mainPhaseState()
	p := s.Player(SeatHuman)
	first, second := energyCard(0), energyCard(1)
	p.Hand = append(p.Hand, first, second)

	require.NoError(t, doStartAttachEnergy(s, SeatHuman, first.RuntimeID))
	require.NoError(t, doCompleteAttachEnergy(s, SeatHuman, p.Active.RuntimeID))

	err := doStartAttachEnergy(s, SeatHuman, second.RuntimeID)
	re, ok := IsRejected(err)
	require.True(t, ok)
	assert.Equal(t, ReasonEnergyLimit, re.Reason)
}

func TestPendingActionIsExclusive(t *testing.T) {
	s := mainPhaseState()
	p := s.Player(SeatHuman)
	p.Bench[0] = basicPokemon("bench-buddy")
	energy := energyCard(0)
	p.Hand = append(p.Hand, energy)
	withEnergy(p.Active, 1)

	require.NoError(t, doStartAttachEnergy(s, SeatHuman, energy.RuntimeID))
	err := doStartRetreat(s, SeatHuman)
	re, ok := IsRejected(err)
	require.True(t, ok)
	assert.Equal(t, ReasonPendingAction, re.Reason)

	require.NoError(t, doCancelPending(s, SeatHuman))
	assert.Nil(t, s.PendingAction)
	require.NoError(t, doStartRetreat(s, SeatHuman))
}

func TestRetreatSwapsAndPaysCost(t *testing.T) {
	s := mainPhaseState()
	p := s.Player(SeatHuman)
	active := withEnergy(attacker("retreater", 20), 2)
	p.Active = active
	p.Bench[1] = basicPokemon("fresh")

	require.NoError(t, doStartRetreat(s, SeatHuman))
	require.NoError(t, doCompleteRetreat(s, SeatHuman, 1))

	assert.Equal(t, "fresh", s.Player(SeatHuman).Active.ID)
	benched := s.Player(SeatHuman).Bench[1]
	require.NotNil(t, benched)
	assert.Equal(t, "retreater", benched.ID)
	assert.Len(t, benched.AttachedEnergy, 1, "retreat cost must be discarded")
	assert.Len(t, s.Player(SeatHuman).Discard, 1)
	assert.False(t, s.TurnState.CanRetreat, "one retreat per turn")
}

func TestRetreatBlockedWithoutEnergy(t *testing.T) {
	s := mainPhaseState()
	p := s.Player(SeatHuman)
	p.Active = attacker("heavy", 20)
	p.Active.RetreatCost = 2
	p.Bench[0] = basicPokemon("sub")

	err := doStartRetreat(s, SeatHuman)
	re, ok := IsRejected(err)
	require.True(t, ok)
	assert.Equal(t, ReasonRetreatBlocked, re.Reason)
}

func TestEndTurnHandsOver(t *testing.T) {
	s := mainPhaseState()
	turnBefore := s.TurnState.TurnNumber

	require.NoError(t, doEndTurn(s, SeatHuman))
	assert.Equal(t, SeatOpponent, s.TurnPlayer)
	assert.Equal(t, rules.PhaseOpponentDraw, s.Phase)
	assert.Equal(t, turnBefore+1, s.TurnState.TurnNumber)
	assert.False(t, s.TurnState.HasDrawn)
	assert.False(t, s.TurnState.HasAttacked)
	assert.Equal(t, 0, s.TurnState.EnergyAttached)
	assert.True(t, s.TurnState.CanRetreat)
}

func TestEndTurnRequiresDraw(t *testing.T) {
	s := mainPhaseState()
	s.TurnState.HasDrawn = false

	err := doEndTurn(s, SeatHuman)
	_, ok := IsRejected(err)
	assert.True(t, ok)
}

func TestAttackRequiresEnergy(t *testing.T) {
	s := mainPhaseState()
	s.Player(SeatHuman).Active = attacker("weak", 20)

	err := doAttack(s, SeatHuman, NewBasicRules(nil), 0)
	re, ok := IsRejected(err)
	require.True(t, ok)
	assert.Equal(t, ReasonCostUnpayable, re.Reason)
}

func TestAttackAppliesDamageAndEndsTurn(t *testing.T) {
	s := mainPhaseState()
	s.Player(SeatHuman).Active = withEnergy(attacker("hitter", 20), 1)

	require.NoError(t, doAttack(s, SeatHuman, NewBasicRules(nil), 0))
	assert.Equal(t, 20, s.Player(SeatOpponent).Active.Damage)
	assert.Equal(t, SeatOpponent, s.TurnPlayer, "attacking ends the turn")
	assert.Equal(t, rules.PhaseOpponentDraw, s.Phase)
}
