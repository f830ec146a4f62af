package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokebattle/battle-server-go/internal/game/rules"
)

func energyCard(n int) *Card {
	return &Card{
		ID:         "fire-energy",
		RuntimeID:  "energy-" + string(rune('a'+n%26)) + string(rune('a'+n/26)),
		Name:       "Fire Energy",
		Kind:       KindEnergy,
		EnergyType: "fire",
	}
}

// testDeck builds a deck with the requested number of Basic pokemon, padded
// to 60 with energy cards.
func testDeck(prefix string, basics int) []*Card {
	deck := make([]*Card, 0, 60)
	for i := 0; i < basics; i++ {
		c := basicPokemon(prefix + "-basic")
		c.RuntimeID = prefix + "-basic-" + string(rune('a'+i%26)) + string(rune('a'+i/26))
		deck = append(deck, c)
	}
	for i := len(deck); i < 60; i++ {
		e := energyCard(i)
		e.RuntimeID = prefix + "-" + e.RuntimeID
		deck = append(deck, e)
	}
	return deck
}

func setupState(humanBasics, opponentBasics int) *GameState {
	s := NewGameState("setup-test")
	s.Player(SeatHuman).Deck = testDeck("h", humanBasics)
	s.Player(SeatOpponent).Deck = testDeck("o", opponentBasics)
	return s
}

func TestDealHandsAdvancesToSelection(t *testing.T) {
	s := setupState(20, 20)
	rng := rand.New(rand.NewSource(1))

	require.NoError(t, doDealHands(s, rng))
	assert.Equal(t, rules.PhaseInitialPokemonSelection, s.Phase)
	assert.Len(t, s.Player(SeatHuman).Hand, StartingHandSize)
	assert.Len(t, s.Player(SeatOpponent).Hand, StartingHandSize)
	assert.Len(t, s.Player(SeatHuman).Deck, 60-StartingHandSize)
}

func TestMulliganLoopTerminatesWithNoBasics(t *testing.T) {
	p := NewPlayerState()
	p.Deck = testDeck("h", 0)
	rng := rand.New(rand.NewSource(7))

	dealWithMulligans(p, rng)
	assert.Equal(t, MulliganLimit, p.MulliganCount, "ceiling must stop the loop")
	assert.Len(t, p.Hand, StartingHandSize, "play proceeds with whatever hand exists")
	assert.False(t, p.HasBasic())
}

func TestMulliganReshufflesUntilBasicFound(t *testing.T) {
	p := NewPlayerState()
	// A deck with plenty of Basics essentially never mulligans.
	p.Deck = testDeck("h", 40)
	rng := rand.New(rand.NewSource(3))

	dealWithMulligans(p, rng)
	assert.True(t, p.HasBasic())
	assert.Equal(t, 60, len(p.Deck)+len(p.Hand), "no cards may be lost in the loop")
}

func selectionState(t *testing.T) *GameState {
	t.Helper()
	s := setupState(20, 20)
	require.NoError(t, doDealHands(s, rand.New(rand.NewSource(1))))
	return s
}

func firstBasicInHand(t *testing.T, s *GameState, seat Seat) *Card {
	t.Helper()
	for _, c := range s.Player(seat).Hand {
		if c.Basic() {
			return c
		}
	}
	t.Fatalf("no basic in %s hand", seat)
	return nil
}

func firstEnergyInHand(s *GameState, seat Seat) *Card {
	for _, c := range s.Player(seat).Hand {
		if c.Kind == KindEnergy {
			return c
		}
	}
	return nil
}

func TestPlacePokemonActiveThenBench(t *testing.T) {
	s := selectionState(t)

	active := firstBasicInHand(t, s, SeatHuman)
	require.NoError(t, doPlacePokemon(s, SeatHuman, active.RuntimeID, ZoneActive, 0))
	assert.True(t, s.SetupSelection.ActivePlaced)
	assert.True(t, s.Player(SeatHuman).Active.FaceDown, "setup placements stay face down")

	bench := firstBasicInHand(t, s, SeatHuman)
	require.NoError(t, doPlacePokemon(s, SeatHuman, bench.RuntimeID, ZoneBench, 2))
	assert.NotNil(t, s.Player(SeatHuman).Bench[2])
}

func TestPlacePokemonRejectsBenchBeforeActive(t *testing.T) {
	s := selectionState(t)
	card := firstBasicInHand(t, s, SeatHuman)

	err := doPlacePokemon(s, SeatHuman, card.RuntimeID, ZoneBench, 0)
	re, ok := IsRejected(err)
	require.True(t, ok)
	assert.Equal(t, ReasonEmptySlot, re.Reason)
}

func TestPlacePokemonRejectsNonBasic(t *testing.T) {
	s := selectionState(t)
	energy := firstEnergyInHand(s, SeatHuman)
	require.NotNil(t, energy)

	err := doPlacePokemon(s, SeatHuman, energy.RuntimeID, ZoneActive, 0)
	re, ok := IsRejected(err)
	require.True(t, ok)
	assert.Equal(t, ReasonNotBasic, re.Reason)
}

func TestPlacePokemonRejectsOccupiedSlotAndBadIndex(t *testing.T) {
	s := selectionState(t)
	first := firstBasicInHand(t, s, SeatHuman)
	require.NoError(t, doPlacePokemon(s, SeatHuman, first.RuntimeID, ZoneActive, 0))

	second := firstBasicInHand(t, s, SeatHuman)
	err := doPlacePokemon(s, SeatHuman, second.RuntimeID, ZoneActive, 0)
	re, ok := IsRejected(err)
	require.True(t, ok)
	assert.Equal(t, ReasonSlotOccupied, re.Reason)

	err = doPlacePokemon(s, SeatHuman, second.RuntimeID, ZoneBench, 5)
	re, ok = IsRejected(err)
	require.True(t, ok)
	assert.Equal(t, ReasonBadIndex, re.Reason)
}

func TestConfirmSetupRequiresActive(t *testing.T) {
	s := selectionState(t)
	err := doConfirmSetup(s)
	re, ok := IsRejected(err)
	require.True(t, ok)
	assert.Equal(t, ReasonEmptySlot, re.Reason)
}

func TestConfirmSetupDealsHumanPrizes(t *testing.T) {
	s := selectionState(t)
	active := firstBasicInHand(t, s, SeatHuman)
	require.NoError(t, doPlacePokemon(s, SeatHuman, active.RuntimeID, ZoneActive, 0))
	deckBefore := len(s.Player(SeatHuman).Deck)

	require.NoError(t, doConfirmSetup(s))
	p := s.Player(SeatHuman)
	assert.Equal(t, PrizeCount, p.PrizeRemaining)
	assert.Len(t, p.Prize, PrizeCount)
	assert.Equal(t, deckBefore-PrizeCount, len(p.Deck))
	for _, c := range p.Prize {
		require.NotNil(t, c)
		assert.True(t, c.FaceDown)
	}
}

func TestSetupGateRequiresBothSidesEitherOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	confirmHuman := func(s *GameState) {
		active := firstBasicInHand(t, s, SeatHuman)
		require.NoError(t, doPlacePokemon(s, SeatHuman, active.RuntimeID, ZoneActive, 0))
		require.NoError(t, doConfirmSetup(s))
	}
	opponentSetup := func(s *GameState) {
		require.NoError(t, doOpponentSetup(s, rng))
	}

	// Human first, then opponent.
	s := selectionState(t)
	confirmHuman(s)
	assert.Equal(t, rules.PhaseInitialPokemonSelection, s.Phase, "gate must hold with one side ready")
	opponentSetup(s)
	assert.Equal(t, rules.PhaseGameStartReady, s.Phase)

	// Opponent first, then human.
	s = selectionState(t)
	opponentSetup(s)
	assert.Equal(t, rules.PhaseInitialPokemonSelection, s.Phase, "gate must hold with one side ready")
	confirmHuman(s)
	assert.Equal(t, rules.PhaseGameStartReady, s.Phase)
}

func TestOpponentSetupStalledWithoutBasics(t *testing.T) {
	s := setupState(20, 0)
	require.NoError(t, doDealHands(s, rand.New(rand.NewSource(1))))

	err := doOpponentSetup(s, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrSetupStalled)
	assert.False(t, s.CPUSetupReady)
}

func TestStartGameRevealsAndEntersDraw(t *testing.T) {
	s := selectionState(t)
	rng := rand.New(rand.NewSource(2))
	active := firstBasicInHand(t, s, SeatHuman)
	require.NoError(t, doPlacePokemon(s, SeatHuman, active.RuntimeID, ZoneActive, 0))
	require.NoError(t, doConfirmSetup(s))
	require.NoError(t, doOpponentSetup(s, rng))
	require.Equal(t, rules.PhaseGameStartReady, s.Phase)

	require.NoError(t, doStartGame(s))
	assert.Equal(t, rules.PhaseHumanDraw, s.Phase)
	assert.False(t, s.Player(SeatHuman).Active.FaceDown)
	assert.False(t, s.Player(SeatOpponent).Active.FaceDown)
	assert.Equal(t, 1, s.TurnState.TurnNumber)
}
