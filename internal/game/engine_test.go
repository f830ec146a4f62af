package game_test

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pokebattle/battle-server-go/internal/game"
)

const thinkStep = 10 * time.Millisecond

// matchDeck builds a legal 60-card list: battle-ready basics up front,
// padded with energy.
func matchDeck(prefix string, basics int) []*game.Card {
	deck := make([]*game.Card, 0, 60)
	for i := 0; i < basics; i++ {
		deck = append(deck, &game.Card{
			ID:        prefix + "-fighter",
			RuntimeID: fmt.Sprintf("%s-fighter-%d", prefix, i),
			Name:      "Fighter",
			Kind:      game.KindPokemon,
			Stage:     game.StageBasic,
			HP:        60,
			Attacks: []game.Attack{
				{Name: "Tackle", Cost: []string{"colorless"}, Damage: 30},
			},
			RetreatCost: 1,
		})
	}
	for i := len(deck); i < 60; i++ {
		deck = append(deck, &game.Card{
			ID:         "fire-energy",
			RuntimeID:  fmt.Sprintf("%s-energy-%d", prefix, i),
			Name:       "Fire Energy",
			Kind:       game.KindEnergy,
			EnergyType: "fire",
		})
	}
	return deck
}

func newTestEngine(t *testing.T, humanDeck, cpuDeck []*game.Card, seed int64) (*game.Engine, *game.ManualScheduler) {
	t.Helper()
	sched := game.NewManualScheduler()
	e := game.NewEngine(humanDeck, cpuDeck, game.Options{
		Logger:    zaptest.NewLogger(t),
		Scheduler: sched,
		Rand:      rand.New(rand.NewSource(seed)),
		DelayMin:  thinkStep,
		DelayMax:  thinkStep,
	})
	t.Cleanup(e.Close)
	return e, sched
}

func hasAction(v game.GameView, a game.Action) bool {
	for _, got := range v.Actions {
		if got == a {
			return true
		}
	}
	return false
}

func firstHandCard(v game.GameView, kind game.CardKind) (game.CardView, bool) {
	for _, c := range v.You.Hand {
		if c.Kind == kind {
			return c, true
		}
	}
	return game.CardView{}, false
}

// playHumanStep performs one human action for the current view, mirroring
// what a UI client would submit. Returns false when the human has nothing to
// do and the opponent's clock should advance instead.
func playHumanStep(ctx context.Context, e *game.Engine, v game.GameView) bool {
	switch {
	case hasAction(v, game.ActionPlaceActive):
		if c, ok := firstHandCard(v, game.KindPokemon); ok {
			_ = e.PlacePokemon(ctx, c.RuntimeID, game.ZoneActive, 0)
			return true
		}
	case hasAction(v, game.ActionConfirmSetup):
		// Bench one backup before confirming so knockouts have a follow-up.
		if v.You.Bench[0] == nil {
			if c, ok := firstHandCard(v, game.KindPokemon); ok {
				_ = e.PlacePokemon(ctx, c.RuntimeID, game.ZoneBench, 0)
				return true
			}
		}
		_ = e.ConfirmSetup(ctx)
		return true
	case hasAction(v, game.ActionDraw):
		_ = e.Draw(ctx)
		return true
	case hasAction(v, game.ActionAttack), hasAction(v, game.ActionEndTurn):
		if hasAction(v, game.ActionAttachEnergy) && v.You.Active != nil {
			if c, ok := firstHandCard(v, game.KindEnergy); ok {
				if err := e.StartAttachEnergy(ctx, c.RuntimeID); err == nil {
					_ = e.CompleteAttachEnergy(ctx, v.You.Active.RuntimeID)
					return true
				}
			}
		}
		if hasAction(v, game.ActionAttack) {
			if err := e.Attack(ctx, 0); err == nil {
				return true
			}
		}
		_ = e.EndTurn(ctx)
		return true
	case hasAction(v, game.ActionTakePrize):
		for i := 0; i < game.PrizeCount; i++ {
			if err := e.TakePrize(ctx, i); err == nil {
				return true
			}
		}
	case hasAction(v, game.ActionPromote):
		for i, c := range v.You.Bench {
			if c != nil {
				_ = e.PromoteActive(ctx, i)
				return true
			}
		}
	}
	return false
}

func TestEngineSetupFlowReachesFirstTurn(t *testing.T) {
	e, sched := newTestEngine(t, matchDeck("h", 40), matchDeck("o", 40), 11)
	ctx := context.Background()

	require.NoError(t, e.Start(ctx))
	assert.Equal(t, "INITIAL_POKEMON_SELECTION", e.View(game.SeatHuman).Phase)

	// The opponent sets its side up on its own clock.
	sched.Advance(thinkStep)

	v := e.View(game.SeatHuman)
	require.True(t, hasAction(v, game.ActionPlaceActive))
	c, ok := firstHandCard(v, game.KindPokemon)
	require.True(t, ok, "an opening hand from this deck always holds a basic after mulligans")
	require.NoError(t, e.PlacePokemon(ctx, c.RuntimeID, game.ZoneActive, 0))
	require.NoError(t, e.ConfirmSetup(ctx))

	// Both sides ready: the start-of-game step runs on the scheduler.
	sched.Advance(thinkStep)

	v = e.View(game.SeatHuman)
	assert.Equal(t, "HUMAN_DRAW", v.Phase)
	assert.Equal(t, game.PrizeCount, v.You.PrizeRemaining)
	assert.Equal(t, game.PrizeCount, v.Rival.PrizeRemaining)
	assert.NotNil(t, v.You.Active)
	require.NotNil(t, v.Rival.Active)
	assert.False(t, v.Rival.Active.FaceDown, "board cards are revealed at game start")
	assert.Empty(t, v.Rival.Hand, "rival hand contents stay hidden")
	assert.Greater(t, v.Rival.HandCount, 0)
}

func TestEngineRejectsOutOfPhaseInput(t *testing.T) {
	e, _ := newTestEngine(t, matchDeck("h", 40), matchDeck("o", 40), 3)
	ctx := context.Background()
	require.NoError(t, e.Start(ctx))

	err := e.Draw(ctx)
	rej, ok := game.IsRejected(err)
	require.True(t, ok)
	assert.Equal(t, game.ReasonWrongPhase, rej.Reason)
}

func TestEnginePlaysFullMatchToGameOver(t *testing.T) {
	e, sched := newTestEngine(t, matchDeck("h", 40), matchDeck("o", 40), 42)
	ctx := context.Background()
	require.NoError(t, e.Start(ctx))

	var phases []string
	for i := 0; i < 1000; i++ {
		v := e.View(game.SeatHuman)
		if len(phases) == 0 || phases[len(phases)-1] != v.Phase {
			phases = append(phases, v.Phase)
		}
		if v.Phase == "GAME_OVER" {
			break
		}
		if !playHumanStep(ctx, e, v) {
			sched.Advance(thinkStep)
		}
	}

	final := e.View(game.SeatHuman)
	require.Equal(t, "GAME_OVER", final.Phase, "match never finished; phases seen: %v", phases)
	assert.NotEmpty(t, final.Winner)
	assert.Contains(t, []game.EndReason{game.EndReasonPrizes, game.EndReasonNoPokemon}, final.EndReason)

	// Setup ran exactly once, in order, at the front of the match.
	require.GreaterOrEqual(t, len(phases), 4)
	assert.Equal(t, "SETUP", phases[0])
	assert.Equal(t, "INITIAL_POKEMON_SELECTION", phases[1])

	hist := e.History()
	require.NotEmpty(t, hist)
	assert.Equal(t, "GAME_OVER", hist[len(hist)-1].To.String())

	// Every commit was recorded; the last snapshot is the final state.
	replay := e.Replay()
	require.Greater(t, replay.Size(), 0)
	last := replay.StateAt(replay.Size() - 1)
	assert.Equal(t, "GAME_OVER", last.Phase.String())
	require.NoError(t, replay.SaveToFile(t.TempDir()))
}

func TestEngineNotifiesPhaseChanges(t *testing.T) {
	e, sched := newTestEngine(t, matchDeck("h", 40), matchDeck("o", 40), 5)
	ctx := context.Background()

	var mu sync.Mutex
	var types []string
	e.Subscribe(func(n game.Notification) {
		mu.Lock()
		types = append(types, n.Type)
		mu.Unlock()
	})

	require.NoError(t, e.Start(ctx))
	sched.Advance(thinkStep)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, types, game.NotifyPhaseChange)
	assert.Contains(t, types, game.NotifyStateChange)
}

func TestEngineSetupStallAndRestart(t *testing.T) {
	// An all-energy list can never field a basic: the autonomous side stalls
	// and the engine surfaces it instead of hanging the rendezvous.
	e, sched := newTestEngine(t, matchDeck("h", 40), matchDeck("o", 0), 9)
	ctx := context.Background()

	var mu sync.Mutex
	var stalled bool
	e.Subscribe(func(n game.Notification) {
		if n.Type == game.NotifySetupStalled {
			mu.Lock()
			stalled = true
			mu.Unlock()
		}
	})

	require.NoError(t, e.Start(ctx))
	sched.Advance(thinkStep)

	mu.Lock()
	assert.True(t, stalled)
	mu.Unlock()
	assert.Equal(t, "INITIAL_POKEMON_SELECTION", e.View(game.SeatHuman).Phase)

	// Recovery path: reshuffle and deal again.
	require.NoError(t, e.RestartSetup(ctx))
	v := e.View(game.SeatHuman)
	assert.Equal(t, "INITIAL_POKEMON_SELECTION", v.Phase)
	assert.Equal(t, game.StartingHandSize, v.You.HandCount)
}
