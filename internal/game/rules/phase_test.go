package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "SETUP", PhaseSetup.String())
	assert.Equal(t, "GAME_OVER", PhaseGameOver.String())
	assert.Equal(t, "PHASE_99", Phase(99).String())
}

func TestPhaseKnown(t *testing.T) {
	for p := PhaseSetup; p <= PhaseGameOver; p++ {
		if !p.Known() {
			t.Errorf("phase %d should be known", int(p))
		}
	}
	assert.False(t, Phase(-1).Known())
	assert.False(t, Phase(42).Known())
}

func TestPhaseSetupClassification(t *testing.T) {
	assert.True(t, PhaseSetup.Setup())
	assert.True(t, PhaseInitialPokemonSelection.Setup())
	assert.True(t, PhasePrizeCardSetup.Setup())
	assert.True(t, PhaseGameStartReady.Setup())
	assert.False(t, PhaseHumanDraw.Setup())
	assert.False(t, PhasePrizeSelection.Setup())
	assert.False(t, PhaseGameOver.Setup())
}

func TestMachineTransitionRecordsPrevious(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, PhaseSetup, m.Current())

	m.TransitionTo(PhaseInitialPokemonSelection, nil)
	assert.Equal(t, PhaseInitialPokemonSelection, m.Current())
	assert.Equal(t, PhaseSetup, m.Previous())

	m.TransitionTo(PhasePrizeCardSetup, nil)
	assert.Equal(t, PhaseInitialPokemonSelection, m.Previous())
}

func TestMachineTransitionIsUnconditional(t *testing.T) {
	m := NewMachine()
	// The machine records whatever the caller asks for; legality is the
	// caller's business via the guard predicates.
	m.TransitionTo(PhaseGameOver, nil)
	assert.Equal(t, PhaseGameOver, m.Current())
}

func TestMachineDataMerge(t *testing.T) {
	m := NewMachine()
	m.TransitionTo(PhasePrizeSelection, map[string]any{"player_to_act": "human"})
	m.TransitionTo(PhaseAwaitingNewActive, map[string]any{"defender": "opponent"})

	v, ok := m.Data("player_to_act")
	if !ok {
		t.Fatal("expected player_to_act to survive later transitions")
	}
	assert.Equal(t, "human", v)

	v, ok = m.Data("defender")
	if !ok {
		t.Fatal("expected defender data")
	}
	assert.Equal(t, "opponent", v)
}

func TestMachineHistory(t *testing.T) {
	m := NewMachine()
	m.TransitionTo(PhaseInitialPokemonSelection, nil)
	m.TransitionTo(PhasePrizeCardSetup, nil)

	hist := m.History()
	if len(hist) != 2 {
		t.Fatalf("expected 2 transitions, got %d", len(hist))
	}
	assert.Equal(t, PhaseSetup, hist[0].From)
	assert.Equal(t, PhaseInitialPokemonSelection, hist[0].To)
	assert.Equal(t, PhaseInitialPokemonSelection, hist[1].From)
	assert.False(t, hist[0].At.IsZero())
}

func TestTurnStateNext(t *testing.T) {
	ts := TurnState{
		HasDrawn:       true,
		HasAttacked:    true,
		EnergyAttached: 1,
		TurnNumber:     4,
		CanRetreat:     false,
	}

	next := ts.Next()
	assert.Equal(t, 5, next.TurnNumber)
	assert.False(t, next.HasDrawn)
	assert.False(t, next.HasAttacked)
	assert.Equal(t, 0, next.EnergyAttached)
	assert.True(t, next.CanRetreat)
}

func TestTurnStateGates(t *testing.T) {
	ts := NewTurnState(1)

	assert.True(t, ts.AllowDraw())
	ts.HasDrawn = true
	assert.False(t, ts.AllowDraw())

	assert.True(t, ts.AllowEnergyAttach())
	ts.EnergyAttached = 1
	assert.False(t, ts.AllowEnergyAttach())

	assert.True(t, ts.AllowAttack(true))
	assert.False(t, ts.AllowAttack(false))
	ts.HasAttacked = true
	assert.False(t, ts.AllowAttack(true))

	assert.True(t, ts.AllowRetreat(2, 2))
	assert.False(t, ts.AllowRetreat(1, 2))
	ts.CanRetreat = false
	assert.False(t, ts.AllowRetreat(3, 1))
}
