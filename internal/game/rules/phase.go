package rules

import (
	"fmt"
	"time"
)

// Phase represents the coarse states of a battle, from pre-game setup
// through normal turn flow to the terminal game-over state.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseInitialPokemonSelection
	PhasePrizeCardSetup
	PhaseGameStartReady
	PhaseHumanDraw
	PhaseHumanMain
	PhaseHumanAttack
	PhaseOpponentDraw
	PhaseOpponentMain
	PhaseOpponentAttack
	PhaseAwaitingNewActive
	PhasePrizeSelection
	PhaseGameOver
)

var phaseNames = map[Phase]string{
	PhaseSetup:                   "SETUP",
	PhaseInitialPokemonSelection: "INITIAL_POKEMON_SELECTION",
	PhasePrizeCardSetup:          "PRIZE_CARD_SETUP",
	PhaseGameStartReady:          "GAME_START_READY",
	PhaseHumanDraw:               "HUMAN_DRAW",
	PhaseHumanMain:               "HUMAN_MAIN",
	PhaseHumanAttack:             "HUMAN_ATTACK",
	PhaseOpponentDraw:            "OPPONENT_DRAW",
	PhaseOpponentMain:            "OPPONENT_MAIN",
	PhaseOpponentAttack:          "OPPONENT_ATTACK",
	PhaseAwaitingNewActive:       "AWAITING_NEW_ACTIVE",
	PhasePrizeSelection:          "PRIZE_SELECTION",
	PhaseGameOver:                "GAME_OVER",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// Known reports whether p is one of the declared phase values. The validator
// treats an unknown phase as fatal corruption.
func (p Phase) Known() bool {
	_, ok := phaseNames[p]
	return ok
}

// Setup reports whether p belongs to the pre-game setup sequence.
func (p Phase) Setup() bool {
	switch p {
	case PhaseSetup, PhaseInitialPokemonSelection, PhasePrizeCardSetup, PhaseGameStartReady:
		return true
	}
	return false
}

// Transition records a single phase change.
type Transition struct {
	From Phase
	To   Phase
	At   time.Time
}

// Machine tracks the current phase, the previous phase, and phase-scoped
// data. TransitionTo never validates legality; callers gate transitions with
// the guard predicates so the machine stays a dumb recorder.
type Machine struct {
	current  Phase
	previous Phase
	data     map[string]any
	history  []Transition
}

// NewMachine creates a phase machine starting at SETUP.
func NewMachine() *Machine {
	return &Machine{
		current:  PhaseSetup,
		previous: PhaseSetup,
		data:     make(map[string]any),
	}
}

// Current returns the phase in progress.
func (m *Machine) Current() Phase {
	return m.current
}

// Previous returns the phase the machine most recently left.
func (m *Machine) Previous() Phase {
	return m.previous
}

// TransitionTo unconditionally moves the machine to next, recording the
// previous phase and merging data into phase-scoped storage.
func (m *Machine) TransitionTo(next Phase, data map[string]any) {
	m.previous = m.current
	m.current = next
	for k, v := range data {
		m.data[k] = v
	}
	m.history = append(m.history, Transition{From: m.previous, To: next, At: time.Now()})
}

// Data returns the value stored under key by an earlier transition.
func (m *Machine) Data(key string) (any, bool) {
	v, ok := m.data[key]
	return v, ok
}

// History returns a copy of all recorded transitions, oldest first.
func (m *Machine) History() []Transition {
	out := make([]Transition, len(m.history))
	copy(out, m.history)
	return out
}
