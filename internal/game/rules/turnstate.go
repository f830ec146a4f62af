package rules

// TurnState tracks the one-per-turn constraints for the player whose turn it
// is. A fresh TurnState is built at every turn boundary; fields are never
// reset piecemeal.
type TurnState struct {
	HasDrawn       bool `json:"has_drawn"`
	HasAttacked    bool `json:"has_attacked"`
	EnergyAttached int  `json:"energy_attached"`
	TurnNumber     int  `json:"turn_number"`
	CanRetreat     bool `json:"can_retreat"`
}

// NewTurnState returns the initial turn state for the given turn number.
func NewTurnState(turnNumber int) TurnState {
	return TurnState{
		TurnNumber: turnNumber,
		CanRetreat: true,
	}
}

// Next builds the turn state for the following turn: turn number incremented
// by exactly one, every flag back at its initial value.
func (ts TurnState) Next() TurnState {
	return NewTurnState(ts.TurnNumber + 1)
}

// AllowDraw reports whether the turn draw is still available.
func (ts TurnState) AllowDraw() bool {
	return !ts.HasDrawn
}

// AllowEnergyAttach reports whether an energy card may still be attached this
// turn. The limit is one per player per turn, not one per pokemon.
func (ts TurnState) AllowEnergyAttach() bool {
	return ts.EnergyAttached == 0
}

// AllowAttack reports whether an attack may be declared, given whether the
// active pokemon's attack cost is satisfiable (decided by the rules engine).
func (ts TurnState) AllowAttack(costSatisfiable bool) bool {
	return !ts.HasAttacked && costSatisfiable
}

// AllowRetreat reports whether a retreat may be taken, given the attached
// energy count and the active pokemon's retreat cost.
func (ts TurnState) AllowRetreat(attachedEnergy, retreatCost int) bool {
	return ts.CanRetreat && attachedEnergy >= retreatCost
}
