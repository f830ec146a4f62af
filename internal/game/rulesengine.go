package game

import (
	"go.uber.org/zap"
)

// RulesEngine is the card-effect collaborator the core consumes as a black
// box: it computes cost matching, damage application, evolution legality, and
// prize counts. The core only inspects the returned state shape.
type RulesEngine interface {
	// HasEnoughEnergy reports whether pokemon's attached energy satisfies the
	// attack's cost.
	HasEnoughEnergy(pokemon *Card, attack Attack) bool
	// ApplyDamage marks amount damage on the card identified by targetID and
	// returns the resulting state.
	ApplyDamage(s *GameState, targetID string, amount int) (*GameState, error)
	// EvolvePokemon replaces the pokemon at (zone, index) with the evolution
	// card from owner's hand.
	EvolvePokemon(s *GameState, owner Seat, cardID string, zone Zone, index int) (*GameState, error)
	// TakePrizeCard moves owner's prize at index into their hand.
	TakePrizeCard(s *GameState, owner Seat, index int) (*GameState, error)
	// PrizesForKnockout returns the prize count owed for knocking out
	// defeated. The core treats this as opaque.
	PrizesForKnockout(defeated *Card) int
}

// BasicRules is a straightforward RulesEngine implementation covering the
// standard rules: colorless-compatible energy matching, flat damage, rule-box
// pokemon worth two prizes.
type BasicRules struct {
	logger *zap.Logger
}

// NewBasicRules creates a basic rules engine.
func NewBasicRules(logger *zap.Logger) *BasicRules {
	return &BasicRules{logger: logger}
}

// HasEnoughEnergy matches typed cost entries against attached energy of the
// same type, then covers colorless entries with whatever remains.
func (r *BasicRules) HasEnoughEnergy(pokemon *Card, attack Attack) bool {
	if pokemon == nil {
		return false
	}
	available := make(map[string]int)
	for _, e := range pokemon.AttachedEnergy {
		available[e.EnergyType]++
	}

	colorless := 0
	for _, cost := range attack.Cost {
		if cost == "colorless" {
			colorless++
			continue
		}
		if available[cost] == 0 {
			return false
		}
		available[cost]--
	}

	remaining := 0
	for _, n := range available {
		remaining += n
	}
	return remaining >= colorless
}

// ApplyDamage clones the state and marks damage on the target, searching both
// actives and benches.
func (r *BasicRules) ApplyDamage(s *GameState, targetID string, amount int) (*GameState, error) {
	next := s.Clone()
	target := findBoardCard(next, targetID)
	if target == nil {
		return nil, reject(ReasonCardNotFound, "no pokemon in play with id %s", targetID)
	}
	target.Damage += amount
	if r.logger != nil {
		r.logger.Debug("damage applied",
			zap.String("target", target.Name),
			zap.Int("amount", amount),
			zap.Int("total", target.Damage),
		)
	}
	return next, nil
}

// EvolvePokemon swaps the evolution card from hand onto the pokemon at the
// given slot, carrying over damage and attached energy.
func (r *BasicRules) EvolvePokemon(s *GameState, owner Seat, cardID string, zone Zone, index int) (*GameState, error) {
	next := s.Clone()
	p := next.Player(owner)

	handIdx, evo := findCard(p.Hand, cardID)
	if evo == nil {
		return nil, reject(ReasonCardNotFound, "card %s not in hand", cardID)
	}
	if evo.Kind != KindPokemon || evo.Stage == StageBasic {
		return nil, reject(ReasonNotBasic, "%s is not an evolution card", evo.Name)
	}

	var target *Card
	switch zone {
	case ZoneActive:
		target = p.Active
	case ZoneBench:
		if index < 0 || index >= BenchSize {
			return nil, reject(ReasonBadIndex, "bench index %d out of range", index)
		}
		target = p.Bench[index]
	default:
		return nil, reject(ReasonBadZone, "cannot evolve in zone %s", zone)
	}
	if target == nil {
		return nil, reject(ReasonEmptySlot, "no pokemon at %s[%d]", zone, index)
	}
	if evo.EvolvesFrom != target.ID && evo.EvolvesFrom != target.Name {
		return nil, reject(ReasonCardNotFound, "%s does not evolve from %s", evo.Name, target.Name)
	}

	evo.Damage = target.Damage
	evo.AttachedEnergy = target.AttachedEnergy
	p.Hand = append(p.Hand[:handIdx], p.Hand[handIdx+1:]...)
	p.Discard = append(p.Discard, stripBattleState(target))
	switch zone {
	case ZoneActive:
		p.Active = evo
	case ZoneBench:
		p.Bench[index] = evo
	}
	return next, nil
}

// TakePrizeCard moves the prize at index into owner's hand and decrements the
// remaining count.
func (r *BasicRules) TakePrizeCard(s *GameState, owner Seat, index int) (*GameState, error) {
	next := s.Clone()
	p := next.Player(owner)
	if index < 0 || index >= len(p.Prize) {
		return nil, reject(ReasonBadIndex, "prize index %d out of range", index)
	}
	card := p.Prize[index]
	if card == nil {
		return nil, reject(ReasonEmptySlot, "prize slot %d already taken", index)
	}
	card.FaceDown = false
	p.Prize[index] = nil
	p.Hand = append(p.Hand, card)
	p.PrizeRemaining--
	if p.PrizeRemaining < 0 {
		p.PrizeRemaining = 0
	}
	return next, nil
}

// PrizesForKnockout awards two prizes for rule-box pokemon, one otherwise.
func (r *BasicRules) PrizesForKnockout(defeated *Card) int {
	if defeated != nil && defeated.RuleBox {
		return 2
	}
	return 1
}

// findBoardCard searches both players' actives and benches for a runtime or
// master card ID.
func findBoardCard(s *GameState, id string) *Card {
	for _, seat := range []Seat{SeatHuman, SeatOpponent} {
		p := s.Player(seat)
		if p.Active != nil && (p.Active.RuntimeID == id || p.Active.ID == id) {
			return p.Active
		}
		if _, c := findCard(p.Bench, id); c != nil {
			return c
		}
	}
	return nil
}

// stripBattleState clears in-play state from a card headed to the discard.
func stripBattleState(c *Card) *Card {
	out := c.Clone()
	out.Damage = 0
	out.AttachedEnergy = nil
	out.SpecialConditions = nil
	return out
}
