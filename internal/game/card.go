package game

// CardKind classifies a card's broad type.
type CardKind string

const (
	KindPokemon CardKind = "pokemon"
	KindEnergy  CardKind = "energy"
	KindTrainer CardKind = "trainer"
)

// Stage is a pokemon card's evolution stage. Only Basic-stage pokemon are
// legal for initial active/bench placement.
type Stage string

const (
	StageNone  Stage = ""
	StageBasic Stage = "basic"
	StageOne   Stage = "stage1"
	StageTwo   Stage = "stage2"
)

// Attack describes a single attack printed on a pokemon card.
type Attack struct {
	Name   string   `json:"name" yaml:"name"`
	Cost   []string `json:"cost" yaml:"cost"`
	Damage int      `json:"damage" yaml:"damage"`
}

// Card is one physical card in a game. ID is the master identity shared by
// every copy of the same printing; RuntimeID is unique per copy, because a
// 60-card deck may contain duplicates and selection/animation logic must
// disambiguate them. Identity fields never change after construction; the
// battle fields below them mutate once the card is in play.
type Card struct {
	ID          string   `json:"id"`
	RuntimeID   string   `json:"runtime_id"`
	Name        string   `json:"name"`
	Kind        CardKind `json:"kind"`
	Stage       Stage    `json:"stage,omitempty"`
	EvolvesFrom string   `json:"evolves_from,omitempty"`
	HP          int      `json:"hp,omitempty"`
	EnergyType  string   `json:"energy_type,omitempty"`
	Attacks     []Attack `json:"attacks,omitempty"`
	RetreatCost int      `json:"retreat_cost,omitempty"`
	RuleBox     bool     `json:"rule_box,omitempty"`

	Damage            int     `json:"damage"`
	AttachedEnergy    []*Card `json:"attached_energy,omitempty"`
	SpecialConditions []string `json:"special_conditions,omitempty"`
	FaceDown          bool    `json:"face_down,omitempty"`
}

// Basic reports whether the card is a Basic-stage pokemon.
func (c *Card) Basic() bool {
	return c != nil && c.Kind == KindPokemon && c.Stage == StageBasic
}

// KnockedOut reports whether accumulated damage has reached the card's HP.
func (c *Card) KnockedOut() bool {
	return c != nil && c.Kind == KindPokemon && c.HP > 0 && c.Damage >= c.HP
}

// Clone returns a deep copy of the card, attached energy included.
func (c *Card) Clone() *Card {
	if c == nil {
		return nil
	}
	out := *c
	if c.Attacks != nil {
		out.Attacks = make([]Attack, len(c.Attacks))
		for i, a := range c.Attacks {
			out.Attacks[i] = a
			out.Attacks[i].Cost = append([]string(nil), a.Cost...)
		}
	}
	if c.AttachedEnergy != nil {
		out.AttachedEnergy = make([]*Card, len(c.AttachedEnergy))
		for i, e := range c.AttachedEnergy {
			out.AttachedEnergy[i] = e.Clone()
		}
	}
	out.SpecialConditions = append([]string(nil), c.SpecialConditions...)
	return &out
}

func cloneCards(cards []*Card) []*Card {
	if cards == nil {
		return nil
	}
	out := make([]*Card, len(cards))
	for i, c := range cards {
		out[i] = c.Clone()
	}
	return out
}

// findCard locates a card by runtime ID, falling back to master ID so that
// callers holding either identifier resolve the same physical card.
func findCard(cards []*Card, id string) (int, *Card) {
	for i, c := range cards {
		if c != nil && c.RuntimeID == id {
			return i, c
		}
	}
	for i, c := range cards {
		if c != nil && c.ID == id {
			return i, c
		}
	}
	return -1, nil
}
