// Package catalog loads card definitions and deck lists from YAML and
// instantiates playable 60-card decks from them.
package catalog

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/pokebattle/battle-server-go/internal/game"
)

// CardFile is the top-level structure of a card definition file.
type CardFile struct {
	Cards []CardDef `yaml:"cards"`
}

// CardDef is one card template. Every copy of the card in every deck shares
// this definition.
type CardDef struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Kind        string      `yaml:"kind"`
	Stage       string      `yaml:"stage,omitempty"`
	EvolvesFrom string      `yaml:"evolves_from,omitempty"`
	HP          int         `yaml:"hp,omitempty"`
	EnergyType  string      `yaml:"energy_type,omitempty"`
	Attacks     []AttackDef `yaml:"attacks,omitempty"`
	RetreatCost int         `yaml:"retreat_cost,omitempty"`
	RuleBox     bool        `yaml:"rule_box,omitempty"`
}

// AttackDef is one attack on a pokemon card template.
type AttackDef struct {
	Name   string   `yaml:"name"`
	Cost   []string `yaml:"cost"`
	Damage int      `yaml:"damage"`
}

// DeckFile is the top-level structure of a deck list file.
type DeckFile struct {
	Decks []DeckEntry `yaml:"decks"`
}

// DeckEntry is a named deck list of card IDs and counts.
type DeckEntry struct {
	Name  string      `yaml:"name"`
	Cards []CardCount `yaml:"cards"`
}

// CardCount is one line of a deck list.
type CardCount struct {
	ID    string `yaml:"id"`
	Count int    `yaml:"count"`
}

// Catalog is the loaded card pool and deck lists.
type Catalog struct {
	cards map[string]CardDef
	decks map[string]DeckEntry
}

// Load reads a card file and a deck file and cross-checks every deck entry
// against the card pool.
func Load(cardPath, deckPath string) (*Catalog, error) {
	cardData, err := os.ReadFile(cardPath)
	if err != nil {
		return nil, fmt.Errorf("read card file: %w", err)
	}
	var cf CardFile
	if err := yaml.Unmarshal(cardData, &cf); err != nil {
		return nil, fmt.Errorf("parse card YAML: %w", err)
	}

	deckData, err := os.ReadFile(deckPath)
	if err != nil {
		return nil, fmt.Errorf("read deck file: %w", err)
	}
	var df DeckFile
	if err := yaml.Unmarshal(deckData, &df); err != nil {
		return nil, fmt.Errorf("parse deck YAML: %w", err)
	}

	c := &Catalog{
		cards: make(map[string]CardDef, len(cf.Cards)),
		decks: make(map[string]DeckEntry, len(df.Decks)),
	}
	for _, def := range cf.Cards {
		if def.ID == "" {
			return nil, fmt.Errorf("card %q has no id", def.Name)
		}
		if _, dup := c.cards[def.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %q", def.ID)
		}
		c.cards[def.ID] = def
	}
	for _, deck := range df.Decks {
		for _, entry := range deck.Cards {
			if _, ok := c.cards[entry.ID]; !ok {
				return nil, fmt.Errorf("deck %q references unknown card %q", deck.Name, entry.ID)
			}
		}
		c.decks[deck.Name] = deck
	}
	return c, nil
}

// Card returns the template for a card ID.
func (c *Catalog) Card(id string) (CardDef, bool) {
	def, ok := c.cards[id]
	return def, ok
}

// DeckNames lists the available deck lists.
func (c *Catalog) DeckNames() []string {
	names := make([]string, 0, len(c.decks))
	for name := range c.decks {
		names = append(names, name)
	}
	return names
}

// BuildDeck instantiates a named deck list: one runtime card per copy, each
// with its own unique runtime ID.
func (c *Catalog) BuildDeck(name string) ([]*game.Card, error) {
	deck, ok := c.decks[name]
	if !ok {
		return nil, fmt.Errorf("deck %q not found", name)
	}
	var cards []*game.Card
	for _, entry := range deck.Cards {
		def := c.cards[entry.ID]
		for i := 0; i < entry.Count; i++ {
			cards = append(cards, instantiate(def))
		}
	}
	if len(cards) != game.DeckSize {
		return nil, fmt.Errorf("deck %q has %d cards, want %d", name, len(cards), game.DeckSize)
	}
	return cards, nil
}

func instantiate(def CardDef) *game.Card {
	card := &game.Card{
		ID:          def.ID,
		RuntimeID:   uuid.NewString(),
		Name:        def.Name,
		Kind:        game.CardKind(def.Kind),
		Stage:       game.Stage(def.Stage),
		EvolvesFrom: def.EvolvesFrom,
		HP:          def.HP,
		EnergyType:  def.EnergyType,
		RetreatCost: def.RetreatCost,
		RuleBox:     def.RuleBox,
	}
	for _, a := range def.Attacks {
		card.Attacks = append(card.Attacks, game.Attack{
			Name:   a.Name,
			Cost:   append([]string(nil), a.Cost...),
			Damage: a.Damage,
		})
	}
	return card
}
