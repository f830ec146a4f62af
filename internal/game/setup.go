package game

import (
	"math/rand"

	"github.com/pokebattle/battle-server-go/internal/game/rules"
)

const (
	// StartingHandSize is the number of cards dealt to each side.
	StartingHandSize = 7
	// MulliganLimit caps forced re-deals per side. After the limit the game
	// proceeds with whatever hand exists, an escape valve against decks with
	// no Basic pokemon at all.
	MulliganLimit = 3
)

// doDealHands shuffles both decks, deals the starting hands, and runs each
// side's mulligan loop independently, then opens pokemon selection.
func doDealHands(s *GameState, rng *rand.Rand) error {
	if s.Phase != rules.PhaseSetup {
		return reject(ReasonWrongPhase, "hands are dealt during setup only")
	}
	for _, seat := range []Seat{SeatHuman, SeatOpponent} {
		dealWithMulligans(s.Player(seat), rng)
	}
	if !CanAdvanceFromSetup(s) {
		return reject(ReasonEmptyDeck, "a deck could not produce a starting hand")
	}
	s.SetPhase(rules.PhaseInitialPokemonSelection)
	return nil
}

// dealWithMulligans shuffles and deals one side, re-dealing while the hand
// has no Basic pokemon, up to MulliganLimit retries.
func dealWithMulligans(p *PlayerState, rng *rand.Rand) {
	shuffle(p.Deck, rng)
	deal(p)

	for attempt := 0; attempt < MulliganLimit && !p.HasBasic(); attempt++ {
		// Hand returns to the deck, the deck reshuffles, seven new cards.
		p.Deck = append(p.Deck, p.Hand...)
		p.Hand = p.Hand[:0]
		shuffle(p.Deck, rng)
		deal(p)
		p.MulliganCount++
	}
}

func shuffle(cards []*Card, rng *rand.Rand) {
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

func deal(p *PlayerState) {
	n := StartingHandSize
	if n > len(p.Deck) {
		n = len(p.Deck)
	}
	p.Hand = append(p.Hand, p.Deck[:n]...)
	p.Deck = p.Deck[n:]
}

// doPlacePokemon places a Basic pokemon from seat's hand onto the board
// during initial selection. Placements are face down until game start.
func doPlacePokemon(s *GameState, seat Seat, cardID string, zone Zone, index int) error {
	if s.Phase != rules.PhaseInitialPokemonSelection {
		return reject(ReasonWrongPhase, "pokemon placement happens during initial selection")
	}
	if seat == SeatHuman && s.SetupSelection.Confirmed {
		return reject(ReasonWrongPhase, "setup already confirmed")
	}

	p := s.Player(seat)
	handIdx, card := findCard(p.Hand, cardID)
	if card == nil {
		return reject(ReasonCardNotFound, "card %s not in hand", cardID)
	}
	if !card.Basic() {
		return reject(ReasonNotBasic, "%s is not a Basic pokemon", card.Name)
	}

	switch zone {
	case ZoneActive:
		if p.Active != nil {
			return reject(ReasonSlotOccupied, "active slot is already filled")
		}
	case ZoneBench:
		if index < 0 || index >= BenchSize {
			return reject(ReasonBadIndex, "bench index %d out of range", index)
		}
		if p.Bench[index] != nil {
			return reject(ReasonSlotOccupied, "bench slot %d is already filled", index)
		}
		if p.Active == nil {
			return reject(ReasonEmptySlot, "place an active pokemon first")
		}
	default:
		return reject(ReasonBadZone, "cannot place a pokemon in zone %s", zone)
	}

	p.Hand = append(p.Hand[:handIdx], p.Hand[handIdx+1:]...)
	card.FaceDown = true
	if zone == ZoneActive {
		p.Active = card
		if seat == SeatHuman {
			s.SetupSelection.ActivePlaced = true
		}
	} else {
		p.Bench[index] = card
	}
	return nil
}

// doConfirmSetup finalizes the human's placement: prizes are dealt for the
// human side and the readiness gate re-checked.
func doConfirmSetup(s *GameState) error {
	if s.Phase != rules.PhaseInitialPokemonSelection {
		return reject(ReasonWrongPhase, "nothing to confirm during %s", s.Phase)
	}
	if s.SetupSelection.Confirmed {
		return reject(ReasonWrongPhase, "setup already confirmed")
	}
	if !s.SetupSelection.ActivePlaced {
		return reject(ReasonEmptySlot, "an active pokemon is required before confirming")
	}
	s.SetupSelection.Confirmed = true
	dealPrizes(s.Player(SeatHuman))
	checkSetupGate(s)
	return nil
}

// doOpponentSetup performs the autonomous side's entire placement in one
// mutation: one Basic to active, remaining Basics to the bench, prizes dealt,
// readiness flag raised. It never reads the human's in-progress selection.
func doOpponentSetup(s *GameState, rng *rand.Rand) error {
	if s.Phase != rules.PhaseInitialPokemonSelection {
		return reject(ReasonWrongPhase, "opponent setup happens during initial selection")
	}
	if s.CPUSetupReady {
		return reject(ReasonWrongPhase, "opponent setup already complete")
	}

	p := s.Player(SeatOpponent)
	var basics []*Card
	for _, c := range p.Hand {
		if c.Basic() {
			basics = append(basics, c)
		}
	}
	if len(basics) == 0 {
		// Surfaced as a stalled-setup condition rather than blocking the
		// human side's gate forever.
		return ErrSetupStalled
	}

	active := basics[rng.Intn(len(basics))]
	if err := doPlacePokemon(s, SeatOpponent, active.RuntimeID, ZoneActive, 0); err != nil {
		return err
	}
	benchIdx := 0
	for _, c := range basics {
		if c == active || benchIdx >= BenchSize {
			continue
		}
		if err := doPlacePokemon(s, SeatOpponent, c.RuntimeID, ZoneBench, benchIdx); err != nil {
			return err
		}
		benchIdx++
	}

	dealPrizes(p)
	s.CPUSetupReady = true
	checkSetupGate(s)
	return nil
}

// dealPrizes deals six face-down cards from the side's own deck into its
// prize slots. Each side deals independently, in whatever order the two
// placements finish.
func dealPrizes(p *PlayerState) {
	if len(p.Prize) > 0 {
		return
	}
	n := PrizeCount
	if n > len(p.Deck) {
		n = len(p.Deck)
	}
	p.Prize = make([]*Card, PrizeCount)
	for i := 0; i < n; i++ {
		card := p.Deck[0]
		p.Deck = p.Deck[1:]
		card.FaceDown = true
		p.Prize[i] = card
	}
	p.PrizeRemaining = n
}

// checkSetupGate is the dual-readiness barrier: re-checked idempotently after
// every relevant event, because either side may finish first. Only when both
// flags hold does the game move through prize setup to GAME_START_READY.
func checkSetupGate(s *GameState) {
	if !CanAdvanceFromPokemonSelection(s) {
		return
	}
	s.SetPhase(rules.PhasePrizeCardSetup)
	s.SetPhase(rules.PhaseGameStartReady)
}

// doStartGame reveals the face-down setup cards and enters the first draw
// phase.
func doStartGame(s *GameState) error {
	if s.Phase != rules.PhaseGameStartReady {
		return reject(ReasonWrongPhase, "the game is not ready to start")
	}
	for _, seat := range []Seat{SeatHuman, SeatOpponent} {
		p := s.Player(seat)
		if p.Active != nil {
			p.Active.FaceDown = false
		}
		for _, c := range p.Bench {
			if c != nil {
				c.FaceDown = false
			}
		}
	}
	s.TurnPlayer = SeatHuman
	s.TurnState = rules.NewTurnState(1)
	s.Turn = 1
	s.SetPhase(rules.PhaseHumanDraw)
	return nil
}
