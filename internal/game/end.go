package game

// GameResult names a winner and why.
type GameResult struct {
	Winner Seat      `json:"winner"`
	Reason EndReason `json:"reason"`
}

// EvaluateGameEnd is a pure predicate over state: nil while the game is still
// live, a result once a win condition holds. It is skipped during setup
// phases, and idempotent — callers re-evaluate it after every prize take and
// every knockout, not once per turn.
func EvaluateGameEnd(s *GameState) *GameResult {
	if s == nil || s.Phase.Setup() {
		return nil
	}

	// Taking the last prize wins. Checked before the no-pokemon condition so
	// a simultaneous final-prize knockout goes to the attacker.
	for _, seat := range []Seat{SeatHuman, SeatOpponent} {
		if s.Player(seat).PrizeRemaining <= 0 {
			return &GameResult{Winner: seat, Reason: EndReasonPrizes}
		}
	}

	// A side with no active and no benched pokemon loses. A knockout still
	// awaiting bench promotion is not a loss while the bench has a
	// replacement.
	for _, seat := range []Seat{SeatHuman, SeatOpponent} {
		p := s.Player(seat)
		if p.Active == nil && p.BenchedCount() == 0 {
			return &GameResult{Winner: seat.Other(), Reason: EndReasonNoPokemon}
		}
	}

	return nil
}
