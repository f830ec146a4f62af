package game

import (
	"fmt"
)

// Severity classifies a validation finding.
type Severity int

const (
	// SeverityWarning findings are repaired in place; the repaired state is
	// safe to commit.
	SeverityWarning Severity = iota
	// SeverityFatal findings cannot be repaired; the candidate state must be
	// discarded.
	SeverityFatal
)

func (s Severity) String() string {
	if s == SeverityFatal {
		return "FATAL"
	}
	return "WARNING"
}

// Finding is a single structural problem discovered during validation.
type Finding struct {
	Severity Severity
	Code     string
	Message  string
}

// ValidationResult carries the outcome of validating a candidate state. The
// Repaired state is always present and best-effort, even when fatal findings
// make it unusable for commit.
type ValidationResult struct {
	Valid    bool
	Findings []Finding
	Repaired *GameState
}

// Fatal reports whether any finding is unrepairable.
func (r ValidationResult) Fatal() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

// Warnings returns only the repairable findings.
func (r ValidationResult) Warnings() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityWarning {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks a candidate state against the structural invariants and
// produces a repaired copy plus the list of violations. It never panics and
// never mutates its input.
func Validate(state *GameState) ValidationResult {
	res := ValidationResult{Valid: true}

	if state == nil {
		res.Valid = false
		res.Findings = append(res.Findings, Finding{
			Severity: SeverityFatal,
			Code:     "nil_state",
			Message:  "game state is nil",
		})
		return res
	}

	repaired := state.Clone()
	res.Repaired = repaired

	// Phase must be a recognized value. An unknown phase signals corruption
	// that no local repair can make sense of.
	if !repaired.Phase.Known() {
		res.Valid = false
		res.Findings = append(res.Findings, Finding{
			Severity: SeverityFatal,
			Code:     "unknown_phase",
			Message:  fmt.Sprintf("phase %d is not a known phase", int(repaired.Phase)),
		})
	}

	if repaired.Turn < 1 {
		res.Findings = append(res.Findings, Finding{
			Severity: SeverityWarning,
			Code:     "turn_below_one",
			Message:  fmt.Sprintf("turn %d repaired to 1", repaired.Turn),
		})
		repaired.Turn = 1
	}

	if repaired.TurnPlayer != SeatHuman && repaired.TurnPlayer != SeatOpponent {
		res.Findings = append(res.Findings, Finding{
			Severity: SeverityWarning,
			Code:     "unknown_turn_player",
			Message:  fmt.Sprintf("turn player %q repaired to human", repaired.TurnPlayer),
		})
		repaired.TurnPlayer = SeatHuman
	}

	if repaired.Players == nil {
		res.Findings = append(res.Findings, Finding{
			Severity: SeverityWarning,
			Code:     "nil_players",
			Message:  "players map repaired to empty sides",
		})
	}
	for _, seat := range []Seat{SeatHuman, SeatOpponent} {
		p, ok := repaired.Players[seat]
		if !ok || p == nil {
			res.Findings = append(res.Findings, Finding{
				Severity: SeverityWarning,
				Code:     "missing_player",
				Message:  fmt.Sprintf("%s player state repaired to empty", seat),
			})
		}
		repairPlayer(repaired.Player(seat), seat, &res)
	}

	if len(res.Findings) > 0 {
		res.Valid = false
	}
	return res
}

func repairPlayer(p *PlayerState, seat Seat, res *ValidationResult) {
	warn := func(code, format string, args ...any) {
		res.Findings = append(res.Findings, Finding{
			Severity: SeverityWarning,
			Code:     code,
			Message:  fmt.Sprintf("%s: ", seat) + fmt.Sprintf(format, args...),
		})
	}

	// Card sequences must exist even when empty.
	if p.Hand == nil {
		warn("nil_hand", "hand repaired to empty sequence")
		p.Hand = make([]*Card, 0)
	}
	if p.Deck == nil {
		warn("nil_deck", "deck repaired to empty sequence")
		p.Deck = make([]*Card, 0)
	}
	if p.Discard == nil {
		warn("nil_discard", "discard repaired to empty sequence")
		p.Discard = make([]*Card, 0)
	}

	// Bench is exactly BenchSize slots: pad short, truncate long. Truncated
	// cards are not silently destroyed; they go to the discard.
	switch {
	case len(p.Bench) < BenchSize:
		warn("bench_short", "bench length %d padded to %d", len(p.Bench), BenchSize)
		padded := make([]*Card, BenchSize)
		copy(padded, p.Bench)
		p.Bench = padded
	case len(p.Bench) > BenchSize:
		warn("bench_long", "bench length %d truncated to %d", len(p.Bench), BenchSize)
		for _, c := range p.Bench[BenchSize:] {
			if c != nil {
				p.Discard = append(p.Discard, c)
			}
		}
		p.Bench = p.Bench[:BenchSize]
	}

	if len(p.Prize) > PrizeCount {
		warn("prize_long", "prize length %d truncated to %d", len(p.Prize), PrizeCount)
		p.Prize = p.Prize[:PrizeCount]
	}

	// The prize array is the source of truth for the remaining count.
	actual := 0
	for _, c := range p.Prize {
		if c != nil {
			actual++
		}
	}
	if p.PrizeRemaining != actual {
		warn("prize_remaining_drift", "prize remaining %d recomputed to %d", p.PrizeRemaining, actual)
		p.PrizeRemaining = actual
	}

	if p.PrizesToTake < 0 {
		warn("prizes_to_take_negative", "prizes to take %d repaired to 0", p.PrizesToTake)
		p.PrizesToTake = 0
	}
}
