package game

import (
	"errors"
	"fmt"
)

// ErrFatalState marks validation failures that cannot be repaired, such as an
// unrecognized phase value. The pipeline retains the previous canonical state
// and rejects the mutation.
var ErrFatalState = errors.New("fatal state corruption")

// ErrSetupStalled marks a setup sequence that can no longer make progress on
// one side (for example the autonomous opponent cannot field a Basic
// pokemon). It is surfaced for diagnostic recovery, never as a deadlock.
var ErrSetupStalled = errors.New("setup stalled")

// RejectReason is a machine-readable code for a legality rejection.
type RejectReason string

const (
	ReasonWrongPhase      RejectReason = "wrong_phase"
	ReasonNotYourTurn     RejectReason = "not_your_turn"
	ReasonAlreadyDrawn    RejectReason = "already_drawn"
	ReasonEnergyLimit     RejectReason = "energy_limit"
	ReasonAlreadyAttacked RejectReason = "already_attacked"
	ReasonCostUnpayable   RejectReason = "cost_unpayable"
	ReasonRetreatBlocked  RejectReason = "retreat_blocked"
	ReasonNotBasic        RejectReason = "not_basic"
	ReasonSlotOccupied    RejectReason = "slot_occupied"
	ReasonBadZone         RejectReason = "bad_zone"
	ReasonBadIndex        RejectReason = "bad_index"
	ReasonCardNotFound    RejectReason = "card_not_found"
	ReasonPendingAction   RejectReason = "pending_action"
	ReasonEmptyDeck       RejectReason = "empty_deck"
	ReasonEmptySlot       RejectReason = "empty_slot"
	ReasonNoPrizesOwed    RejectReason = "no_prizes_owed"
	ReasonGameOver        RejectReason = "game_over"
)

// RejectedError reports that an attempted action violated a phase or turn
// guard. The state is unchanged; the caller gets a reason code suitable for a
// user-facing message.
type RejectedError struct {
	Reason  RejectReason
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("action rejected: %s", e.Reason)
	}
	return fmt.Sprintf("action rejected: %s: %s", e.Reason, e.Message)
}

func reject(reason RejectReason, format string, args ...any) error {
	return &RejectedError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// IsRejected reports whether err is a legality rejection, returning the
// rejection for inspection.
func IsRejected(err error) (*RejectedError, bool) {
	var re *RejectedError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
