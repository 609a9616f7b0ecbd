package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RejectedTransition is a lifecycle change that a guard refused.
type RejectedTransition struct {
	Code    string
	Message string
}

func (e RejectedTransition) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func reject(code, format string, args ...any) error {
	return RejectedTransition{Code: code, Message: fmt.Sprintf(format, args...)}
}

// writableStatuses are the only targets of the generic status update.
// CANCELLED is reachable solely through ApplyCancellation.
var writableStatuses = []Status{StatusCheckedIn, StatusCheckedOut, StatusNoShow}

// LegalNextStatuses returns the selectable "next status" values, with the
// current status first so "no change" is always present. A cancelled booking
// has none.
func LegalNextStatuses(current Status) []Status {
	if current == StatusCancelled {
		return []Status{}
	}
	out := []Status{current}
	for _, s := range writableStatuses {
		if s != current {
			out = append(out, s)
		}
	}
	return out
}

// CheckStatusChange validates a generic status update without applying it.
// CHECKED_OUT is accepted from any status here; only ActionCheckOut requires
// the booking to be checked in.
func CheckStatusChange(b Booking, next Status, today time.Time) error {
	if _, err := ParseStatus(string(next)); err != nil {
		return reject("STATUS_INVALID", "unknown status %q", next)
	}
	if b.Status == StatusCancelled {
		return reject("BOOKING_CANCELLED", "cancelled bookings accept no status changes")
	}
	if next == b.Status {
		return reject("STATUS_UNCHANGED", "booking is already %s", next)
	}
	if next == StatusCancelled {
		return reject("CANCEL_VIA_STATUS", "use the cancellation action to cancel a booking")
	}
	if !containsStatus(LegalNextStatuses(b.Status), next) {
		return reject("STATUS_NOT_WRITABLE", "status %s cannot be set directly", next)
	}
	switch next {
	case StatusCheckedIn:
		if !GuardCheckIn(b, today) {
			return reject("CHECK_IN_TOO_EARLY", "check-in opens on the arrival date")
		}
	case StatusNoShow:
		if !GuardNoShow(b, today) {
			return reject("NO_SHOW_TOO_EARLY", "no-show can only be recorded after the departure date")
		}
	}
	return nil
}

func ApplyStatusChange(b Booking, next Status, today time.Time) (Booking, error) {
	if err := CheckStatusChange(b, next, today); err != nil {
		return b, err
	}
	b.Status = next
	return b, nil
}

// Action is a guest-facing lifecycle button.
type Action string

const (
	ActionUpdateStatus Action = "update-status"
	ActionCheckIn      Action = "check-in"
	ActionCheckOut     Action = "check-out"
	ActionNoShow       Action = "no-show"
	ActionCancel       Action = "cancel"
)

func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionCheckIn, ActionCheckOut, ActionNoShow:
		return Action(s), nil
	default:
		return "", fmt.Errorf("unknown action: %s", s)
	}
}

// ActionTarget resolves a guest action to the status it writes, enforcing the
// action's own guard on top of the generic checks.
func ActionTarget(b Booking, a Action, today time.Time) (Status, error) {
	var next Status
	switch a {
	case ActionCheckIn:
		next = StatusCheckedIn
	case ActionCheckOut:
		if !GuardCheckOut(b) {
			return "", reject("CHECK_OUT_NOT_CHECKED_IN", "only checked-in bookings can be checked out")
		}
		next = StatusCheckedOut
	case ActionNoShow:
		next = StatusNoShow
	default:
		return "", reject("ACTION_INVALID", "unknown action %q", a)
	}
	if err := CheckStatusChange(b, next, today); err != nil {
		return "", err
	}
	return next, nil
}

type Cancellation struct {
	Fee     decimal.Decimal `json:"fee"`
	Comment string          `json:"comment"`
}

// ApplyCancellation moves b to CANCELLED and records fee and comment.
func ApplyCancellation(b Booking, c Cancellation, today time.Time) (Booking, error) {
	if b.Status == StatusCancelled {
		return b, reject("ALREADY_CANCELLED", "booking is already cancelled")
	}
	if !GuardCancel(b, today) {
		return b, reject("CANCEL_AFTER_DEPARTURE", "bookings can only be cancelled before the departure date")
	}
	if c.Fee.IsNegative() {
		return b, reject("CANCELLATION_FEE_INVALID", "cancellation fee must be >= 0")
	}
	fee := c.Fee.Round(2)
	b.Status = StatusCancelled
	b.CancellationFee = &fee
	b.CancellationNote = strings.TrimSpace(c.Comment)
	return b, nil
}

func containsStatus(list []Status, s Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
