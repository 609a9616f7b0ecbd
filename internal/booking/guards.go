package booking

import "time"

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// sameDayIn moves a stored calendar date into today's location before
// comparing, so a date stored as UTC midnight stays the same calendar day.
func sameDayIn(date, today time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, today.Location())
}

func GuardCheckIn(b Booking, today time.Time) bool {
	if b.EstimatedArrival == nil {
		return false
	}
	return !Day(today).Before(sameDayIn(*b.EstimatedArrival, today))
}

func GuardCheckOut(b Booking) bool {
	return b.Status == StatusCheckedIn
}

func GuardNoShow(b Booking, today time.Time) bool {
	if b.EstimatedDeparture == nil {
		return false
	}
	return Day(today).After(sameDayIn(*b.EstimatedDeparture, today))
}

func GuardCancel(b Booking, today time.Time) bool {
	if b.EstimatedDeparture == nil {
		return false
	}
	return Day(today).Before(sameDayIn(*b.EstimatedDeparture, today))
}

// Actions is what the console may offer for one booking right now.
type Actions struct {
	CanCheckIn      bool     `json:"canCheckIn"`
	CanCheckOut     bool     `json:"canCheckOut"`
	CanNoShow       bool     `json:"canNoShow"`
	CanCancel       bool     `json:"canCancel"`
	CanUpdateStatus bool     `json:"canUpdateStatus"`
	NextStatuses    []Status `json:"nextStatuses"`
}

func EvaluateActions(b Booking, today time.Time) Actions {
	cancelled := b.Status == StatusCancelled
	return Actions{
		CanCheckIn:      !cancelled && GuardCheckIn(b, today),
		CanCheckOut:     GuardCheckOut(b),
		CanNoShow:       !cancelled && GuardNoShow(b, today),
		CanCancel:       !cancelled && GuardCancel(b, today),
		CanUpdateStatus: !cancelled,
		NextStatuses:    LegalNextStatuses(b.Status),
	}
}
