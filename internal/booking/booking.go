package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

type RoomAssignment struct {
	RoomID     string `json:"roomId"`
	RoomNumber string `json:"roomNumber"`
	RoomType   string `json:"roomType"`
}

type Booking struct {
	ID                 string           `json:"id"`
	PropertyID         string           `json:"propertyId"`
	Reference          string           `json:"reference"`
	GuestName          string           `json:"guestName"`
	Status             Status           `json:"bookingStatus"`
	EstimatedArrival   *time.Time       `json:"estimatedArrival,omitempty"`
	EstimatedDeparture *time.Time       `json:"estimatedDeparture,omitempty"`
	Rooms              []RoomAssignment `json:"rooms"`
	Adults             int              `json:"adults"`
	Children           int              `json:"children"`
	TotalAmount        decimal.Decimal  `json:"totalAmount"`
	Currency           string           `json:"currency"`
	CancellationFee    *decimal.Decimal `json:"cancellationFee,omitempty"`
	CancellationNote   string           `json:"cancellationComment,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// InScope reports whether b belongs to scope relative to today.
// Upcoming bookings have not yet departed; past ones have.
func InScope(b Booking, scope Scope, today time.Time) bool {
	switch scope {
	case ScopeUpcoming:
		return b.EstimatedDeparture == nil || !sameDayIn(*b.EstimatedDeparture, today).Before(Day(today))
	case ScopePast:
		return b.EstimatedDeparture != nil && sameDayIn(*b.EstimatedDeparture, today).Before(Day(today))
	default:
		return true
	}
}
