package booking

import "fmt"

type Status string

const (
	StatusConfirmed  Status = "CONFIRMED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusCheckedOut Status = "CHECKED_OUT"
	StatusCancelled  Status = "CANCELLED"
	StatusNoShow     Status = "NO_SHOW"
)

// Statuses lists every lifecycle state in display order.
var Statuses = []Status{StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled, StatusNoShow}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled, StatusNoShow:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status: %s", s)
	}
}

type Scope string

const (
	ScopeUpcoming Scope = "upcoming"
	ScopePast     Scope = "past"
	ScopeAll      Scope = "all"
)

func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeUpcoming, ScopePast, ScopeAll:
		return Scope(s), nil
	default:
		return "", fmt.Errorf("unknown scope: %s", s)
	}
}

var requiredScopes = map[Status]Scope{
	StatusConfirmed:  ScopeUpcoming,
	StatusCheckedIn:  ScopeUpcoming,
	StatusCheckedOut: ScopePast,
	StatusCancelled:  ScopeAll,
	StatusNoShow:     ScopeAll,
}

// RequiredScope returns the scope a status filter forces. Statuses without an
// entry leave current unchanged.
func RequiredScope(status Status, current Scope) Scope {
	if s, ok := requiredScopes[status]; ok {
		return s
	}
	return current
}

var scopeStatuses = map[Scope][]Status{
	ScopeUpcoming: {StatusConfirmed, StatusCheckedIn},
	ScopePast:     {StatusCheckedOut},
}

// AllowedStatuses is the set of status filters valid under scope.
// A nil result means any status (including none) is valid.
func AllowedStatuses(scope Scope) []Status {
	return scopeStatuses[scope]
}

func DefaultStatus(scope Scope) Status {
	switch scope {
	case ScopeUpcoming:
		return StatusConfirmed
	case ScopePast:
		return StatusCheckedOut
	default:
		return ""
	}
}

func statusAllowed(scope Scope, status Status) bool {
	allowed := AllowedStatuses(scope)
	if allowed == nil {
		return true
	}
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}
