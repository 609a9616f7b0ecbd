package booking

const DefaultPageSize = 20

// Filters is the list view configuration for a property's bookings.
// Status may be empty only under ScopeAll.
type Filters struct {
	Scope    Scope  `json:"scope"`
	Status   Status `json:"status,omitempty"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// Dimension names the filter the caller just changed.
type Dimension string

const (
	DimensionStatus Dimension = "status"
	DimensionScope  Dimension = "scope"
)

// Reconcile corrects f so that scope and status never contradict each other.
//
// A status change pulls the scope to the status's required scope. A scope
// change resets an invalid status to the scope's default. Either correction
// returns to the first page. The result is always consistent, so a second
// call is a no-op.
func Reconcile(f Filters, changed Dimension) Filters {
	out := f
	if out.Scope == "" {
		out.Scope = ScopeAll
	}
	if out.Page < 1 {
		out.Page = 1
	}
	if out.PageSize < 1 {
		out.PageSize = DefaultPageSize
	}

	if changed == DimensionStatus && out.Status != "" {
		if req := RequiredScope(out.Status, out.Scope); req != out.Scope {
			out.Scope = req
			out.Page = 1
		}
	}

	if !statusAllowed(out.Scope, out.Status) {
		out.Status = DefaultStatus(out.Scope)
		out.Page = 1
	}
	return out
}
