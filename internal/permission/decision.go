package permission

import "net/url"

type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusLoading       Status = "loading"
	StatusReady         Status = "ready"
	StatusError         Status = "error"
)

type DecisionKind string

const (
	DecisionAllow    DecisionKind = "allow"
	DecisionRedirect DecisionKind = "redirect"
	// DecisionPending means the table is not usable yet, so no redirect is
	// decided either way.
	DecisionPending DecisionKind = "pending"
)

type Decision struct {
	Kind        DecisionKind
	Destination string
	Denied      Endpoint
}

// Location is the redirect target with the denied endpoint attached.
func (d Decision) Location() string {
	if d.Kind != DecisionRedirect {
		return ""
	}
	u, err := url.Parse(d.Destination)
	if err != nil {
		return d.Destination
	}
	q := u.Query()
	q.Set("endpoint", string(d.Denied))
	u.RawQuery = q.Encode()
	return u.String()
}

type Options struct {
	// Require is the capability to check; read when empty.
	Require Capability
	// Destination is where a denied actor is sent.
	Destination string
}

const DefaultDestination = "/unauthorized"

// GuardAccess decides whether a screen or action tied to e may proceed.
// Only a ready table can produce a redirect.
func GuardAccess(e Endpoint, status Status, rec Record, opts Options) Decision {
	if status != StatusReady {
		return Decision{Kind: DecisionPending}
	}
	req := opts.Require
	if req == "" {
		req = CapRead
	}
	if rec.Endpoint == e && rec.Allows(req) {
		return Decision{Kind: DecisionAllow}
	}
	dest := opts.Destination
	if dest == "" {
		dest = DefaultDestination
	}
	return Decision{Kind: DecisionRedirect, Destination: dest, Denied: e}
}
