package booking

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Proposal is the first phase of a status change. Nothing is written until
// the same actor confirms it; discarding it has no side effect.
type Proposal struct {
	ID         string    `json:"id"`
	BookingID  string    `json:"bookingId"`
	PropertyID string    `json:"propertyId"`
	From       Status    `json:"from"`
	To         Status    `json:"to"`
	Action     Action    `json:"action"`
	ActorID    string    `json:"actorId"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type Proposals struct {
	mu    sync.Mutex
	ttl   time.Duration
	items *expirable.LRU[string, Proposal]
}

func NewProposals(size int, ttl time.Duration) *Proposals {
	if size <= 0 {
		size = 1024
	}
	return &Proposals{
		ttl:   ttl,
		items: expirable.NewLRU[string, Proposal](size, nil, ttl),
	}
}

func (p *Proposals) Put(pr Proposal, now time.Time) Proposal {
	pr.ID = uuid.NewString()
	pr.ExpiresAt = now.Add(p.ttl)
	p.items.Add(pr.ID, pr)
	return pr
}

// Take removes and returns the proposal if it exists and belongs to the
// given property, booking and actor. A proposal can be taken at most once.
func (p *Proposals) Take(id, propertyID, bookingID, actorID string) (Proposal, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pr, ok := p.items.Get(id)
	if !ok || pr.PropertyID != propertyID || pr.BookingID != bookingID || pr.ActorID != actorID {
		return Proposal{}, false
	}
	p.items.Remove(id)
	return pr, true
}

// Discard drops a proposal owned by actorID. It reports whether one was removed.
func (p *Proposals) Discard(id, propertyID, bookingID, actorID string) bool {
	_, ok := p.Take(id, propertyID, bookingID, actorID)
	return ok
}
