package booking

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Views caches rendered list and detail views per property. A mutation on any
// booking of a property drops all of that property's entries.
//
// Each property carries a generation that InvalidateProperty bumps. Readers
// take the generation before going to the store and put only if it is
// unchanged, so a read that raced a mutation never re-caches the old state.
type Views struct {
	items *expirable.LRU[string, any]

	mu   sync.Mutex
	gens map[string]uint64
}

func NewViews(size int, ttl time.Duration) *Views {
	if size <= 0 {
		size = 512
	}
	return &Views{
		items: expirable.NewLRU[string, any](size, nil, ttl),
		gens:  map[string]uint64{},
	}
}

func detailKey(propertyID, bookingID string, today time.Time) string {
	return propertyID + "|detail|" + bookingID + "|" + today.Format(time.DateOnly)
}

func listKey(propertyID string, f Filters, today time.Time) string {
	return propertyID + "|list|" + string(f.Scope) + "|" + string(f.Status) + "|" +
		strconv.Itoa(f.Page) + "|" + strconv.Itoa(f.PageSize) + "|" + today.Format(time.DateOnly)
}

func (v *Views) generation(propertyID string) uint64 {
	if v == nil {
		return 0
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gens[propertyID]
}

func (v *Views) get(key string) (any, bool) {
	if v == nil {
		return nil, false
	}
	return v.items.Get(key)
}

// put stores val unless propertyID was invalidated since gen was read.
func (v *Views) put(propertyID string, gen uint64, key string, val any) {
	if v == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.gens[propertyID] != gen {
		return
	}
	v.items.Add(key, val)
}

func (v *Views) InvalidateProperty(propertyID string) {
	if v == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gens[propertyID]++
	prefix := propertyID + "|"
	for _, k := range v.items.Keys() {
		if strings.HasPrefix(k, prefix) {
			v.items.Remove(k)
		}
	}
}
