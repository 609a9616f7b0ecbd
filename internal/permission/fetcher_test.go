package permission

import (
	"context"
	"sync"
	"sync/atomic"
)

type fakeFetcher struct {
	mu    sync.Mutex
	table Table
	err   error
	calls atomic.Int32

	// release, when set, blocks every fetch until it is closed.
	release chan struct{}
}

func (f *fakeFetcher) Fetch(ctx context.Context, actor Actor) (Table, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.table, f.err
}

func (f *fakeFetcher) set(table Table, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.table, f.err = table, err
}

func readOnly(e Endpoint) Record {
	return Record{Endpoint: e, CanRead: true}
}

var testActor = Actor{ActorID: "actor-1", PropertyID: "prop-1"}
