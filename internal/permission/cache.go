package permission

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

var ErrRefreshThrottled = errors.New("permission refresh throttled")

// Actor is the authenticated identity a table is fetched for.
type Actor struct {
	ActorID    string
	PropertyID string
}

type Fetcher interface {
	Fetch(ctx context.Context, actor Actor) (Table, error)
}

const fetchTimeout = 10 * time.Second

// Cache holds one session's capability table. It is filled by exactly one
// fetch and never patched; a role change needs Invalidate or Refresh.
type Cache struct {
	actor   Actor
	fetcher Fetcher
	limiter *rate.Limiter

	mu     sync.RWMutex
	status Status
	table  Table
	err    error
	errAt  time.Time
	gen    int

	retryAfter time.Duration
	now        func() time.Time

	flight singleflight.Group
}

func NewCache(actor Actor, fetcher Fetcher, refreshEvery time.Duration) *Cache {
	if refreshEvery <= 0 {
		refreshEvery = 10 * time.Second
	}
	return &Cache{
		actor:   actor,
		fetcher: fetcher,
		limiter:    rate.NewLimiter(rate.Every(refreshEvery), 1),
		status:     StatusUninitialized,
		retryAfter: refreshEvery,
		now:        time.Now,
	}
}

func (c *Cache) Actor() Actor { return c.actor }

func (c *Cache) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Err is the last fetch error while Status is StatusError.
func (c *Cache) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Resolve never blocks. Anything but a ready table with an entry for e
// yields the all-false record.
func (c *Cache) Resolve(e Endpoint) Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.status != StatusReady {
		return Denied(e)
	}
	if rec, ok := c.table[e]; ok {
		return rec
	}
	return Denied(e)
}

// Select is Resolve for callers that branch on "not known yet": it is nil
// until the table is ready.
func (c *Cache) Select(e Endpoint) *Record {
	if c.Status() != StatusReady {
		return nil
	}
	rec := c.Resolve(e)
	return &rec
}

// Load fetches the table if nothing has been fetched yet. Concurrent callers
// share one in-flight fetch; once ready it returns immediately. A failed fetch
// is reported as is until the reload interval has passed, after which the
// next Load fetches again. The fetch is detached from ctx so one caller going away does not fail the
// others.
func (c *Cache) Load(ctx context.Context) error {
	c.mu.Lock()
	switch c.status {
	case StatusReady:
		c.mu.Unlock()
		return nil
	case StatusError:
		if c.now().Sub(c.errAt) < c.retryAfter {
			err := c.err
			c.mu.Unlock()
			return err
		}
		c.status = StatusLoading
	case StatusUninitialized:
		c.status = StatusLoading
	}
	gen := c.gen
	c.mu.Unlock()

	_, err, _ := c.flight.Do("load:"+strconv.Itoa(gen), func() (any, error) {
		c.mu.RLock()
		done := c.gen != gen || c.status != StatusLoading
		c.mu.RUnlock()
		if done {
			return nil, c.Err()
		}
		return nil, c.fetch(context.WithoutCancel(ctx), gen)
	})
	return err
}

func (c *Cache) fetch(ctx context.Context, gen int) error {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	ctx, span := otel.Tracer("hotelops/permission").Start(ctx, "permission.fetch")
	span.SetAttributes(
		attribute.String("actor.id", c.actor.ActorID),
		attribute.String("property.id", c.actor.PropertyID),
	)
	defer span.End()

	table, err := c.fetcher.Fetch(ctx, c.actor)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		// Invalidated while in flight; the result belongs to an old role context.
		return err
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.status, c.table, c.err, c.errAt = StatusError, nil, err, c.now()
		return err
	}
	c.status, c.table, c.err = StatusReady, table, nil
	span.SetAttributes(attribute.Int("permission.endpoints", len(table)))
	return nil
}

// Invalidate drops the table. Until the next Load every endpoint resolves
// to the denied record.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.status, c.table, c.err = StatusUninitialized, nil, nil
}

// Refresh is an explicit invalidate-and-refetch, limited per session.
func (c *Cache) Refresh(ctx context.Context) error {
	if !c.limiter.Allow() {
		return ErrRefreshThrottled
	}
	c.Invalidate()
	return c.Load(ctx)
}

// Snapshot resolves every known endpoint.
func (c *Cache) Snapshot() (Status, []Record) {
	status := c.Status()
	out := make([]Record, 0, len(Endpoints))
	for _, e := range Endpoints {
		out = append(out, c.Resolve(e))
	}
	return status, out
}
