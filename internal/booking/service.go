package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"hotelops/internal/events"
)

var (
	ErrNotFound         = errors.New("booking not found")
	ErrProposalNotFound = errors.New("proposal not found or expired")
)

// Mutation is applied to the locked current row inside the store's transaction.
// Returning an error leaves the row untouched.
type Mutation struct {
	ActorID string
	Action  Action
	Apply   func(current Booking) (Booking, error)
}

type Store interface {
	List(ctx context.Context, propertyID string, f Filters, today time.Time) ([]Booking, int, error)
	Get(ctx context.Context, propertyID, bookingID string) (*Booking, error)
	Update(ctx context.Context, propertyID, bookingID string, m Mutation) (*Booking, error)
	Events(ctx context.Context, propertyID, bookingID string) ([]events.Event, error)
}

type ListResult struct {
	Filters Filters   `json:"filters"`
	Items   []Booking `json:"items"`
	Total   int       `json:"total"`
}

type Detail struct {
	Booking Booking `json:"booking"`
	Actions Actions `json:"actions"`
}

type Service struct {
	store     Store
	proposals *Proposals
	views     *Views
	now       func() time.Time
	loc       *time.Location
	tracer    trace.Tracer

	// cancels collapses concurrent cancellation submits for one booking.
	cancels singleflight.Group
}

type ServiceOptions struct {
	Proposals *Proposals
	Views     *Views
	Now       func() time.Time
	Location  *time.Location
}

func NewService(store Store, opts ServiceOptions) *Service {
	s := &Service{
		store:     store,
		proposals: opts.Proposals,
		views:     opts.Views,
		now:       opts.Now,
		loc:       opts.Location,
		tracer:    otel.Tracer("hotelops/booking"),
	}
	if s.proposals == nil {
		s.proposals = NewProposals(0, 5*time.Minute)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	return s
}

// Today is the current calendar day at the property.
func (s *Service) Today() time.Time {
	return Day(s.now().In(s.loc))
}

func (s *Service) start(ctx context.Context, op, propertyID, bookingID string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("property.id", propertyID)}
	if bookingID != "" {
		attrs = append(attrs, attribute.String("booking.id", bookingID))
	}
	return s.tracer.Start(ctx, "booking."+op, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		var rt RejectedTransition
		if errors.As(err, &rt) {
			span.SetAttributes(attribute.String("booking.rejected", rt.Code))
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}

// List reconciles f against the changed dimension before querying, so the
// store never sees a contradictory scope/status pair.
func (s *Service) List(ctx context.Context, propertyID string, f Filters, changed Dimension) (res ListResult, err error) {
	ctx, span := s.start(ctx, "list", propertyID, "")
	defer func() { finish(span, err) }()

	f = Reconcile(f, changed)
	today := s.Today()
	key := listKey(propertyID, f, today)
	if v, ok := s.views.get(key); ok {
		return v.(ListResult), nil
	}
	gen := s.views.generation(propertyID)

	items, total, err := s.store.List(ctx, propertyID, f, today)
	if err != nil {
		return ListResult{}, err
	}
	if items == nil {
		items = []Booking{}
	}
	res = ListResult{Filters: f, Items: items, Total: total}
	s.views.put(propertyID, gen, key, res)
	return res, nil
}

func (s *Service) Get(ctx context.Context, propertyID, bookingID string) (d Detail, err error) {
	ctx, span := s.start(ctx, "get", propertyID, bookingID)
	defer func() { finish(span, err) }()

	today := s.Today()
	key := detailKey(propertyID, bookingID, today)
	if v, ok := s.views.get(key); ok {
		return v.(Detail), nil
	}
	gen := s.views.generation(propertyID)

	b, err := s.store.Get(ctx, propertyID, bookingID)
	if err != nil {
		return Detail{}, err
	}
	d = Detail{Booking: *b, Actions: EvaluateActions(*b, today)}
	s.views.put(propertyID, gen, key, d)
	return d, nil
}

// Propose validates a generic status change and parks it for confirmation.
func (s *Service) Propose(ctx context.Context, propertyID, bookingID, actorID string, next Status) (pr Proposal, err error) {
	ctx, span := s.start(ctx, "propose", propertyID, bookingID)
	defer func() { finish(span, err) }()

	b, err := s.store.Get(ctx, propertyID, bookingID)
	if err != nil {
		return Proposal{}, err
	}
	if err := CheckStatusChange(*b, next, s.Today()); err != nil {
		return Proposal{}, err
	}
	return s.proposals.Put(Proposal{
		BookingID:  b.ID,
		PropertyID: propertyID,
		From:       b.Status,
		To:         next,
		Action:     ActionUpdateStatus,
		ActorID:    actorID,
	}, s.now()), nil
}

// ProposeAction is Propose for a guest-facing button (check-in, check-out, no-show).
func (s *Service) ProposeAction(ctx context.Context, propertyID, bookingID, actorID string, a Action) (pr Proposal, err error) {
	ctx, span := s.start(ctx, "propose_action", propertyID, bookingID)
	defer func() { finish(span, err) }()

	b, err := s.store.Get(ctx, propertyID, bookingID)
	if err != nil {
		return Proposal{}, err
	}
	next, err := ActionTarget(*b, a, s.Today())
	if err != nil {
		return Proposal{}, err
	}
	return s.proposals.Put(Proposal{
		BookingID:  b.ID,
		PropertyID: propertyID,
		From:       b.Status,
		To:         next,
		Action:     a,
		ActorID:    actorID,
	}, s.now()), nil
}

// Confirm commits a proposal. The booking is re-validated under a row lock;
// if it moved since the proposal was made the change is rejected.
func (s *Service) Confirm(ctx context.Context, propertyID, bookingID, proposalID, actorID string) (b *Booking, err error) {
	ctx, span := s.start(ctx, "confirm", propertyID, bookingID)
	defer func() { finish(span, err) }()

	pr, ok := s.proposals.Take(proposalID, propertyID, bookingID, actorID)
	if !ok {
		return nil, ErrProposalNotFound
	}
	today := s.Today()

	b, err = s.store.Update(ctx, propertyID, bookingID, Mutation{
		ActorID: actorID,
		Action:  pr.Action,
		Apply: func(cur Booking) (Booking, error) {
			if cur.Status != pr.From {
				return cur, reject("STALE_PROPOSAL", "booking changed to %s since the change was proposed", cur.Status)
			}
			if pr.Action != ActionUpdateStatus {
				next, err := ActionTarget(cur, pr.Action, today)
				if err != nil {
					return cur, err
				}
				cur.Status = next
				return cur, nil
			}
			return ApplyStatusChange(cur, pr.To, today)
		},
	})
	if err != nil {
		return nil, err
	}
	s.views.InvalidateProperty(propertyID)
	return b, nil
}

func (s *Service) Discard(propertyID, bookingID, proposalID, actorID string) error {
	if !s.proposals.Discard(proposalID, propertyID, bookingID, actorID) {
		return ErrProposalNotFound
	}
	return nil
}

// Cancel cancels a booking. Identical concurrent submits (same actor, fee and
// comment) share one write; any other submit is serialized by the row lock and
// rejected with ALREADY_CANCELLED once the first one lands. The shared write is
// detached from ctx so one caller going away does not fail the others.
func (s *Service) Cancel(ctx context.Context, propertyID, bookingID, actorID string, c Cancellation) (b *Booking, err error) {
	ctx, span := s.start(ctx, "cancel", propertyID, bookingID)
	defer func() { finish(span, err) }()

	today := s.Today()
	key := cancelKey(propertyID, bookingID, actorID, c)
	v, err, _ := s.cancels.Do(key, func() (any, error) {
		return s.store.Update(context.WithoutCancel(ctx), propertyID, bookingID, Mutation{
			ActorID: actorID,
			Action:  ActionCancel,
			Apply: func(cur Booking) (Booking, error) {
				return ApplyCancellation(cur, c, today)
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.views.InvalidateProperty(propertyID)
	return v.(*Booking), nil
}

func cancelKey(propertyID, bookingID, actorID string, c Cancellation) string {
	return strings.Join([]string{
		propertyID, bookingID, actorID,
		c.Fee.Round(2).StringFixed(2),
		strings.TrimSpace(c.Comment),
	}, "\x00")
}

func (s *Service) Events(ctx context.Context, propertyID, bookingID string) (evs []events.Event, err error) {
	ctx, span := s.start(ctx, "events", propertyID, bookingID)
	defer func() { finish(span, err) }()

	return s.store.Events(ctx, propertyID, bookingID)
}
