package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"plan-review/internal/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ReviewCycleClosed is emitted once per successful verdict, after commit
type ReviewCycleClosed struct {
	ID            uuid.UUID           `json:"id"`
	UnitID        uint                `json:"unit_id"`
	ApplicationID string              `json:"application_id"`
	Topic         models.Topic        `json:"topic"`
	ReviewKind    models.ReviewKind   `json:"review_kind"`
	Action        models.ReviewAction `json:"action"`
	RecordID      uint                `json:"record_id"`
	ReviewerRef   string              `json:"reviewer_ref"`
	AssessorRef   string              `json:"assessor_ref"`
	OccurredAt    time.Time           `json:"occurred_at"`
}

// NewReviewCycleClosed builds the event for a closed record
func NewReviewCycleClosed(unit *models.ReviewableUnit, rec *models.ReviewRecord) ReviewCycleClosed {
	occurred := time.Now().UTC()
	if rec.ReviewedAt != nil {
		occurred = *rec.ReviewedAt
	}
	return ReviewCycleClosed{
		ID:            uuid.New(),
		UnitID:        unit.ID,
		ApplicationID: unit.ApplicationID,
		Topic:         unit.Topic,
		ReviewKind:    rec.ReviewKind,
		Action:        rec.Action,
		RecordID:      rec.ID,
		ReviewerRef:   rec.ReviewerRef,
		AssessorRef:   rec.AssessorRef,
		OccurredAt:    occurred,
	}
}

// Handler consumes review events
type Handler interface {
	HandleReviewCycleClosed(ctx context.Context, evt ReviewCycleClosed) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, evt ReviewCycleClosed) error

func (f HandlerFunc) HandleReviewCycleClosed(ctx context.Context, evt ReviewCycleClosed) error {
	return f(ctx, evt)
}

type subscriber struct {
	name    string
	handler Handler
}

// Dispatcher fans events out to subscribers without blocking the publisher
type Dispatcher struct {
	mu          sync.RWMutex
	subscribers []subscriber
	timeout     time.Duration
	closed      bool
	inFlight    sync.WaitGroup
}

// NewDispatcher creates a dispatcher; each delivery gets at most timeout
func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{timeout: timeout}
}

// Subscribe registers a handler under a name used in logs
func (d *Dispatcher) Subscribe(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, subscriber{name: name, handler: h})
}

// Publish hands the event to every subscriber in the background
func (d *Dispatcher) Publish(evt ReviewCycleClosed) {
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		slog.Warn("Dropping event after dispatcher shutdown", "event_id", evt.ID, "record_id", evt.RecordID)
		return
	}
	subs := make([]subscriber, len(d.subscribers))
	copy(subs, d.subscribers)
	d.inFlight.Add(1)
	d.mu.RUnlock()

	go func() {
		defer d.inFlight.Done()
		d.deliver(subs, evt)
	}()
}

func (d *Dispatcher) deliver(subs []subscriber, evt ReviewCycleClosed) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	// Subscribers are independent; one failing must not cancel the others
	var g errgroup.Group
	for _, s := range subs {
		g.Go(func() error {
			if err := s.handler.HandleReviewCycleClosed(ctx, evt); err != nil {
				slog.Error("Event subscriber failed",
					"subscriber", s.name,
					"event_id", evt.ID,
					"record_id", evt.RecordID,
					"error", err,
				)
				return fmt.Errorf("%s: %w", s.name, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		slog.Warn("Event delivery incomplete", "event_id", evt.ID, "error", err)
	}
}

// Close stops accepting events and waits for in-flight deliveries
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.inFlight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event dispatcher shutdown: %w", ctx.Err())
	}
}
