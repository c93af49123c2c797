package events

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"plan-review/internal/models"
)

type recordingWriter struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func (w *recordingWriter) Create(_ context.Context, log *models.AuditLog) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.logs = append(w.logs, *log)
	return nil
}

func sampleEvent() ReviewCycleClosed {
	reviewedAt := time.Date(2024, 7, 1, 8, 30, 0, 0, time.UTC)
	unit := &models.ReviewableUnit{ID: 4, ApplicationID: "24/00012/FUL", Topic: "conditions"}
	rec := &models.ReviewRecord{
		ID:          9,
		ReviewKind:  models.ReviewKindAssessment,
		Action:      models.ActionRejected,
		ReviewerRef: "reviewer-1",
		AssessorRef: "officer-1",
		ReviewedAt:  &reviewedAt,
	}
	return NewReviewCycleClosed(unit, rec)
}

func TestNewReviewCycleClosed(t *testing.T) {
	evt := sampleEvent()
	if evt.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Errorf("expected generated event id")
	}
	if evt.UnitID != 4 || evt.RecordID != 9 || evt.Action != models.ActionRejected {
		t.Errorf("unexpected event: %+v", evt)
	}
	if !evt.OccurredAt.Equal(time.Date(2024, 7, 1, 8, 30, 0, 0, time.UTC)) {
		t.Errorf("occurred_at = %v, want reviewed_at", evt.OccurredAt)
	}
}

func TestDispatcherDeliversToAllSubscribers(t *testing.T) {
	d := NewDispatcher(time.Second)
	writer := &recordingWriter{}
	d.Subscribe("audit", NewAuditSubscriber(writer))
	d.Subscribe("log", LogSubscriber{})
	d.Subscribe("failing", HandlerFunc(func(context.Context, ReviewCycleClosed) error {
		return errors.New("smtp down")
	}))

	d.Publish(sampleEvent())

	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	if len(writer.logs) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(writer.logs))
	}
	entry := writer.logs[0]
	if entry.Action != "review.rejected" || entry.Resource != "review_record:9" || entry.ActorRef != "reviewer-1" {
		t.Errorf("unexpected audit entry: %+v", entry)
	}
	if !strings.Contains(entry.Details, `"topic":"conditions"`) {
		t.Errorf("details should carry the event: %s", entry.Details)
	}
}

func TestPublishDoesNotBlock(t *testing.T) {
	d := NewDispatcher(time.Second)
	release := make(chan struct{})
	d.Subscribe("slow", HandlerFunc(func(context.Context, ReviewCycleClosed) error {
		<-release
		return nil
	}))

	done := make(chan struct{})
	go func() {
		d.Publish(sampleEvent())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := d.Close(ctx); err == nil {
		t.Errorf("expected Close to time out while delivery is pending")
	}

	close(release)
	if err := d.Close(context.Background()); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	d := NewDispatcher(time.Second)
	called := false
	d.Subscribe("flag", HandlerFunc(func(context.Context, ReviewCycleClosed) error {
		called = true
		return nil
	}))
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	d.Publish(sampleEvent())
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if called {
		t.Errorf("subscriber called after shutdown")
	}
}
