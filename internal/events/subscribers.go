package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"plan-review/internal/models"
)

// AuditWriter persists audit log entries
type AuditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuditSubscriber records every closed review cycle in the audit log
type AuditSubscriber struct {
	writer AuditWriter
}

// NewAuditSubscriber creates a new audit subscriber
func NewAuditSubscriber(writer AuditWriter) *AuditSubscriber {
	return &AuditSubscriber{writer: writer}
}

// HandleReviewCycleClosed writes one audit entry for the event
func (s *AuditSubscriber) HandleReviewCycleClosed(ctx context.Context, evt ReviewCycleClosed) error {
	details, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return s.writer.Create(ctx, &models.AuditLog{
		ActorRef: evt.ReviewerRef,
		Action:   "review." + string(evt.Action),
		Resource: fmt.Sprintf("review_record:%d", evt.RecordID),
		Details:  string(details),
	})
}

// LogSubscriber writes closed review cycles to the structured log
type LogSubscriber struct{}

// HandleReviewCycleClosed logs the event
func (LogSubscriber) HandleReviewCycleClosed(ctx context.Context, evt ReviewCycleClosed) error {
	slog.InfoContext(ctx, "Review cycle closed",
		"event_id", evt.ID,
		"application_id", evt.ApplicationID,
		"topic", evt.Topic,
		"review_kind", evt.ReviewKind,
		"action", evt.Action,
		"record_id", evt.RecordID,
		"reviewer", evt.ReviewerRef,
	)
	return nil
}
