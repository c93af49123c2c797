package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"plan-review/internal/apperror"
	"plan-review/internal/auditchain"
	"plan-review/internal/events"
	"plan-review/internal/models"
	"plan-review/internal/ordering"
	"plan-review/internal/review"
	"plan-review/internal/topics"
	"plan-review/pkg/validator"
)

// Publisher receives review events after the verdict has been committed
type Publisher interface {
	Publish(evt events.ReviewCycleClosed)
}

// Coordinator runs the assessor and reviewer operations of the review cycle
type Coordinator struct {
	store     Store
	catalog   Catalog
	publisher Publisher
	sealer    CommentSealer
	now       func() time.Time
}

// NewCoordinator creates a new coordinator. publisher and sealer may be nil.
func NewCoordinator(store Store, catalog Catalog, publisher Publisher, sealer CommentSealer) *Coordinator {
	return &Coordinator{
		store:     store,
		catalog:   catalog,
		publisher: publisher,
		sealer:    sealer,
		now: func() time.Time {
			// Postgres keeps microseconds
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

// WithClock replaces the time source
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	c.now = now
	return c
}

// SubmitDraft merges a delta into the unit's own fields.
// Empty values clear a field. The unit is created on first use.
func (c *Coordinator) SubmitDraft(ctx context.Context, actor, applicationID string, topic models.Topic, delta models.Fields) (*models.ReviewableUnit, error) {
	rules, err := c.catalog.Rules(topic)
	if err != nil {
		return nil, err
	}
	clean := models.Fields(validator.SanitizeFields(delta))
	if err := rules.ValidateFields(clean); err != nil {
		return nil, err
	}

	var unit *models.ReviewableUnit
	err = c.store.InTx(ctx, func(tx Tx) error {
		unit, err = tx.EnsureUnit(ctx, applicationID, topic)
		if err != nil {
			return fmt.Errorf("failed to load unit: %w", err)
		}
		if err := ensureEditable(unit); err != nil {
			return err
		}

		merged := unit.Content.Merge(clean)
		if merged.Equal(unit.Content) {
			return nil
		}
		unit.Content = merged
		c.touch(unit)
		if err := tx.UpdateUnit(ctx, unit); err != nil {
			return fmt.Errorf("failed to update unit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperror.WithOwner(err, unitID(unit))
	}

	slog.Debug("Draft saved", "unit_id", unit.ID, "topic", topic, "actor", actor)
	return unit, nil
}

// MarkComplete flags the unit as ready for review once the topic's rules hold
func (c *Coordinator) MarkComplete(ctx context.Context, actor, applicationID string, topic models.Topic) (*models.ReviewableUnit, error) {
	rules, err := c.catalog.Rules(topic)
	if err != nil {
		return nil, err
	}

	var unit *models.ReviewableUnit
	err = c.store.InTx(ctx, func(tx Tx) error {
		unit, err = tx.EnsureUnit(ctx, applicationID, topic)
		if err != nil {
			return fmt.Errorf("failed to load unit: %w", err)
		}
		if unit.CompletionState == models.CompletionComplete {
			return nil
		}

		children, err := tx.ListChildren(ctx, unit.ID)
		if err != nil {
			return fmt.Errorf("failed to list children: %w", err)
		}
		if err := rules.ValidateCompletion(unit, children); err != nil {
			return err
		}

		unit.CompletionState = models.CompletionComplete
		unit.UpdatedAt = c.now()
		if err := tx.UpdateUnit(ctx, unit); err != nil {
			return fmt.Errorf("failed to update unit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperror.WithOwner(err, unitID(unit))
	}

	slog.Info("Unit marked complete", "unit_id", unit.ID, "topic", topic, "actor", actor)
	return unit, nil
}

// Reopen makes a completed unit editable again. It is refused while any
// review track of the unit is waiting for a verdict.
func (c *Coordinator) Reopen(ctx context.Context, actor, applicationID string, topic models.Topic) (*models.ReviewableUnit, error) {
	rules, err := c.catalog.Rules(topic)
	if err != nil {
		return nil, err
	}

	var unit *models.ReviewableUnit
	err = c.store.InTx(ctx, func(tx Tx) error {
		unit, err = lockExisting(ctx, tx, applicationID, topic)
		if err != nil {
			return err
		}
		if unit.CompletionState != models.CompletionComplete {
			return nil
		}

		for _, kind := range rules.ReviewKinds() {
			current, err := tx.CurrentRecord(ctx, unit.ID, kind)
			if err != nil {
				return fmt.Errorf("failed to load current record: %w", err)
			}
			if current != nil && !current.IsClosed() {
				return apperror.Forbidden(fmt.Sprintf("the %s review is still pending", kind))
			}
		}

		unit.CompletionState = models.CompletionInProgress
		unit.UpdatedAt = c.now()
		if err := tx.UpdateUnit(ctx, unit); err != nil {
			return fmt.Errorf("failed to update unit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperror.WithOwner(err, unitID(unit))
	}

	slog.Info("Unit reopened", "unit_id", unit.ID, "topic", topic, "actor", actor)
	return unit, nil
}

// InsertChild adds an item to the unit. A position of 0 appends.
func (c *Coordinator) InsertChild(ctx context.Context, actor, applicationID string, topic models.Topic, content models.Fields, position int) (*models.Child, error) {
	rules, err := c.catalog.Rules(topic)
	if err != nil {
		return nil, err
	}
	clean := models.Fields(validator.SanitizeFields(content))
	if err := rules.ValidateChild(clean); err != nil {
		return nil, err
	}

	var (
		unit  *models.ReviewableUnit
		child *models.Child
	)
	err = c.store.InTx(ctx, func(tx Tx) error {
		unit, err = tx.EnsureUnit(ctx, applicationID, topic)
		if err != nil {
			return fmt.Errorf("failed to load unit: %w", err)
		}
		if err := ensureEditable(unit); err != nil {
			return err
		}

		child, err = ordering.Insert(ctx, tx, unit.ID, clean, position)
		if err != nil {
			return err
		}
		return c.saveTouched(ctx, tx, unit)
	})
	if err != nil {
		return nil, apperror.WithOwner(err, unitID(unit))
	}

	slog.Debug("Child inserted", "unit_id", unit.ID, "child_id", child.ID, "position", child.Position, "actor", actor)
	return child, nil
}

// UpdateChild replaces the content of an item
func (c *Coordinator) UpdateChild(ctx context.Context, actor string, childID uint, content models.Fields) (*models.Child, error) {
	clean := models.Fields(validator.SanitizeFields(content))

	var child *models.Child
	unit, err := c.withChildUnit(ctx, childID, func(tx Tx, unit *models.ReviewableUnit, rules topics.Rules) error {
		if err := ensureEditable(unit); err != nil {
			return err
		}
		if err := rules.ValidateChild(clean); err != nil {
			return err
		}

		var err error
		child, err = tx.GetChild(ctx, childID)
		if err != nil {
			return fmt.Errorf("failed to load child: %w", err)
		}
		if child == nil {
			return apperror.NotFound("child not found")
		}
		if child.SentToApplicant {
			return apperror.Forbidden("child has been sent to the applicant and cannot be edited")
		}
		if child.Content.Equal(clean) {
			return nil
		}

		child.Content = clean
		child.UpdatedAt = c.now()
		if err := tx.UpdateChild(ctx, child); err != nil {
			return fmt.Errorf("failed to update child: %w", err)
		}
		return c.saveTouched(ctx, tx, unit)
	})
	if err != nil {
		return nil, apperror.WithOwner(err, unitID(unit))
	}

	slog.Debug("Child updated", "unit_id", unit.ID, "child_id", childID, "actor", actor)
	return child, nil
}

// RemoveChild deletes an item and renumbers the rest
func (c *Coordinator) RemoveChild(ctx context.Context, actor string, childID uint) error {
	unit, err := c.withChildUnit(ctx, childID, func(tx Tx, unit *models.ReviewableUnit, _ topics.Rules) error {
		if err := ensureEditable(unit); err != nil {
			return err
		}
		if _, err := ordering.Remove(ctx, tx, unit.ID, childID); err != nil {
			return err
		}
		return c.saveTouched(ctx, tx, unit)
	})
	if err != nil {
		return apperror.WithOwner(err, unitID(unit))
	}

	slog.Debug("Child removed", "unit_id", unit.ID, "child_id", childID, "actor", actor)
	return nil
}

// ReorderChild moves an item to target and returns the new ordering
func (c *Coordinator) ReorderChild(ctx context.Context, actor string, childID uint, target int) ([]models.Child, error) {
	var children []models.Child
	unit, err := c.withChildUnit(ctx, childID, func(tx Tx, unit *models.ReviewableUnit, _ topics.Rules) error {
		if err := ensureEditable(unit); err != nil {
			return err
		}
		changed, err := ordering.Reorder(ctx, tx, unit.ID, childID, target)
		if err != nil {
			return err
		}
		if changed {
			if err := c.saveTouched(ctx, tx, unit); err != nil {
				return err
			}
		}

		children, err = tx.ListChildren(ctx, unit.ID)
		if err != nil {
			return fmt.Errorf("failed to list children: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperror.WithOwner(err, unitID(unit))
	}

	slog.Debug("Child reordered", "unit_id", unit.ID, "child_id", childID, "position", target, "actor", actor)
	return ordering.Sorted(children), nil
}

// MarkChildSent records that an item was sent to the applicant.
// From then on it can be neither edited nor removed.
func (c *Coordinator) MarkChildSent(ctx context.Context, actor string, childID uint) (*models.Child, error) {
	var child *models.Child
	unit, err := c.withChildUnit(ctx, childID, func(tx Tx, unit *models.ReviewableUnit, rules topics.Rules) error {
		if !rules.Sendable() {
			return apperror.Invalid("sent_to_applicant", fmt.Sprintf("items of %s are not sent to the applicant", unit.Topic))
		}

		var err error
		child, err = tx.GetChild(ctx, childID)
		if err != nil {
			return fmt.Errorf("failed to load child: %w", err)
		}
		if child == nil {
			return apperror.NotFound("child not found")
		}
		if child.SentToApplicant {
			return nil
		}

		now := c.now()
		child.SentToApplicant = true
		child.SentAt = &now
		child.UpdatedAt = now
		if err := tx.UpdateChild(ctx, child); err != nil {
			return fmt.Errorf("failed to update child: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperror.WithOwner(err, unitID(unit))
	}

	slog.Info("Child sent to applicant", "unit_id", unit.ID, "child_id", childID, "actor", actor)
	return child, nil
}

// SubmitForReview opens a review record for a completed unit.
// Submitting again while a record is open returns that record, moved to the
// latest version when the unit changed after it was submitted.
func (c *Coordinator) SubmitForReview(ctx context.Context, assessor, applicationID string, topic models.Topic, kind models.ReviewKind) (*models.ReviewRecord, error) {
	if strings.TrimSpace(assessor) == "" {
		return nil, apperror.Invalid("assessor_ref", "assessor is required")
	}
	rules, err := c.catalog.Rules(topic)
	if err != nil {
		return nil, err
	}
	kind, err = resolveKind(rules, kind)
	if err != nil {
		return nil, err
	}

	var (
		unit        *models.ReviewableUnit
		rec         *models.ReviewRecord
		created     bool
		resubmitted bool
	)
	err = c.store.InTx(ctx, func(tx Tx) error {
		unit, err = lockExisting(ctx, tx, applicationID, topic)
		if apperror.IsKind(err, apperror.KindNotFound) {
			return apperror.NotReady("completion_state", "the unit has not been started")
		}
		if err != nil {
			return err
		}
		if unit.CompletionState != models.CompletionComplete {
			return apperror.NotReady("completion_state", "the unit must be marked complete before review")
		}

		current, err := tx.CurrentRecord(ctx, unit.ID, kind)
		if err != nil {
			return fmt.Errorf("failed to load current record: %w", err)
		}
		if current != nil {
			if !current.IsClosed() {
				rec = current
				if !review.IsStale(current, unit) {
					return nil
				}
				if err := review.Resubmit(current, assessor, c.now()); err != nil {
					return err
				}
				if err := tx.ResubmitRecord(ctx, current); err != nil {
					return fmt.Errorf("failed to resubmit review record: %w", err)
				}
				resubmitted = true
				return nil
			}
			if current.ReviewedAt != nil && !unit.ContentUpdatedAt.After(*current.ReviewedAt) {
				return apperror.NotReady("content", "nothing has changed since the last review")
			}
			if err := tx.SupersedeRecord(ctx, current.ID); err != nil {
				return fmt.Errorf("failed to supersede record: %w", err)
			}
		}

		rec = review.Open(unit.ID, kind, assessor, current, c.now())
		if err := tx.InsertRecord(ctx, rec); err != nil {
			return fmt.Errorf("failed to create review record: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, apperror.WithOwner(err, unitID(unit))
	}

	if resubmitted {
		slog.Info("Open review moved to the latest version", "unit_id", unit.ID, "topic", topic, "review_kind", kind, "record_id", rec.ID, "assessor", assessor)
	}
	if created {
		slog.Info("Submitted for review", "unit_id", unit.ID, "topic", topic, "review_kind", kind, "record_id", rec.ID, "assessor", assessor)
	}
	return rec, nil
}

// Accept closes the current record as accepted
func (c *Coordinator) Accept(ctx context.Context, reviewer string, recordID uint) (*models.ReviewRecord, error) {
	return c.closeCycle(ctx, recordID, review.Verdict{Action: models.ActionAccepted, ReviewerRef: reviewer}, nil)
}

// EditAndAccept applies the reviewer's changes and accepts in one step
func (c *Coordinator) EditAndAccept(ctx context.Context, reviewer string, recordID uint, delta models.ContentDelta) (*models.ReviewRecord, error) {
	if delta.IsEmpty() {
		return nil, apperror.Invalid("content", "edit and accept needs at least one change")
	}
	return c.closeCycle(ctx, recordID, review.Verdict{Action: models.ActionEditedAndAccepted, ReviewerRef: reviewer}, &delta)
}

// Reject closes the current record as rejected and hands the unit back to the assessor
func (c *Coordinator) Reject(ctx context.Context, reviewer string, recordID uint, comment string) (*models.ReviewRecord, error) {
	return c.closeCycle(ctx, recordID, review.Verdict{Action: models.ActionRejected, Comment: comment, ReviewerRef: reviewer}, nil)
}

func (c *Coordinator) closeCycle(ctx context.Context, recordID uint, v review.Verdict, delta *models.ContentDelta) (*models.ReviewRecord, error) {
	if err := review.CheckVerdict(v); err != nil {
		return nil, err
	}

	target, err := c.store.GetRecord(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to load review record: %w", err)
	}
	if target == nil {
		return nil, apperror.NotFound("review record not found")
	}

	plainComment := strings.TrimSpace(v.Comment)
	sealedComment := ""
	if c.sealer != nil && plainComment != "" {
		sealedComment, err = c.sealer.Seal(ctx, plainComment)
		if err != nil {
			return nil, fmt.Errorf("failed to seal comment: %w", err)
		}
	}

	var (
		unit   *models.ReviewableUnit
		closed *models.ReviewRecord
	)
	err = c.store.InTx(ctx, func(tx Tx) error {
		unit, err = tx.LockUnit(ctx, target.OwnerID)
		if err != nil {
			return fmt.Errorf("failed to lock unit: %w", err)
		}
		if unit == nil {
			return apperror.NotFound("unit not found")
		}

		current, err := tx.CurrentRecord(ctx, unit.ID, target.ReviewKind)
		if err != nil {
			return fmt.Errorf("failed to load current record: %w", err)
		}
		if current == nil || current.ID != recordID {
			return apperror.StaleReview("the review record has been superseded")
		}
		if review.IsStale(current, unit) {
			return apperror.StaleReview("the unit has changed since it was submitted for review")
		}

		if err := review.Close(current, v, c.now()); err != nil {
			return err
		}
		if sealedComment != "" {
			current.Comment = sealedComment
			current.CommentSealed = true
		}

		if delta != nil {
			if err := c.applyReviewerEdit(ctx, tx, unit, delta); err != nil {
				return err
			}
		}
		if v.Action == models.ActionRejected {
			unit.CompletionState = models.CompletionInProgress
			unit.UpdatedAt = c.now()
			if err := tx.UpdateUnit(ctx, unit); err != nil {
				return fmt.Errorf("failed to update unit: %w", err)
			}
		}

		history, err := tx.ListRecords(ctx, unit.ID, current.ReviewKind)
		if err != nil {
			return fmt.Errorf("failed to load review history: %w", err)
		}
		current.ChainHash = auditchain.Compute(auditchain.PreviousHash(history), current)

		if err := tx.CloseRecord(ctx, current); err != nil {
			return fmt.Errorf("failed to close review record: %w", err)
		}
		closed = current
		return nil
	})
	if err != nil {
		return nil, apperror.WithOwner(err, target.OwnerID)
	}

	slog.Info("Review verdict recorded",
		"unit_id", unit.ID,
		"topic", unit.Topic,
		"review_kind", closed.ReviewKind,
		"record_id", closed.ID,
		"action", closed.Action,
		"reviewer", closed.ReviewerRef,
	)

	if c.publisher != nil {
		c.publisher.Publish(events.NewReviewCycleClosed(unit, closed))
	}

	if closed.CommentSealed {
		closed.Comment = plainComment
	}
	return closed, nil
}

// applyReviewerEdit writes the reviewer's changes. Reviewer edits are not
// assessor edits, so content_updated_at stays as it is.
func (c *Coordinator) applyReviewerEdit(ctx context.Context, tx Tx, unit *models.ReviewableUnit, delta *models.ContentDelta) error {
	rules, err := c.catalog.Rules(unit.Topic)
	if err != nil {
		return err
	}
	now := c.now()

	if len(delta.Fields) > 0 {
		clean := models.Fields(validator.SanitizeFields(delta.Fields))
		if err := rules.ValidateFields(clean); err != nil {
			return err
		}
		unit.Content = unit.Content.Merge(clean)
		unit.UpdatedAt = now
		if err := tx.UpdateUnit(ctx, unit); err != nil {
			return fmt.Errorf("failed to update unit: %w", err)
		}
	}

	for _, edit := range delta.Children {
		child, err := tx.GetChild(ctx, edit.ChildID)
		if err != nil {
			return fmt.Errorf("failed to load child: %w", err)
		}
		if child == nil || child.OwnerID != unit.ID {
			return apperror.NotFound(fmt.Sprintf("child %d not found", edit.ChildID))
		}
		if child.SentToApplicant {
			return apperror.Forbidden("child has been sent to the applicant and cannot be edited")
		}
		clean := models.Fields(validator.SanitizeFields(edit.Content))
		if err := rules.ValidateChild(clean); err != nil {
			return err
		}
		child.Content = clean
		child.UpdatedAt = now
		if err := tx.UpdateChild(ctx, child); err != nil {
			return fmt.Errorf("failed to update child: %w", err)
		}
	}
	return nil
}

// withChildUnit locks the unit that owns childID and runs fn in one transaction
func (c *Coordinator) withChildUnit(ctx context.Context, childID uint, fn func(tx Tx, unit *models.ReviewableUnit, rules topics.Rules) error) (*models.ReviewableUnit, error) {
	child, err := c.store.GetChild(ctx, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to load child: %w", err)
	}
	if child == nil {
		return nil, apperror.NotFound("child not found")
	}

	var unit *models.ReviewableUnit
	err = c.store.InTx(ctx, func(tx Tx) error {
		unit, err = tx.LockUnit(ctx, child.OwnerID)
		if err != nil {
			return fmt.Errorf("failed to lock unit: %w", err)
		}
		if unit == nil {
			return apperror.NotFound("unit not found")
		}
		rules, err := c.catalog.Rules(unit.Topic)
		if err != nil {
			return err
		}
		return fn(tx, unit, rules)
	})
	if unit == nil {
		unit = &models.ReviewableUnit{ID: child.OwnerID}
	}
	return unit, err
}

// touch records an assessor edit on the unit
func (c *Coordinator) touch(unit *models.ReviewableUnit) {
	now := c.now()
	unit.ContentUpdatedAt = now
	unit.UpdatedAt = now
	if unit.CompletionState == models.CompletionNotStarted {
		unit.CompletionState = models.CompletionInProgress
	}
}

func (c *Coordinator) saveTouched(ctx context.Context, tx Tx, unit *models.ReviewableUnit) error {
	c.touch(unit)
	if err := tx.UpdateUnit(ctx, unit); err != nil {
		return fmt.Errorf("failed to update unit: %w", err)
	}
	return nil
}

func ensureEditable(unit *models.ReviewableUnit) error {
	if unit.CompletionState == models.CompletionComplete {
		return apperror.Forbidden("the unit is complete; reopen it before editing")
	}
	return nil
}

func lockExisting(ctx context.Context, tx Tx, applicationID string, topic models.Topic) (*models.ReviewableUnit, error) {
	found, err := tx.FindUnit(ctx, applicationID, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to find unit: %w", err)
	}
	if found == nil {
		return nil, apperror.NotFound("unit not found")
	}
	unit, err := tx.LockUnit(ctx, found.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock unit: %w", err)
	}
	if unit == nil {
		return nil, apperror.NotFound("unit not found")
	}
	return unit, nil
}

func resolveKind(rules topics.Rules, kind models.ReviewKind) (models.ReviewKind, error) {
	if kind == "" {
		return rules.ReviewKinds()[0], nil
	}
	if !rules.HasReviewKind(kind) {
		return "", apperror.Invalid("review_kind", fmt.Sprintf("unknown review kind %q", kind))
	}
	return kind, nil
}

func unitID(unit *models.ReviewableUnit) uint {
	if unit == nil {
		return 0
	}
	return unit.ID
}
