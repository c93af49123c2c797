package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"plan-review/internal/apperror"
	"plan-review/internal/auditchain"
	"plan-review/internal/models"
	"plan-review/internal/ordering"
	"plan-review/internal/status"

	"golang.org/x/sync/errgroup"
)

// taskListConcurrency bounds the projections run in parallel by TaskList
const taskListConcurrency = 4

// UnitOverview is a unit together with its children and review tracks
type UnitOverview struct {
	ApplicationID string                 `json:"application_id"`
	Topic         models.Topic           `json:"topic"`
	Unit          *models.ReviewableUnit `json:"unit,omitempty"`
	Children      []models.Child         `json:"children"`
	Statuses      []models.UnitStatus    `json:"statuses"`
}

// Overview returns the unit of (applicationID, topic). Units that were never
// drafted come back without a Unit and with not_started tags.
func (c *Coordinator) Overview(ctx context.Context, applicationID string, topic models.Topic) (*UnitOverview, error) {
	rules, err := c.catalog.Rules(topic)
	if err != nil {
		return nil, err
	}

	unit, err := c.store.FindUnit(ctx, applicationID, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to find unit: %w", err)
	}

	overview := &UnitOverview{
		ApplicationID: applicationID,
		Topic:         topic,
		Unit:          unit,
		Children:      []models.Child{},
	}
	if unit != nil {
		children, err := c.store.ListChildren(ctx, unit.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list children: %w", err)
		}
		overview.Children = ordering.Sorted(children)
	}

	for _, kind := range rules.ReviewKinds() {
		st, err := c.project(ctx, applicationID, topic, unit, len(overview.Children), kind)
		if err != nil {
			return nil, err
		}
		overview.Statuses = append(overview.Statuses, *st)
	}
	return overview, nil
}

// OrderedChildren returns the unit's children ordered by position
func (c *Coordinator) OrderedChildren(ctx context.Context, applicationID string, topic models.Topic) ([]models.Child, error) {
	if _, err := c.catalog.Rules(topic); err != nil {
		return nil, err
	}
	unit, err := c.store.FindUnit(ctx, applicationID, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to find unit: %w", err)
	}
	if unit == nil {
		return []models.Child{}, nil
	}

	children, err := c.store.ListChildren(ctx, unit.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	return ordering.Sorted(children), nil
}

// Status projects both tags of one review track
func (c *Coordinator) Status(ctx context.Context, applicationID string, topic models.Topic, kind models.ReviewKind) (*models.UnitStatus, error) {
	rules, err := c.catalog.Rules(topic)
	if err != nil {
		return nil, err
	}
	kind, err = resolveKind(rules, kind)
	if err != nil {
		return nil, err
	}

	unit, err := c.store.FindUnit(ctx, applicationID, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to find unit: %w", err)
	}
	childCount := 0
	if unit != nil {
		children, err := c.store.ListChildren(ctx, unit.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list children: %w", err)
		}
		childCount = len(children)
	}
	return c.project(ctx, applicationID, topic, unit, childCount, kind)
}

// Project returns the tag of one review track for one perspective
func (c *Coordinator) Project(ctx context.Context, applicationID string, topic models.Topic, kind models.ReviewKind, p models.Perspective) (models.Tag, error) {
	if !p.IsValid() {
		return "", apperror.Invalid("perspective", fmt.Sprintf("unknown perspective %q", p))
	}
	st, err := c.Status(ctx, applicationID, topic, kind)
	if err != nil {
		return "", err
	}
	if p == models.PerspectiveReviewer {
		return st.ReviewerTag, nil
	}
	return st.AssessorTag, nil
}

func (c *Coordinator) project(ctx context.Context, applicationID string, topic models.Topic, unit *models.ReviewableUnit, childCount int, kind models.ReviewKind) (*models.UnitStatus, error) {
	st := &models.UnitStatus{
		ApplicationID: applicationID,
		Topic:         topic,
		ReviewKind:    kind,
		Completion:    models.CompletionNotStarted,
	}

	var current *models.ReviewRecord
	if unit != nil {
		st.UnitID = unit.ID
		st.Completion = unit.CompletionState

		var err error
		current, err = c.store.CurrentRecord(ctx, unit.ID, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to load current record: %w", err)
		}
		if current != nil {
			id := current.ID
			st.CurrentRecord = &id
		}
	}

	st.AssessorTag = status.Project(unit, childCount, current, models.PerspectiveAssessor)
	st.ReviewerTag = status.Project(unit, childCount, current, models.PerspectiveReviewer)
	return st, nil
}

// History returns every review record of one track, oldest first, and
// checks the hash chain over them.
func (c *Coordinator) History(ctx context.Context, applicationID string, topic models.Topic, kind models.ReviewKind) (*models.ReviewHistory, error) {
	rules, err := c.catalog.Rules(topic)
	if err != nil {
		return nil, err
	}
	kind, err = resolveKind(rules, kind)
	if err != nil {
		return nil, err
	}

	unit, err := c.store.FindUnit(ctx, applicationID, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to find unit: %w", err)
	}
	history := &models.ReviewHistory{ReviewKind: kind, Records: []models.ReviewRecord{}, ChainValid: true}
	if unit == nil {
		return history, nil
	}
	history.UnitID = unit.ID

	records, err := c.store.ListRecords(ctx, unit.ID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list review records: %w", err)
	}

	// The chain covers the stored comment, so verify before unsealing
	history.ChainErrors = auditchain.Verify(records)
	history.ChainValid = len(history.ChainErrors) == 0
	if !history.ChainValid {
		slog.Warn("Review chain verification failed", "unit_id", unit.ID, "review_kind", kind, "errors", history.ChainErrors)
	}

	for i := range records {
		if !records[i].CommentSealed || c.sealer == nil {
			continue
		}
		plain, err := c.sealer.Unseal(ctx, records[i].Comment)
		if err != nil {
			return nil, fmt.Errorf("failed to unseal comment of record %d: %w", records[i].ID, err)
		}
		records[i].Comment = plain
		records[i].CommentSealed = false
	}
	history.Records = records
	return history, nil
}

// TaskList projects every review track of every topic for one application.
// Topics are projected concurrently; the result keeps catalog order.
func (c *Coordinator) TaskList(ctx context.Context, applicationID string) ([]models.UnitStatus, error) {
	type track struct {
		topic models.Topic
		kind  models.ReviewKind
	}
	var tracks []track
	for _, topic := range c.catalog.Topics() {
		rules, err := c.catalog.Rules(topic)
		if err != nil {
			return nil, err
		}
		for _, kind := range rules.ReviewKinds() {
			tracks = append(tracks, track{topic: topic, kind: kind})
		}
	}

	results := make([]models.UnitStatus, len(tracks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(taskListConcurrency)
	for i, tr := range tracks {
		g.Go(func() error {
			st, err := c.Status(gctx, applicationID, tr.topic, tr.kind)
			if err != nil {
				return fmt.Errorf("%s/%s: %w", tr.topic, tr.kind, err)
			}
			results[i] = *st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ChildOwner returns the unit that holds childID
func (c *Coordinator) ChildOwner(ctx context.Context, childID uint) (*models.ReviewableUnit, error) {
	child, err := c.store.GetChild(ctx, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to load child: %w", err)
	}
	if child == nil {
		return nil, apperror.NotFound("child not found")
	}
	return c.owner(ctx, child.OwnerID)
}

// RecordOwner returns the unit a review record belongs to
func (c *Coordinator) RecordOwner(ctx context.Context, recordID uint) (*models.ReviewableUnit, error) {
	rec, err := c.store.GetRecord(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to load review record: %w", err)
	}
	if rec == nil {
		return nil, apperror.NotFound("review record not found")
	}
	return c.owner(ctx, rec.OwnerID)
}

func (c *Coordinator) owner(ctx context.Context, unitID uint) (*models.ReviewableUnit, error) {
	unit, err := c.store.GetUnit(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unit: %w", err)
	}
	if unit == nil {
		return nil, apperror.NotFound("unit not found")
	}
	return unit, nil
}
