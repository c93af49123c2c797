package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"plan-review/internal/models"
	"plan-review/internal/ordering"
	"plan-review/internal/workflow"
)

// MemoryStore keeps review data in process memory. Transactions work on a
// copy that replaces the live state on success, so a failed call leaves
// nothing behind. Commit enforces the same uniqueness rules as the schema.
type MemoryStore struct {
	mu    sync.RWMutex
	state *memoryState
}

var _ workflow.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemoryState()}
}

// InTx runs fn against a private copy and publishes it on success
func (m *MemoryStore) InTx(ctx context.Context, fn func(tx workflow.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.state.clone()
	if err := fn(&memoryTx{memoryState: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := work.checkConstraints(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	m.state = work
	return nil
}

// FindUnit retrieves the unit of an application topic
func (m *MemoryStore) FindUnit(ctx context.Context, applicationID string, topic models.Topic) (*models.ReviewableUnit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.FindUnit(ctx, applicationID, topic)
}

// GetUnit retrieves a unit by ID
func (m *MemoryStore) GetUnit(ctx context.Context, id uint) (*models.ReviewableUnit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.GetUnit(ctx, id)
}

// ListUnits retrieves every unit of an application
func (m *MemoryStore) ListUnits(ctx context.Context, applicationID string) ([]models.ReviewableUnit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.ListUnits(ctx, applicationID)
}

// ListChildren retrieves the children of a unit ordered by position
func (m *MemoryStore) ListChildren(ctx context.Context, ownerID uint) ([]models.Child, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.ListChildren(ctx, ownerID)
}

// GetChild retrieves a child by ID
func (m *MemoryStore) GetChild(ctx context.Context, id uint) (*models.Child, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.GetChild(ctx, id)
}

// GetRecord retrieves a review record by ID
func (m *MemoryStore) GetRecord(ctx context.Context, id uint) (*models.ReviewRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.GetRecord(ctx, id)
}

// CurrentRecord retrieves the current record of a review track
func (m *MemoryStore) CurrentRecord(ctx context.Context, ownerID uint, kind models.ReviewKind) (*models.ReviewRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.CurrentRecord(ctx, ownerID, kind)
}

// ListRecords retrieves every record of a review track, oldest first
func (m *MemoryStore) ListRecords(ctx context.Context, ownerID uint, kind models.ReviewKind) ([]models.ReviewRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.ListRecords(ctx, ownerID, kind)
}

type memoryState struct {
	units      map[uint]models.ReviewableUnit
	children   map[uint]models.Child
	records    map[uint]models.ReviewRecord
	nextUnit   uint
	nextChild  uint
	nextRecord uint
}

func newMemoryState() *memoryState {
	return &memoryState{
		units:    make(map[uint]models.ReviewableUnit),
		children: make(map[uint]models.Child),
		records:  make(map[uint]models.ReviewRecord),
	}
}

func (s *memoryState) clone() *memoryState {
	out := &memoryState{
		units:      make(map[uint]models.ReviewableUnit, len(s.units)),
		children:   make(map[uint]models.Child, len(s.children)),
		records:    make(map[uint]models.ReviewRecord, len(s.records)),
		nextUnit:   s.nextUnit,
		nextChild:  s.nextChild,
		nextRecord: s.nextRecord,
	}
	for id, u := range s.units {
		u.Content = u.Content.Clone()
		out.units[id] = u
	}
	for id, c := range s.children {
		c.Content = c.Content.Clone()
		out.children[id] = c
	}
	for id, r := range s.records {
		out.records[id] = r
	}
	return out
}

// checkConstraints mirrors the unique constraints of the schema
func (s *memoryState) checkConstraints() error {
	positions := make(map[[2]uint]bool)
	for _, c := range s.children {
		key := [2]uint{c.OwnerID, uint(c.Position)}
		if positions[key] {
			return fmt.Errorf("duplicate position %d in unit %d", c.Position, c.OwnerID)
		}
		positions[key] = true
	}

	type track struct {
		unit uint
		kind models.ReviewKind
	}
	current := make(map[track]bool)
	for _, r := range s.records {
		if !r.IsCurrent {
			continue
		}
		key := track{r.OwnerID, r.ReviewKind}
		if current[key] {
			return fmt.Errorf("more than one current %s record for unit %d", r.ReviewKind, r.OwnerID)
		}
		current[key] = true
	}
	return nil
}

func (s *memoryState) FindUnit(_ context.Context, applicationID string, topic models.Topic) (*models.ReviewableUnit, error) {
	for _, u := range s.units {
		if u.ApplicationID == applicationID && u.Topic == topic {
			u.Content = u.Content.Clone()
			return &u, nil
		}
	}
	return nil, nil
}

func (s *memoryState) GetUnit(_ context.Context, id uint) (*models.ReviewableUnit, error) {
	u, ok := s.units[id]
	if !ok {
		return nil, nil
	}
	u.Content = u.Content.Clone()
	return &u, nil
}

func (s *memoryState) ListUnits(_ context.Context, applicationID string) ([]models.ReviewableUnit, error) {
	var units []models.ReviewableUnit
	for _, u := range s.units {
		if u.ApplicationID == applicationID {
			u.Content = u.Content.Clone()
			units = append(units, u)
		}
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Topic < units[j].Topic })
	return units, nil
}

func (s *memoryState) ListChildren(_ context.Context, ownerID uint) ([]models.Child, error) {
	children := []models.Child{}
	for _, c := range s.children {
		if c.OwnerID == ownerID {
			c.Content = c.Content.Clone()
			children = append(children, c)
		}
	}
	sort.Slice(children, func(i, j int) bool {
		if children[i].Position != children[j].Position {
			return children[i].Position < children[j].Position
		}
		return children[i].ID < children[j].ID
	})
	return children, nil
}

func (s *memoryState) GetChild(_ context.Context, id uint) (*models.Child, error) {
	c, ok := s.children[id]
	if !ok {
		return nil, nil
	}
	c.Content = c.Content.Clone()
	return &c, nil
}

func (s *memoryState) GetRecord(_ context.Context, id uint) (*models.ReviewRecord, error) {
	r, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *memoryState) CurrentRecord(_ context.Context, ownerID uint, kind models.ReviewKind) (*models.ReviewRecord, error) {
	for _, r := range s.records {
		if r.OwnerID == ownerID && r.ReviewKind == kind && r.IsCurrent {
			return &r, nil
		}
	}
	return nil, nil
}

func (s *memoryState) ListRecords(_ context.Context, ownerID uint, kind models.ReviewKind) ([]models.ReviewRecord, error) {
	var records []models.ReviewRecord
	for _, r := range s.records {
		if r.OwnerID == ownerID && r.ReviewKind == kind {
			records = append(records, r)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

type memoryTx struct {
	*memoryState
}

func (t *memoryTx) EnsureUnit(ctx context.Context, applicationID string, topic models.Topic) (*models.ReviewableUnit, error) {
	if u, _ := t.FindUnit(ctx, applicationID, topic); u != nil {
		return u, nil
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	t.nextUnit++
	u := models.ReviewableUnit{
		ID:               t.nextUnit,
		ApplicationID:    applicationID,
		Topic:            topic,
		CompletionState:  models.CompletionNotStarted,
		Content:          models.Fields{},
		ContentUpdatedAt: now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	t.units[u.ID] = u
	u.Content = u.Content.Clone()
	return &u, nil
}

func (t *memoryTx) LockUnit(ctx context.Context, id uint) (*models.ReviewableUnit, error) {
	return t.GetUnit(ctx, id)
}

func (t *memoryTx) UpdateUnit(_ context.Context, unit *models.ReviewableUnit) error {
	if _, ok := t.units[unit.ID]; !ok {
		return fmt.Errorf("unit %d: expected 1 affected row, got 0", unit.ID)
	}
	u := *unit
	u.Content = unit.Content.Clone()
	t.units[u.ID] = u
	return nil
}

func (t *memoryTx) InsertChild(_ context.Context, child *models.Child) error {
	if _, ok := t.units[child.OwnerID]; !ok {
		return fmt.Errorf("unit %d does not exist", child.OwnerID)
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	t.nextChild++
	child.ID = t.nextChild
	child.CreatedAt = now
	child.UpdatedAt = now

	c := *child
	c.Content = child.Content.Clone()
	t.children[c.ID] = c
	return nil
}

func (t *memoryTx) DeleteChild(_ context.Context, childID uint) error {
	if _, ok := t.children[childID]; !ok {
		return fmt.Errorf("child %d: expected 1 affected row, got 0", childID)
	}
	delete(t.children, childID)
	return nil
}

func (t *memoryTx) UpdatePositions(_ context.Context, ownerID uint, moves []ordering.Move) error {
	for _, m := range moves {
		c, ok := t.children[m.ChildID]
		if !ok || c.OwnerID != ownerID || c.Position != m.From {
			return fmt.Errorf("child %d: expected 1 affected row, got 0", m.ChildID)
		}
		c.Position = m.To
		t.children[c.ID] = c
	}
	return nil
}

func (t *memoryTx) UpdateChild(_ context.Context, child *models.Child) error {
	stored, ok := t.children[child.ID]
	if !ok {
		return fmt.Errorf("child %d: expected 1 affected row, got 0", child.ID)
	}
	stored.Content = child.Content.Clone()
	stored.SentToApplicant = child.SentToApplicant
	stored.SentAt = child.SentAt
	stored.UpdatedAt = child.UpdatedAt
	t.children[child.ID] = stored
	return nil
}

func (t *memoryTx) InsertRecord(_ context.Context, rec *models.ReviewRecord) error {
	if _, ok := t.units[rec.OwnerID]; !ok {
		return fmt.Errorf("unit %d does not exist", rec.OwnerID)
	}
	t.nextRecord++
	rec.ID = t.nextRecord
	t.records[rec.ID] = *rec
	return nil
}

func (t *memoryTx) CloseRecord(_ context.Context, rec *models.ReviewRecord) error {
	stored, ok := t.records[rec.ID]
	if !ok || stored.ReviewStatus != models.ReviewStatusNotReviewed {
		return fmt.Errorf("open review record %d: expected 1 affected row, got 0", rec.ID)
	}
	stored.ReviewStatus = rec.ReviewStatus
	stored.Action = rec.Action
	stored.Comment = rec.Comment
	stored.CommentSealed = rec.CommentSealed
	stored.ReviewerRef = rec.ReviewerRef
	stored.ReviewedAt = rec.ReviewedAt
	stored.ChainHash = rec.ChainHash
	t.records[rec.ID] = stored
	return nil
}

func (t *memoryTx) ResubmitRecord(_ context.Context, rec *models.ReviewRecord) error {
	stored, ok := t.records[rec.ID]
	if !ok || stored.ReviewStatus != models.ReviewStatusNotReviewed {
		return fmt.Errorf("open review record %d: expected 1 affected row, got 0", rec.ID)
	}
	stored.AssessorRef = rec.AssessorRef
	stored.CreatedAt = rec.CreatedAt
	t.records[rec.ID] = stored
	return nil
}

func (t *memoryTx) SupersedeRecord(_ context.Context, id uint) error {
	stored, ok := t.records[id]
	if !ok || !stored.IsCurrent {
		return fmt.Errorf("current review record %d: expected 1 affected row, got 0", id)
	}
	stored.IsCurrent = false
	t.records[id] = stored
	return nil
}

// ListTracks retrieves every review track that has at least one record
func (m *MemoryStore) ListTracks(_ context.Context) ([]models.ReviewTrack, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[models.ReviewTrack]bool)
	var tracks []models.ReviewTrack
	for _, r := range m.state.records {
		u := m.state.units[r.OwnerID]
		t := models.ReviewTrack{UnitID: u.ID, ApplicationID: u.ApplicationID, Topic: u.Topic, ReviewKind: r.ReviewKind}
		if !seen[t] {
			seen[t] = true
			tracks = append(tracks, t)
		}
	}
	sort.Slice(tracks, func(i, j int) bool {
		if tracks[i].UnitID != tracks[j].UnitID {
			return tracks[i].UnitID < tracks[j].UnitID
		}
		return tracks[i].ReviewKind < tracks[j].ReviewKind
	})
	return tracks, nil
}

// PendingOlderThan retrieves open review records submitted before cutoff
func (m *MemoryStore) PendingOlderThan(_ context.Context, cutoff time.Time) ([]models.PendingReview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var pending []models.PendingReview
	for _, r := range m.state.records {
		if r.IsClosed() || !r.IsCurrent || !r.CreatedAt.Before(cutoff) {
			continue
		}
		u := m.state.units[r.OwnerID]
		pending = append(pending, models.PendingReview{
			ReviewTrack: models.ReviewTrack{UnitID: u.ID, ApplicationID: u.ApplicationID, Topic: u.Topic, ReviewKind: r.ReviewKind},
			RecordID:    r.ID,
			AssessorRef: r.AssessorRef,
			SubmittedAt: r.CreatedAt,
		})
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].SubmittedAt.Before(pending[j].SubmittedAt) })
	return pending, nil
}
