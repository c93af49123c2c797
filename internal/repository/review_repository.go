package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"plan-review/internal/models"
	"plan-review/internal/ordering"
	"plan-review/internal/workflow"
)

const (
	unitColumns = `id, application_id, topic, completion_state, content, content_updated_at, created_at, updated_at`

	childColumns = `id, unit_id, position, content, sent_to_applicant, sent_at, created_at, updated_at`

	recordColumns = `id, unit_id, review_kind, review_status, action, comment, comment_sealed,
		reviewer_ref, assessor_ref, reviewed_at, previous_record_id, is_current, chain_hash, created_at`
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// ReviewRepository stores units, children and review records in PostgreSQL
type ReviewRepository struct {
	reviewReader
	db *sql.DB
}

var _ workflow.Store = (*ReviewRepository)(nil)

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{reviewReader: reviewReader{q: db}, db: db}
}

// InTx runs fn in a read-committed transaction. Row locks taken through
// the Tx serialize writers on the same unit.
func (r *ReviewRepository) InTx(ctx context.Context, fn func(tx workflow.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Rollback only if not committed
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("Failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(&reviewTx{reviewReader: reviewReader{q: tx}, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type reviewReader struct {
	q querier
}

// FindUnit retrieves the unit of an application topic
func (r reviewReader) FindUnit(ctx context.Context, applicationID string, topic models.Topic) (*models.ReviewableUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM reviewable_units WHERE application_id = $1 AND topic = $2`
	return r.queryUnit(ctx, query, applicationID, topic)
}

// GetUnit retrieves a unit by ID
func (r reviewReader) GetUnit(ctx context.Context, id uint) (*models.ReviewableUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM reviewable_units WHERE id = $1`
	return r.queryUnit(ctx, query, id)
}

// ListUnits retrieves every unit of an application
func (r reviewReader) ListUnits(ctx context.Context, applicationID string) ([]models.ReviewableUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM reviewable_units WHERE application_id = $1 ORDER BY topic`

	rows, err := r.q.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	defer rows.Close()

	var units []models.ReviewableUnit
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, *unit)
	}
	return units, rows.Err()
}

func (r reviewReader) queryUnit(ctx context.Context, query string, args ...any) (*models.ReviewableUnit, error) {
	unit, err := scanUnit(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return unit, err
}

// ListChildren retrieves the children of a unit ordered by position
func (r reviewReader) ListChildren(ctx context.Context, ownerID uint) ([]models.Child, error) {
	query := `SELECT ` + childColumns + ` FROM children WHERE unit_id = $1 ORDER BY position, id`

	rows, err := r.q.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	defer rows.Close()

	children := []models.Child{}
	for rows.Next() {
		child, err := scanChild(rows)
		if err != nil {
			return nil, err
		}
		children = append(children, *child)
	}
	return children, rows.Err()
}

// GetChild retrieves a child by ID
func (r reviewReader) GetChild(ctx context.Context, id uint) (*models.Child, error) {
	query := `SELECT ` + childColumns + ` FROM children WHERE id = $1`
	child, err := scanChild(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return child, err
}

// GetRecord retrieves a review record by ID
func (r reviewReader) GetRecord(ctx context.Context, id uint) (*models.ReviewRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM review_records WHERE id = $1`
	rec, err := scanRecord(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// CurrentRecord retrieves the current record of a review track
func (r reviewReader) CurrentRecord(ctx context.Context, ownerID uint, kind models.ReviewKind) (*models.ReviewRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM review_records
		WHERE unit_id = $1 AND review_kind = $2 AND is_current`
	rec, err := scanRecord(r.q.QueryRowContext(ctx, query, ownerID, kind))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// ListRecords retrieves every record of a review track, oldest first
func (r reviewReader) ListRecords(ctx context.Context, ownerID uint, kind models.ReviewKind) ([]models.ReviewRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM review_records
		WHERE unit_id = $1 AND review_kind = $2
		ORDER BY id`

	rows, err := r.q.QueryContext(ctx, query, ownerID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list review records: %w", err)
	}
	defer rows.Close()

	var records []models.ReviewRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// reviewTx is the write side, bound to one database transaction
type reviewTx struct {
	reviewReader
	tx *sql.Tx
}

// EnsureUnit creates the unit if needed and locks it
func (t *reviewTx) EnsureUnit(ctx context.Context, applicationID string, topic models.Topic) (*models.ReviewableUnit, error) {
	insert := `
		INSERT INTO reviewable_units (application_id, topic, completion_state, content, content_updated_at, created_at, updated_at)
		VALUES ($1, $2, $3, '{}', $4, $4, $4)
		ON CONFLICT (application_id, topic) DO NOTHING
	`
	now := time.Now().UTC().Truncate(time.Microsecond)
	if _, err := t.tx.ExecContext(ctx, insert, applicationID, topic, models.CompletionNotStarted, now); err != nil {
		return nil, fmt.Errorf("failed to create unit: %w", err)
	}

	query := `SELECT ` + unitColumns + ` FROM reviewable_units
		WHERE application_id = $1 AND topic = $2
		FOR UPDATE`
	unit, err := t.queryUnit(ctx, query, applicationID, topic)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, fmt.Errorf("unit %s/%s vanished after insert", applicationID, topic)
	}
	return unit, nil
}

// LockUnit locks a unit for the rest of the transaction
func (t *reviewTx) LockUnit(ctx context.Context, id uint) (*models.ReviewableUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM reviewable_units WHERE id = $1 FOR UPDATE`
	return t.queryUnit(ctx, query, id)
}

// UpdateUnit stores completion state, content and timestamps
func (t *reviewTx) UpdateUnit(ctx context.Context, unit *models.ReviewableUnit) error {
	query := `
		UPDATE reviewable_units
		SET completion_state = $1, content = $2, content_updated_at = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := t.tx.ExecContext(ctx, query,
		unit.CompletionState,
		unit.Content,
		unit.ContentUpdatedAt,
		unit.UpdatedAt,
		unit.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update unit: %w", err)
	}
	return expectOneRow(result, "unit", unit.ID)
}

// InsertChild creates a child at its position
func (t *reviewTx) InsertChild(ctx context.Context, child *models.Child) error {
	query := `
		INSERT INTO children (unit_id, position, content, sent_to_applicant, sent_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, created_at, updated_at
	`
	now := time.Now().UTC().Truncate(time.Microsecond)
	err := t.tx.QueryRowContext(ctx, query,
		child.OwnerID,
		child.Position,
		child.Content,
		child.SentToApplicant,
		child.SentAt,
		now,
	).Scan(&child.ID, &child.CreatedAt, &child.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert child: %w", err)
	}
	return nil
}

// DeleteChild removes a child
func (t *reviewTx) DeleteChild(ctx context.Context, childID uint) error {
	result, err := t.tx.ExecContext(ctx, `DELETE FROM children WHERE id = $1`, childID)
	if err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	return expectOneRow(result, "child", childID)
}

// UpdatePositions applies moves one row at a time. The unique constraint on
// (unit_id, position) is deferred, so intermediate duplicates are allowed.
func (t *reviewTx) UpdatePositions(ctx context.Context, ownerID uint, moves []ordering.Move) error {
	query := `UPDATE children SET position = $1 WHERE id = $2 AND unit_id = $3 AND position = $4`
	for _, m := range moves {
		result, err := t.tx.ExecContext(ctx, query, m.To, m.ChildID, ownerID, m.From)
		if err != nil {
			return fmt.Errorf("failed to move child %d: %w", m.ChildID, err)
		}
		if err := expectOneRow(result, "child", m.ChildID); err != nil {
			return err
		}
	}
	return nil
}

// UpdateChild stores content and sent state
func (t *reviewTx) UpdateChild(ctx context.Context, child *models.Child) error {
	query := `
		UPDATE children
		SET content = $1, sent_to_applicant = $2, sent_at = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := t.tx.ExecContext(ctx, query,
		child.Content,
		child.SentToApplicant,
		child.SentAt,
		child.UpdatedAt,
		child.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update child: %w", err)
	}
	return expectOneRow(result, "child", child.ID)
}

// InsertRecord creates a review record
func (t *reviewTx) InsertRecord(ctx context.Context, rec *models.ReviewRecord) error {
	query := `
		INSERT INTO review_records (unit_id, review_kind, review_status, action, comment, comment_sealed,
			reviewer_ref, assessor_ref, reviewed_at, previous_record_id, is_current, chain_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	err := t.tx.QueryRowContext(ctx, query,
		rec.OwnerID,
		rec.ReviewKind,
		rec.ReviewStatus,
		rec.Action,
		rec.Comment,
		rec.CommentSealed,
		rec.ReviewerRef,
		rec.AssessorRef,
		rec.ReviewedAt,
		rec.PreviousRecordID,
		rec.IsCurrent,
		rec.ChainHash,
		rec.CreatedAt,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to insert review record: %w", err)
	}
	return nil
}

// CloseRecord stores the verdict of a record that is still open
func (t *reviewTx) CloseRecord(ctx context.Context, rec *models.ReviewRecord) error {
	query := `
		UPDATE review_records
		SET review_status = $1, action = $2, comment = $3, comment_sealed = $4,
			reviewer_ref = $5, reviewed_at = $6, chain_hash = $7
		WHERE id = $8 AND review_status = $9
	`
	result, err := t.tx.ExecContext(ctx, query,
		rec.ReviewStatus,
		rec.Action,
		rec.Comment,
		rec.CommentSealed,
		rec.ReviewerRef,
		rec.ReviewedAt,
		rec.ChainHash,
		rec.ID,
		models.ReviewStatusNotReviewed,
	)
	if err != nil {
		return fmt.Errorf("failed to close review record: %w", err)
	}
	return expectOneRow(result, "open review record", rec.ID)
}

// ResubmitRecord stores the submission fields of a record that is still open
func (t *reviewTx) ResubmitRecord(ctx context.Context, rec *models.ReviewRecord) error {
	query := `
		UPDATE review_records
		SET assessor_ref = $1, created_at = $2
		WHERE id = $3 AND review_status = $4
	`
	result, err := t.tx.ExecContext(ctx, query,
		rec.AssessorRef,
		rec.CreatedAt,
		rec.ID,
		models.ReviewStatusNotReviewed,
	)
	if err != nil {
		return fmt.Errorf("failed to resubmit review record: %w", err)
	}
	return expectOneRow(result, "open review record", rec.ID)
}

// SupersedeRecord clears is_current on a record
func (t *reviewTx) SupersedeRecord(ctx context.Context, id uint) error {
	result, err := t.tx.ExecContext(ctx, `UPDATE review_records SET is_current = FALSE WHERE id = $1 AND is_current`, id)
	if err != nil {
		return fmt.Errorf("failed to supersede review record: %w", err)
	}
	return expectOneRow(result, "current review record", id)
}

func expectOneRow(result sql.Result, what string, id uint) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("%s %d: expected 1 affected row, got %d", what, id, n)
	}
	return nil
}

func scanUnit(s scanner) (*models.ReviewableUnit, error) {
	unit := &models.ReviewableUnit{}
	err := s.Scan(
		&unit.ID,
		&unit.ApplicationID,
		&unit.Topic,
		&unit.CompletionState,
		&unit.Content,
		&unit.ContentUpdatedAt,
		&unit.CreatedAt,
		&unit.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan unit: %w", err)
	}
	return unit, nil
}

func scanChild(s scanner) (*models.Child, error) {
	child := &models.Child{}
	err := s.Scan(
		&child.ID,
		&child.OwnerID,
		&child.Position,
		&child.Content,
		&child.SentToApplicant,
		&child.SentAt,
		&child.CreatedAt,
		&child.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan child: %w", err)
	}
	return child, nil
}

func scanRecord(s scanner) (*models.ReviewRecord, error) {
	rec := &models.ReviewRecord{}
	err := s.Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.ReviewKind,
		&rec.ReviewStatus,
		&rec.Action,
		&rec.Comment,
		&rec.CommentSealed,
		&rec.ReviewerRef,
		&rec.AssessorRef,
		&rec.ReviewedAt,
		&rec.PreviousRecordID,
		&rec.IsCurrent,
		&rec.ChainHash,
		&rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan review record: %w", err)
	}
	return rec, nil
}
