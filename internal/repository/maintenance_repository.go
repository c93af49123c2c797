package repository

import (
	"context"
	"fmt"
	"time"

	"plan-review/internal/models"
)

// ListTracks retrieves every review track that has at least one record
func (r *ReviewRepository) ListTracks(ctx context.Context) ([]models.ReviewTrack, error) {
	query := `
		SELECT DISTINCT rr.unit_id, u.application_id, u.topic, rr.review_kind
		FROM review_records rr
		JOIN reviewable_units u ON u.id = rr.unit_id
		ORDER BY rr.unit_id, rr.review_kind
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list review tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.ReviewTrack
	for rows.Next() {
		var t models.ReviewTrack
		if err := rows.Scan(&t.UnitID, &t.ApplicationID, &t.Topic, &t.ReviewKind); err != nil {
			return nil, fmt.Errorf("failed to scan review track: %w", err)
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// PendingOlderThan retrieves open review records submitted before cutoff
func (r *ReviewRepository) PendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.PendingReview, error) {
	query := `
		SELECT rr.id, rr.unit_id, u.application_id, u.topic, rr.review_kind, rr.assessor_ref, rr.created_at
		FROM review_records rr
		JOIN reviewable_units u ON u.id = rr.unit_id
		WHERE rr.review_status = $1 AND rr.is_current AND rr.created_at < $2
		ORDER BY rr.created_at
	`

	rows, err := r.db.QueryContext(ctx, query, models.ReviewStatusNotReviewed, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reviews: %w", err)
	}
	defer rows.Close()

	var pending []models.PendingReview
	for rows.Next() {
		var p models.PendingReview
		if err := rows.Scan(
			&p.RecordID,
			&p.UnitID,
			&p.ApplicationID,
			&p.Topic,
			&p.ReviewKind,
			&p.AssessorRef,
			&p.SubmittedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pending review: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}
