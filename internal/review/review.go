package review

import (
	"strings"
	"time"

	"plan-review/internal/apperror"
	"plan-review/internal/models"
)

// Verdict is a reviewer's decision on an open record
type Verdict struct {
	Action      models.ReviewAction
	Comment     string
	ReviewerRef string
}

// Open creates a not-yet-reviewed record that supersedes previous, if any
func Open(ownerID uint, kind models.ReviewKind, assessorRef string, previous *models.ReviewRecord, now time.Time) *models.ReviewRecord {
	rec := &models.ReviewRecord{
		OwnerID:      ownerID,
		ReviewKind:   kind,
		ReviewStatus: models.ReviewStatusNotReviewed,
		Action:       models.ActionNone,
		AssessorRef:  assessorRef,
		IsCurrent:    true,
		CreatedAt:    now,
	}
	if previous != nil {
		id := previous.ID
		rec.PreviousRecordID = &id
	}
	return rec
}

// CheckVerdict validates a verdict without touching any record
func CheckVerdict(v Verdict) error {
	if !v.Action.IsVerdict() {
		return apperror.Invalid("action", "action must be accepted, edited_and_accepted or rejected")
	}
	if strings.TrimSpace(v.ReviewerRef) == "" {
		return apperror.Invalid("reviewer_ref", "reviewer is required")
	}

	hasComment := strings.TrimSpace(v.Comment) != ""
	if v.Action == models.ActionRejected && !hasComment {
		return apperror.MissingComment("a comment is required when rejecting")
	}
	if v.Action != models.ActionRejected && hasComment {
		return apperror.Invalid("comment", "comments are only recorded for rejections")
	}
	return nil
}

// Close records the verdict on rec. A record can be closed exactly once.
func Close(rec *models.ReviewRecord, v Verdict, now time.Time) error {
	if rec.IsClosed() {
		return apperror.Forbidden("review record has already been reviewed")
	}
	if err := CheckVerdict(v); err != nil {
		return err
	}

	reviewedAt := now
	rec.ReviewStatus = models.ReviewStatusReviewed
	rec.Action = v.Action
	rec.Comment = strings.TrimSpace(v.Comment)
	rec.ReviewerRef = v.ReviewerRef
	rec.ReviewedAt = &reviewedAt
	return nil
}

// Resubmit points an open record at the latest submitted version of the unit
func Resubmit(rec *models.ReviewRecord, assessorRef string, now time.Time) error {
	if rec.IsClosed() {
		return apperror.Forbidden("review record has already been reviewed")
	}
	rec.AssessorRef = assessorRef
	rec.CreatedAt = now
	return nil
}

// IsStale reports whether the unit changed after rec was submitted.
// A verdict on a stale record would judge a version nobody submitted.
func IsStale(rec *models.ReviewRecord, unit *models.ReviewableUnit) bool {
	if rec.IsClosed() {
		return false
	}
	return unit.CompletionState != models.CompletionComplete || unit.ContentUpdatedAt.After(rec.CreatedAt)
}

// Supersede marks rec as no longer current. Closed fields are untouched.
func Supersede(rec *models.ReviewRecord) {
	rec.IsCurrent = false
}
