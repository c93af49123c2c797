package status

import (
	"testing"
	"time"

	"plan-review/internal/models"
)

func TestProject(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	reviewedAt := base.Add(time.Hour)

	unit := func(state models.CompletionState, contentAt time.Time) *models.ReviewableUnit {
		return &models.ReviewableUnit{ID: 1, CompletionState: state, ContentUpdatedAt: contentAt}
	}
	record := func(status models.ReviewStatus, action models.ReviewAction) *models.ReviewRecord {
		rec := &models.ReviewRecord{ID: 1, ReviewStatus: status, Action: action, IsCurrent: true, CreatedAt: base.Add(30 * time.Minute)}
		if status == models.ReviewStatusReviewed {
			rec.ReviewedAt = &reviewedAt
		}
		return rec
	}

	tests := []struct {
		name     string
		unit     *models.ReviewableUnit
		children int
		current  *models.ReviewRecord
		assessor models.Tag
		reviewer models.Tag
	}{
		{"no unit", nil, 0, nil, models.TagNotStarted, models.TagNotStarted},
		{"not started", unit(models.CompletionNotStarted, base), 0, nil, models.TagNotStarted, models.TagNotStarted},
		{"children but not started", unit(models.CompletionNotStarted, base), 2, nil, models.TagInProgress, models.TagInProgress},
		{"in progress", unit(models.CompletionInProgress, base), 1, nil, models.TagInProgress, models.TagInProgress},
		{"complete no record", unit(models.CompletionComplete, base), 1, nil, models.TagCompleted, models.TagToBeReviewed},
		{"awaiting review", unit(models.CompletionComplete, base), 1, record(models.ReviewStatusNotReviewed, models.ActionNone), models.TagToBeReviewed, models.TagToBeReviewed},
		{"changed after submission", unit(models.CompletionComplete, base.Add(45*time.Minute)), 1, record(models.ReviewStatusNotReviewed, models.ActionNone), models.TagUpdated, models.TagUpdated},
		{"accepted", unit(models.CompletionComplete, base), 1, record(models.ReviewStatusReviewed, models.ActionAccepted), models.TagCompleted, models.TagChecked},
		{"edited and accepted", unit(models.CompletionComplete, base), 1, record(models.ReviewStatusReviewed, models.ActionEditedAndAccepted), models.TagCompleted, models.TagChecked},
		{"rejected untouched", unit(models.CompletionInProgress, base), 1, record(models.ReviewStatusReviewed, models.ActionRejected), models.TagAwaitingChanges, models.TagAwaitingChanges},
		{"rejected same instant", unit(models.CompletionInProgress, reviewedAt), 1, record(models.ReviewStatusReviewed, models.ActionRejected), models.TagAwaitingChanges, models.TagAwaitingChanges},
		{"rejected then edited", unit(models.CompletionInProgress, reviewedAt.Add(time.Minute)), 1, record(models.ReviewStatusReviewed, models.ActionRejected), models.TagUpdated, models.TagUpdated},
		{"rejected then completed without edit", unit(models.CompletionComplete, base), 1, record(models.ReviewStatusReviewed, models.ActionRejected), models.TagAwaitingChanges, models.TagAwaitingChanges},
		{"accepted then reopened", unit(models.CompletionInProgress, base), 1, record(models.ReviewStatusReviewed, models.ActionAccepted), models.TagInProgress, models.TagInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Project(tt.unit, tt.children, tt.current, models.PerspectiveAssessor); got != tt.assessor {
				t.Errorf("assessor tag = %s, want %s", got, tt.assessor)
			}
			if got := Project(tt.unit, tt.children, tt.current, models.PerspectiveReviewer); got != tt.reviewer {
				t.Errorf("reviewer tag = %s, want %s", got, tt.reviewer)
			}
		})
	}
}
