package status

import (
	"plan-review/internal/models"
)

// Project maps a unit and its current review record to the task-list tag
// seen from the given perspective. unit may be nil when nothing has been
// drafted yet. It has no side effects, so both views always agree.
//
// A rejection flips the unit back to in_progress, so the rejected-record
// rules are evaluated before the plain in_progress rule.
func Project(unit *models.ReviewableUnit, childCount int, current *models.ReviewRecord, p models.Perspective) models.Tag {
	if unit == nil {
		return models.TagNotStarted
	}

	if current == nil && childCount == 0 && unit.CompletionState == models.CompletionNotStarted {
		return models.TagNotStarted
	}

	if current != nil && current.IsClosed() && current.Action == models.ActionRejected {
		if current.ReviewedAt != nil && unit.ContentUpdatedAt.After(*current.ReviewedAt) {
			return models.TagUpdated
		}
		return models.TagAwaitingChanges
	}

	if unit.CompletionState != models.CompletionComplete {
		return models.TagInProgress
	}

	if current == nil {
		if p == models.PerspectiveReviewer {
			return models.TagToBeReviewed
		}
		return models.TagCompleted
	}

	if current.IsClosed() && current.Action.IsAcceptance() {
		if p == models.PerspectiveReviewer {
			return models.TagChecked
		}
		return models.TagCompleted
	}

	// Changed after submission; the open record waits for a resubmit
	if unit.ContentUpdatedAt.After(current.CreatedAt) {
		return models.TagUpdated
	}
	return models.TagToBeReviewed
}
