package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Topic identifies the sub-topic a reviewable unit belongs to
type Topic string

// ReviewKind discriminates independent review tracks on the same unit
type ReviewKind string

// Default review kinds
const (
	ReviewKindAssessment  ReviewKind = "assessment"
	ReviewKindEvidence    ReviewKind = "evidence"
	ReviewKindEnforcement ReviewKind = "enforcement"
)

// CompletionState is the assessor-facing progress of a unit
type CompletionState string

const (
	CompletionNotStarted CompletionState = "not_started"
	CompletionInProgress CompletionState = "in_progress"
	CompletionComplete   CompletionState = "complete"
)

// IsValid reports whether the completion state is known
func (s CompletionState) IsValid() bool {
	switch s {
	case CompletionNotStarted, CompletionInProgress, CompletionComplete:
		return true
	}
	return false
}

// ReviewStatus tells whether a review record has been closed
type ReviewStatus string

const (
	ReviewStatusNotReviewed ReviewStatus = "not_reviewed"
	ReviewStatusReviewed    ReviewStatus = "reviewed"
)

// ReviewAction is the verdict a reviewer gave
type ReviewAction string

const (
	ActionNone              ReviewAction = "none"
	ActionAccepted          ReviewAction = "accepted"
	ActionEditedAndAccepted ReviewAction = "edited_and_accepted"
	ActionRejected          ReviewAction = "rejected"
)

// IsVerdict reports whether the action closes a review record
func (a ReviewAction) IsVerdict() bool {
	switch a {
	case ActionAccepted, ActionEditedAndAccepted, ActionRejected:
		return true
	}
	return false
}

// IsAcceptance reports whether the verdict approves the submission
func (a ReviewAction) IsAcceptance() bool {
	return a == ActionAccepted || a == ActionEditedAndAccepted
}

// Tag is the status label shown on a task list
type Tag string

const (
	TagNotStarted      Tag = "not_started"
	TagInProgress      Tag = "in_progress"
	TagCompleted       Tag = "completed"
	TagToBeReviewed    Tag = "to_be_reviewed"
	TagUpdated         Tag = "updated"
	TagAwaitingChanges Tag = "awaiting_changes"
	TagChecked         Tag = "checked"
)

// Perspective selects which role a tag is rendered for
type Perspective string

const (
	PerspectiveAssessor Perspective = "assessor"
	PerspectiveReviewer Perspective = "reviewer"
)

// IsValid reports whether the perspective is known
func (p Perspective) IsValid() bool {
	return p == PerspectiveAssessor || p == PerspectiveReviewer
}

// Fields holds free-form content keyed by field name.
// It is stored as JSONB.
type Fields map[string]string

// Value implements driver.Valuer. A string is returned so lib/pq does
// not send the JSON as bytea.
func (f Fields) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	data, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (f *Fields) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*f = Fields{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for fields: %T", src)
	}

	out := Fields{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode fields: %w", err)
	}
	*f = out
	return nil
}

// Clone returns an independent copy
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Merge applies a delta: non-empty values are set, empty values remove the key
func (f Fields) Merge(delta Fields) Fields {
	out := f.Clone()
	for k, v := range delta {
		if v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// Equal reports whether both field sets hold the same values
func (f Fields) Equal(other Fields) bool {
	if len(f) != len(other) {
		return false
	}
	for k, v := range f {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Keys returns the field names in sorted order
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ReviewableUnit is one sub-topic of one planning application
type ReviewableUnit struct {
	ID               uint            `json:"id"`
	ApplicationID    string          `json:"application_id"`
	Topic            Topic           `json:"topic"`
	CompletionState  CompletionState `json:"completion_state"`
	Content          Fields          `json:"content"`
	ContentUpdatedAt time.Time       `json:"content_updated_at"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Child is an orderable item inside a unit
type Child struct {
	ID              uint       `json:"id"`
	OwnerID         uint       `json:"owner_id"`
	Position        int        `json:"position"`
	Content         Fields     `json:"content"`
	SentToApplicant bool       `json:"sent_to_applicant"`
	SentAt          *time.Time `json:"sent_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ReviewRecord is one review cycle of a unit for a review kind
type ReviewRecord struct {
	ID               uint         `json:"id"`
	OwnerID          uint         `json:"owner_id"`
	ReviewKind       ReviewKind   `json:"review_kind"`
	ReviewStatus     ReviewStatus `json:"review_status"`
	Action           ReviewAction `json:"action"`
	Comment          string       `json:"comment,omitempty"`
	CommentSealed    bool         `json:"comment_sealed"`
	ReviewerRef      string       `json:"reviewer_ref,omitempty"`
	AssessorRef      string       `json:"assessor_ref"`
	ReviewedAt       *time.Time   `json:"reviewed_at,omitempty"`
	PreviousRecordID *uint        `json:"previous_record_id,omitempty"`
	IsCurrent        bool         `json:"is_current"`
	ChainHash        string       `json:"chain_hash,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

// IsClosed reports whether a verdict has been recorded
func (r *ReviewRecord) IsClosed() bool {
	return r.ReviewStatus == ReviewStatusReviewed
}

// ChildEdit replaces the content of an existing child
type ChildEdit struct {
	ChildID uint   `json:"child_id"`
	Content Fields `json:"content"`
}

// ContentDelta is a change to unit fields and existing children
type ContentDelta struct {
	Fields   Fields      `json:"fields,omitempty"`
	Children []ChildEdit `json:"children,omitempty"`
}

// IsEmpty reports whether the delta changes nothing
func (d ContentDelta) IsEmpty() bool {
	return len(d.Fields) == 0 && len(d.Children) == 0
}

// ReviewHistory is the record chain of one review track
type ReviewHistory struct {
	UnitID      uint           `json:"unit_id"`
	ReviewKind  ReviewKind     `json:"review_kind"`
	Records     []ReviewRecord `json:"records"`
	ChainValid  bool           `json:"chain_valid"`
	ChainErrors []string       `json:"chain_errors,omitempty"`
}

// UnitStatus is the projected tag of one review track
type UnitStatus struct {
	ApplicationID string          `json:"application_id"`
	Topic         Topic           `json:"topic"`
	ReviewKind    ReviewKind      `json:"review_kind"`
	UnitID        uint            `json:"unit_id,omitempty"`
	Completion    CompletionState `json:"completion_state"`
	AssessorTag   Tag             `json:"assessor_tag"`
	ReviewerTag   Tag             `json:"reviewer_tag"`
	CurrentRecord *uint           `json:"current_record_id,omitempty"`
}

// AuditLog represents an audit log entry
type AuditLog struct {
	ID        uint      `json:"id"`
	ActorRef  string    `json:"actor_ref"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewTrack identifies the record chain of one unit and review kind
type ReviewTrack struct {
	UnitID        uint       `json:"unit_id"`
	ApplicationID string     `json:"application_id"`
	Topic         Topic      `json:"topic"`
	ReviewKind    ReviewKind `json:"review_kind"`
}

// PendingReview is an open review record waiting for a verdict
type PendingReview struct {
	ReviewTrack
	RecordID    uint      `json:"record_id"`
	AssessorRef string    `json:"assessor_ref"`
	SubmittedAt time.Time `json:"submitted_at"`
}
