package handlers

// Common error message constants shared across handlers
const (
	ErrMsgInvalidRequestBody = "Invalid request body"
	ErrMsgUnauthorized       = "Unauthorized"
	ErrMsgInvalidChildID     = "Invalid child ID"
	ErrMsgInvalidRecordID    = "Invalid record ID"
	ErrMsgInternal           = "Internal server error"
)

// API path constants
const (
	APIBasePath          = "/api/v1"
	ApplicationsBasePath = APIBasePath + "/applications/{applicationId}"
	UnitBasePath         = ApplicationsBasePath + "/topics/{topic}"
)

// Audit action constants
const (
	AuditActionDraftSaved      = "unit.draft_saved"
	AuditActionUnitCompleted   = "unit.completed"
	AuditActionUnitReopened    = "unit.reopened"
	AuditActionChildInserted   = "child.inserted"
	AuditActionChildUpdated    = "child.updated"
	AuditActionChildRemoved    = "child.removed"
	AuditActionChildMoved      = "child.moved"
	AuditActionChildSent       = "child.sent"
	AuditActionReviewSubmitted = "review.submitted"
)

// Audited resources
const (
	ResourceUnits    = "reviewable_units"
	ResourceChildren = "children"
	ResourceRecords  = "review_records"
)
