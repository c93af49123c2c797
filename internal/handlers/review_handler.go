package handlers

import (
	"net/http"
	"strconv"

	"plan-review/internal/apperror"
	"plan-review/internal/auth"
	"plan-review/internal/middleware"
	"plan-review/internal/models"
	"plan-review/internal/workflow"
	"plan-review/pkg/validator"
)

// DraftRequest carries unit field changes
type DraftRequest struct {
	Fields models.Fields `json:"fields"`
}

// InsertChildRequest creates a child. Position 0 appends.
type InsertChildRequest struct {
	Content  models.Fields `json:"content"`
	Position int           `json:"position" validate:"min=0"`
}

// UpdateChildRequest replaces the content of a child
type UpdateChildRequest struct {
	Content models.Fields `json:"content"`
}

// MoveChildRequest moves a child to a 1-based position
type MoveChildRequest struct {
	Position int `json:"position" validate:"required,min=1"`
}

// SubmitReviewRequest selects the review kind. Empty means the topic's first kind.
type SubmitReviewRequest struct {
	ReviewKind models.ReviewKind `json:"review_kind"`
}

// RejectRequest carries the reviewer's explanation
type RejectRequest struct {
	Comment string `json:"comment" validate:"max=4000"`
}

// TagResponse is a single projected tag
type TagResponse struct {
	ApplicationID string             `json:"application_id"`
	Topic         models.Topic       `json:"topic"`
	ReviewKind    models.ReviewKind  `json:"review_kind"`
	Perspective   models.Perspective `json:"perspective"`
	Tag           models.Tag         `json:"tag"`
}

// ReviewHandler exposes the review workflow over HTTP
type ReviewHandler struct {
	coord *workflow.Coordinator
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(coord *workflow.Coordinator) *ReviewHandler {
	return &ReviewHandler{coord: coord}
}

// RegisterRoutes mounts the workflow routes on mux. auditMw may be nil.
func (h *ReviewHandler) RegisterRoutes(mux *http.ServeMux, authMw *middleware.AuthMiddleware, auditMw *middleware.AuditMiddleware) {
	read := func(fn http.HandlerFunc) http.Handler {
		return authMw.Authenticate(middleware.RequireAnyRole(auth.RoleAssessor, auth.RoleReviewer)(fn))
	}
	assess := func(action, resource string, fn http.HandlerFunc) http.Handler {
		var next http.Handler = fn
		if auditMw != nil {
			next = auditMw.Log(action, resource)(next)
		}
		return authMw.Authenticate(middleware.RequireRole(auth.RoleAssessor)(next))
	}
	verdict := func(fn http.HandlerFunc) http.Handler {
		return authMw.Authenticate(middleware.RequireRole(auth.RoleReviewer)(fn))
	}

	mux.Handle("GET "+ApplicationsBasePath+"/tasks", read(h.TaskList))

	mux.Handle("GET "+UnitBasePath, read(h.GetUnit))
	mux.Handle("GET "+UnitBasePath+"/status", read(h.GetStatus))
	mux.Handle("PUT "+UnitBasePath+"/draft", assess(AuditActionDraftSaved, ResourceUnits, h.SaveDraft))
	mux.Handle("POST "+UnitBasePath+"/complete", assess(AuditActionUnitCompleted, ResourceUnits, h.MarkComplete))
	mux.Handle("POST "+UnitBasePath+"/reopen", assess(AuditActionUnitReopened, ResourceUnits, h.Reopen))

	mux.Handle("GET "+UnitBasePath+"/children", read(h.ListChildren))
	mux.Handle("POST "+UnitBasePath+"/children", assess(AuditActionChildInserted, ResourceChildren, h.InsertChild))
	mux.Handle("PUT "+UnitBasePath+"/children/{childId}", assess(AuditActionChildUpdated, ResourceChildren, h.UpdateChild))
	mux.Handle("DELETE "+UnitBasePath+"/children/{childId}", assess(AuditActionChildRemoved, ResourceChildren, h.RemoveChild))
	mux.Handle("POST "+UnitBasePath+"/children/{childId}/move", assess(AuditActionChildMoved, ResourceChildren, h.MoveChild))
	mux.Handle("POST "+UnitBasePath+"/children/{childId}/sent", assess(AuditActionChildSent, ResourceChildren, h.MarkChildSent))

	mux.Handle("GET "+UnitBasePath+"/reviews", read(h.History))
	mux.Handle("POST "+UnitBasePath+"/reviews", assess(AuditActionReviewSubmitted, ResourceRecords, h.SubmitForReview))
	mux.Handle("POST "+UnitBasePath+"/reviews/{recordId}/accept", verdict(h.Accept))
	mux.Handle("POST "+UnitBasePath+"/reviews/{recordId}/edit-and-accept", verdict(h.EditAndAccept))
	mux.Handle("POST "+UnitBasePath+"/reviews/{recordId}/reject", verdict(h.Reject))
}

// GetUnit returns a unit with its children and review tags
// @Summary Get unit
// @Description Unit content, ordered children and the tags of every review kind. Units never drafted come back as not_started.
// @Tags Units
// @Produce json
// @Security BearerAuth
// @Param applicationId path string true "Planning application reference"
// @Param topic path string true "Topic"
// @Success 200 {object} workflow.UnitOverview
// @Failure 404 {object} ErrorResponse "Unknown topic"
// @Router /applications/{applicationId}/topics/{topic} [get]
func (h *ReviewHandler) GetUnit(w http.ResponseWriter, r *http.Request) {
	overview, err := h.coord.Overview(r.Context(), r.PathValue("applicationId"), pathTopic(r))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, overview)
}

// GetStatus projects the status of one review track
// @Summary Get status
// @Description Both tags of a review track, or a single tag when perspective is given
// @Tags Units
// @Produce json
// @Security BearerAuth
// @Param applicationId path string true "Planning application reference"
// @Param topic path string true "Topic"
// @Param kind query string false "Review kind (defaults to the topic's first kind)"
// @Param perspective query string false "assessor or reviewer"
// @Success 200 {object} models.UnitStatus
// @Failure 422 {object} ErrorResponse "Unknown review kind or perspective"
// @Router /applications/{applicationId}/topics/{topic}/status [get]
func (h *ReviewHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	applicationID, topic := r.PathValue("applicationId"), pathTopic(r)
	kind := models.ReviewKind(r.URL.Query().Get("kind"))

	perspective := models.Perspective(r.URL.Query().Get("perspective"))
	if perspective == "" {
		st, err := h.coord.Status(r.Context(), applicationID, topic, kind)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, st)
		return
	}

	tag, err := h.coord.Project(r.Context(), applicationID, topic, kind, perspective)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	st, err := h.coord.Status(r.Context(), applicationID, topic, kind)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, TagResponse{
		ApplicationID: applicationID,
		Topic:         topic,
		ReviewKind:    st.ReviewKind,
		Perspective:   perspective,
		Tag:           tag,
	})
}

// TaskList returns the tags of every topic of an application
// @Summary Task list
// @Description Every review track of every topic, in catalog order
// @Tags Units
// @Produce json
// @Security BearerAuth
// @Param applicationId path string true "Planning application reference"
// @Success 200 {array} models.UnitStatus
// @Router /applications/{applicationId}/tasks [get]
func (h *ReviewHandler) TaskList(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.coord.TaskList(r.Context(), r.PathValue("applicationId"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, tasks)
}

// SaveDraft merges field changes into the unit
// @Summary Save draft
// @Tags Units
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param applicationId path string true "Planning application reference"
// @Param topic path string true "Topic"
// @Param request body DraftRequest true "Field changes"
// @Success 200 {object} models.ReviewableUnit
// @Failure 403 {object} ErrorResponse "Unit is complete"
// @Failure 422 {object} ErrorResponse "Unknown field"
// @Router /applications/{applicationId}/topics/{topic}/draft [put]
func (h *ReviewHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	unit, err := h.coord.SubmitDraft(r.Context(), actorRef(r), r.PathValue("applicationId"), pathTopic(r), req.Fields)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, unit)
}

// MarkComplete declares the unit ready for review
// @Summary Mark complete
// @Tags Units
// @Produce json
// @Security BearerAuth
// @Param applicationId path string true "Planning application reference"
// @Param topic path string true "Topic"
// @Success 200 {object} models.ReviewableUnit
// @Failure 422 {object} ErrorResponse "Required content missing"
// @Router /applications/{applicationId}/topics/{topic}/complete [post]
func (h *ReviewHandler) MarkComplete(w http.ResponseWriter, r *http.Request) {
	unit, err := h.coord.MarkComplete(r.Context(), actorRef(r), r.PathValue("applicationId"), pathTopic(r))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, unit)
}

// Reopen returns a complete unit to editing
// @Summary Reopen unit
// @Tags Units
// @Produce json
// @Security BearerAuth
// @Param applicationId path string true "Planning application reference"
// @Param topic path string true "Topic"
// @Success 200 {object} models.ReviewableUnit
// @Failure 403 {object} ErrorResponse "A review is pending"
// @Router /applications/{applicationId}/topics/{topic}/reopen [post]
func (h *ReviewHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	unit, err := h.coord.Reopen(r.Context(), actorRef(r), r.PathValue("applicationId"), pathTopic(r))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, unit)
}

// ListChildren returns the children ordered by position
// @Summary List children
// @Tags Children
// @Produce json
// @Security BearerAuth
// @Param applicationId path string true "Planning application reference"
// @Param topic path string true "Topic"
// @Success 200 {array} models.Child
// @Router /applications/{applicationId}/topics/{topic}/children [get]
func (h *ReviewHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	children, err := h.coord.OrderedChildren(r.Context(), r.PathValue("applicationId"), pathTopic(r))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, children)
}

// InsertChild adds a child at a position
// @Summary Insert child
// @Tags Children
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param applicationId path string true "Planning application reference"
// @Param topic path string true "Topic"
// @Param request body InsertChildRequest true "Child content and position (0 appends)"
// @Success 201 {object} models.Child
// @Failure 422 {object} ErrorResponse "Position out of range"
// @Router /applications/{applicationId}/topics/{topic}/children [post]
func (h *ReviewHandler) InsertChild(w http.ResponseWriter, r *http.Request) {
	var req InsertChildRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	child, err := h.coord.InsertChild(r.Context(), actorRef(r), r.PathValue("applicationId"), pathTopic(r), req.Content, req.Position)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, child)
}

// UpdateChild replaces the content of a child
// @Summary Update child
// @Tags Children
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param applicationId path string true "Planning application reference"
// @Param topic path string true "Topic"
// @Param childId path int true "Child ID"
// @Param request body UpdateChildRequest true "New content"
// @Success 200 {object} models.Child
// @Failure 403 {object} ErrorResponse "Child sent or unit complete"
// @Router /applications/{applicationId}/topics/{topic}/children/{childId} [put]
func (h *ReviewHandler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.childInScope(w, r)
	if !ok {
		return
	}
	var req UpdateChildRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	child, err := h.coord.UpdateChild(r.Context(), actorRef(r), childID, req.Content)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, child)
}

// RemoveChild deletes a child and closes the gap
// @Summary Remove child
// @Tags Children
// @Security BearerAuth
// @Param applicationId path string true "Planning application reference"
// @Param topic path string true "Topic"
// @Param childId path int true "Child ID"
// @Success 204
// @Failure 403 {object} ErrorResponse "Child sent or unit complete"
// @Router /applications/{applicationId}/topics/{topic}/children/{childId} [delete]
func (h *ReviewHandler) RemoveChild(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.childInScope(w, r)
	if !ok {
		return
	}
	if err := h.coord.RemoveChild(r.Context(), actorRef(r), childID); err != nil {
		respondWithAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveChild moves a child to a new position
// @Summary Move child
// @Tags Children
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param applicationId path string true "Planning application reference"
// @Param topic path string true "Topic"
// @Param childId path int true "Child ID"
// @Param request body MoveChildRequest true "Target position"
// @Success 200 {array} models.Child "Children in their new order"
// @Failure 422 {object} ErrorResponse "Position out of range"
// @Router /applications/{applicationId}/topics/{topic}/children/{childId}/move [post]
func (h *ReviewHandler) MoveChild(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.childInScope(w, r)
	if !ok {
		return
	}
	var req MoveChildRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	children, err := h.coord.ReorderChild(r.Context(), actorRef(r), childID, req.Position)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, children)
}

// MarkChildSent records that a child was shared with the applicant
// @Summary Mark child sent
// @Tags Children
// @Produce json
// @Security BearerAuth
// @Param applicationId path string true "Planning application reference"
// @Param topic path string true "Topic"
// @Param childId path int true "Child ID"
// @Success 200 {object} models.Child
// @Failure 422 {object} ErrorResponse "Topic children cannot be sent"
// @Router /applications/{applicationId}/topics/{topic}/children/{childId}/sent [post]
func (h *ReviewHandler) MarkChildSent(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.childInScope(w, r)
	if !ok {
		return
	}
	child, err := h.coord.MarkChildSent(r.Context(), actorRef(r), childID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, child)
}

// History returns the review records of one track
// @Summary Review history
// @Description Records oldest first with the result of the hash chain check
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param applicationId path string true "Planning application reference"
// @Param topic path string true "Topic"
// @Param kind query string false "Review kind"
// @Success 200 {object} models.ReviewHistory
// @Router /applications/{applicationId}/topics/{topic}/reviews [get]
func (h *ReviewHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.coord.History(r.Context(), r.PathValue("applicationId"), pathTopic(r), models.ReviewKind(r.URL.Query().Get("kind")))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, history)
}

// SubmitForReview opens a review cycle
// @Summary Submit for review
// @Description Opens a review record. Resubmitting while one is pending returns that record.
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param applicationId path string true "Planning application reference"
// @Param topic path string true "Topic"
// @Param request body SubmitReviewRequest false "Review kind"
// @Success 200 {object} models.ReviewRecord
// @Failure 422 {object} ErrorResponse "Unit not complete or unchanged since the last verdict"
// @Router /applications/{applicationId}/topics/{topic}/reviews [post]
func (h *ReviewHandler) SubmitForReview(w http.ResponseWriter, r *http.Request) {
	var req SubmitReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	rec, err := h.coord.SubmitForReview(r.Context(), actorRef(r), r.PathValue("applicationId"), pathTopic(r), req.ReviewKind)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rec)
}

// Accept closes a review cycle as accepted
// @Summary Accept
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param applicationId path string true "Planning application reference"
// @Param topic path string true "Topic"
// @Param recordId path int true "Review record ID"
// @Success 200 {object} models.ReviewRecord
// @Failure 403 {object} ErrorResponse "Already reviewed"
// @Failure 409 {object} ErrorResponse "Record superseded"
// @Router /applications/{applicationId}/topics/{topic}/reviews/{recordId}/accept [post]
func (h *ReviewHandler) Accept(w http.ResponseWriter, r *http.Request) {
	recordID, ok := h.recordInScope(w, r)
	if !ok {
		return
	}
	rec, err := h.coord.Accept(r.Context(), actorRef(r), recordID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rec)
}

// EditAndAccept applies reviewer edits and accepts
// @Summary Edit and accept
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param applicationId path string true "Planning application reference"
// @Param topic path string true "Topic"
// @Param recordId path int true "Review record ID"
// @Param request body models.ContentDelta true "Reviewer edits"
// @Success 200 {object} models.ReviewRecord
// @Failure 409 {object} ErrorResponse "Record superseded"
// @Failure 422 {object} ErrorResponse "Empty or invalid edit"
// @Router /applications/{applicationId}/topics/{topic}/reviews/{recordId}/edit-and-accept [post]
func (h *ReviewHandler) EditAndAccept(w http.ResponseWriter, r *http.Request) {
	recordID, ok := h.recordInScope(w, r)
	if !ok {
		return
	}
	var delta models.ContentDelta
	if err := decodeJSON(w, r, &delta); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	rec, err := h.coord.EditAndAccept(r.Context(), actorRef(r), recordID, delta)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rec)
}

// Reject closes a review cycle and sends the unit back to the assessor
// @Summary Reject
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param applicationId path string true "Planning application reference"
// @Param topic path string true "Topic"
// @Param recordId path int true "Review record ID"
// @Param request body RejectRequest true "Reason for rejection"
// @Success 200 {object} models.ReviewRecord
// @Failure 409 {object} ErrorResponse "Record superseded"
// @Failure 422 {object} ErrorResponse "Missing comment"
// @Router /applications/{applicationId}/topics/{topic}/reviews/{recordId}/reject [post]
func (h *ReviewHandler) Reject(w http.ResponseWriter, r *http.Request) {
	recordID, ok := h.recordInScope(w, r)
	if !ok {
		return
	}
	var req RejectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.coord.Reject(r.Context(), actorRef(r), recordID, req.Comment)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rec)
}

// childInScope parses childId and checks it belongs to the unit named by the path
func (h *ReviewHandler) childInScope(w http.ResponseWriter, r *http.Request) (uint, bool) {
	childID, err := pathID(r, "childId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidChildID)
		return 0, false
	}
	unit, err := h.coord.ChildOwner(r.Context(), childID)
	if err == nil && !inScope(r, unit) {
		err = apperror.NotFound("child not found")
	}
	if err != nil {
		respondWithAppError(w, err)
		return 0, false
	}
	return childID, true
}

// recordInScope parses recordId and checks it belongs to the unit named by the path
func (h *ReviewHandler) recordInScope(w http.ResponseWriter, r *http.Request) (uint, bool) {
	recordID, err := pathID(r, "recordId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRecordID)
		return 0, false
	}
	unit, err := h.coord.RecordOwner(r.Context(), recordID)
	if err == nil && !inScope(r, unit) {
		err = apperror.NotFound("review record not found")
	}
	if err != nil {
		respondWithAppError(w, err)
		return 0, false
	}
	return recordID, true
}

func inScope(r *http.Request, unit *models.ReviewableUnit) bool {
	return unit.ApplicationID == r.PathValue("applicationId") && unit.Topic == pathTopic(r)
}

func pathTopic(r *http.Request) models.Topic {
	return models.Topic(r.PathValue("topic"))
}

func pathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// actorRef returns the authenticated actor; routes are always wrapped by Authenticate
func actorRef(r *http.Request) string {
	actor, _ := middleware.GetActorRef(r)
	return actor
}
