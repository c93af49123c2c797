package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"plan-review/internal/models"
	"plan-review/internal/repository"
)

// AuditLister reads audit log entries
type AuditLister interface {
	List(ctx context.Context, filter repository.AuditFilter) ([]models.AuditLog, int, error)
}

// AuditLogPage is one page of audit log entries
type AuditLogPage struct {
	Logs       []models.AuditLog `json:"logs"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// AuditHandler handles audit log requests
type AuditHandler struct {
	auditRepo AuditLister
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditRepo AuditLister) *AuditHandler {
	return &AuditHandler{auditRepo: auditRepo}
}

// ListAuditLogs lists audit logs with pagination
// @Summary List audit logs
// @Description Paginated audit log, newest first (reviewers only)
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(50)
// @Param actor_ref query string false "Filter by actor"
// @Param action query string false "Filter by action"
// @Param resource query string false "Filter by resource"
// @Success 200 {object} AuditLogPage
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /audit-logs [get]
func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := 1
	if p, err := strconv.Atoi(query.Get("page")); err == nil && p > 0 {
		page = p
	}
	limit := 50
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	logs, total, err := h.auditRepo.List(r.Context(), repository.AuditFilter{
		ActorRef: query.Get("actor_ref"),
		Action:   query.Get("action"),
		Resource: query.Get("resource"),
		Limit:    limit,
		Offset:   (page - 1) * limit,
	})
	if err != nil {
		slog.Error("Failed to list audit logs", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve audit logs")
		return
	}

	respondWithJSON(w, http.StatusOK, AuditLogPage{
		Logs:       logs,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	})
}
