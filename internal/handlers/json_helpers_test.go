package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"plan-review/internal/apperror"
	"plan-review/internal/models"
)

func TestJSONResponseNormalizesSlices(t *testing.T) {
	reviewed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	prev := uint(3)
	data := &models.ReviewHistory{
		Records: []models.ReviewRecord{{ID: 4, ReviewedAt: &reviewed, PreviousRecordID: &prev}},
	}

	w := httptest.NewRecorder()
	if err := JSONResponse(w, data); err != nil {
		t.Fatalf("JSONResponse returned error: %v", err)
	}

	body := w.Body.String()
	for _, want := range []string{`"reviewed_at":"2024-05-01T09:00:00Z"`, `"previous_record_id":3`} {
		if !strings.Contains(body, want) {
			t.Errorf("body %s is missing %s", body, want)
		}
	}

	w = httptest.NewRecorder()
	_ = JSONResponse(w, struct {
		Items []string `json:"items"`
		Any   any      `json:"any"`
	}{})
	if got := strings.TrimSpace(w.Body.String()); got != `{"items":[],"any":null}` {
		t.Errorf("unexpected body %s", got)
	}
}

func TestStatusForKind(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperror.NotReady("completion_state", "not complete"), http.StatusUnprocessableEntity},
		{apperror.MissingComment("comment required"), http.StatusUnprocessableEntity},
		{apperror.Invalid("position", "out of range"), http.StatusUnprocessableEntity},
		{apperror.StaleReview("superseded"), http.StatusConflict},
		{apperror.PositionConflict("duplicate"), http.StatusConflict},
		{apperror.Forbidden("sent"), http.StatusForbidden},
		{apperror.NotFound("missing"), http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", apperror.Forbidden("sent")), http.StatusForbidden},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			respondWithAppError(w, tt.err)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestAppErrorBodyCarriesContext(t *testing.T) {
	w := httptest.NewRecorder()
	respondWithAppError(w, apperror.WithOwner(apperror.NotReady("children", "at least 1 item(s) required"), 42))

	body := w.Body.String()
	for _, want := range []string{`"kind":"not_ready"`, `"field":"children"`, `"owner_id":42`} {
		if !strings.Contains(body, want) {
			t.Errorf("body %s is missing %s", body, want)
		}
	}

	w = httptest.NewRecorder()
	respondWithAppError(w, errors.New("pq: password authentication failed"))
	if strings.Contains(w.Body.String(), "pq:") {
		t.Errorf("internal errors must not leak: %s", w.Body.String())
	}
}
