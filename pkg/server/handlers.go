package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"nexus-hq/arbiter/pkg/audit"
	"nexus-hq/arbiter/pkg/engine"
	"nexus-hq/arbiter/pkg/review"
)

// errorResponse is the JSON envelope for API errors.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleSubmit accepts a loan application, evaluates it, and routes it by
// disposition. The id and submission time may be omitted, in which case
// the server assigns them; every other field is required.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var app engine.LoanApplication
	if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", fmt.Sprintf("malformed request body: %v", err))
		return
	}

	if app.ID == "" {
		app.ID = "LN-" + uuid.New().String()[:8]
	}
	if app.SubmittedAt.IsZero() {
		app.SubmittedAt = time.Now().UTC()
	}

	result, err := s.pipeline.Submit(r.Context(), &app)
	if err != nil {
		var invalid *engine.InvalidApplicationError
		var unavailable *engine.SignalUnavailableError
		var duplicate *review.DuplicateEnqueueError
		switch {
		case errors.As(err, &invalid):
			writeError(w, http.StatusBadRequest, "invalid_application", err.Error())
		case errors.As(err, &unavailable):
			writeError(w, http.StatusServiceUnavailable, "signal_unavailable", err.Error())
		case errors.As(err, &duplicate):
			writeError(w, http.StatusConflict, "duplicate_enqueue", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// pendingResponse lists applications awaiting review, oldest first.
type pendingResponse struct {
	Entries []*review.Entry `json:"entries"`
	Count   int             `json:"count"`
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	entries, err := s.pipeline.Pending(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	if entries == nil {
		entries = []*review.Entry{}
	}
	writeJSON(w, http.StatusOK, pendingResponse{Entries: entries, Count: len(entries)})
}

// resolveRequest is the body of a resolution call. Justification may be
// blank; a placeholder is recorded in that case.
type resolveRequest struct {
	Decision      audit.HumanDecision `json:"decision"`
	Justification string              `json:"justification"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	applicationID := r.PathValue("id")
	if applicationID == "" {
		writeError(w, http.StatusBadRequest, "missing_id", "application id is required")
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", fmt.Sprintf("malformed request body: %v", err))
		return
	}

	record, err := s.pipeline.Resolve(r.Context(), applicationID, req.Decision, req.Justification)
	if err != nil {
		var notFound *review.NotFoundError
		var invalid *review.InvalidDecisionError
		switch {
		case errors.As(err, &notFound):
			writeError(w, http.StatusNotFound, "not_found", err.Error())
		case errors.As(err, &invalid):
			writeError(w, http.StatusBadRequest, "invalid_decision", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// auditResponse carries one page of audit records plus the total match
// count before pagination.
type auditResponse struct {
	Records []*audit.Record `json:"records"`
	Count   int64           `json:"count"`
}

func (s *Server) handleAuditQuery(w http.ResponseWriter, r *http.Request) {
	query, err := parseAuditQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	records, err := s.auditStorage.Query(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	total, err := s.auditStorage.Count(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	if records == nil {
		records = []*audit.Record{}
	}
	writeJSON(w, http.StatusOK, auditResponse{Records: records, Count: total})
}

// defaultAuditPageSize bounds audit responses when the client does not
// pass an explicit limit.
const defaultAuditPageSize = 100

func parseAuditQuery(r *http.Request) (*audit.Query, error) {
	params := r.URL.Query()
	query := &audit.Query{
		ApplicationID: params.Get("application_id"),
		Disposition:   engine.Disposition(params.Get("disposition")),
		SortOrder:     params.Get("sort"),
		Limit:         defaultAuditPageSize,
	}

	if v := params.Get("start_time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("invalid start_time %q: %w", v, err)
		}
		query.StartTime = &t
	}
	if v := params.Get("end_time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("invalid end_time %q: %w", v, err)
		}
		query.EndTime = &t
	}
	if v := params.Get("feedback_triggered"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid feedback_triggered %q: %w", v, err)
		}
		query.FeedbackTriggered = &b
	}
	if v := params.Get("overridden"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid overridden %q: %w", v, err)
		}
		query.OverriddenOnly = b
	}
	if v := params.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid limit %q", v)
		}
		query.Limit = n
	}
	if v := params.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid offset %q", v)
		}
		query.Offset = n
	}

	return query, nil
}
