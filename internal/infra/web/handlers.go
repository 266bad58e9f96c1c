package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"promotion-platform/internal/domain"
	"promotion-platform/internal/domain/model"
)

type loginRequest struct {
	AdminID string `json:"admin_id"`
	APIKey  string `json:"api_key"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if s.apiKey == "" {
		s.log.Error().Msg("admin API key is not configured")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if req.APIKey != s.apiKey || req.AdminID == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if _, err := s.auth.Mint(w, req.AdminID); err != nil {
		http.Error(w, "Failed to mint session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.LedgerFilter{
		ServiceType: model.ServiceType(q.Get("service_type")),
		Search:      q.Get("q"),
	}
	// "all" and "" both mean no status filter.
	if st := q.Get("status"); st != "" && st != "all" {
		filter.Status = model.LedgerStatus(st)
	}

	records, err := s.approvals.ListPayments(r.Context(), filter)
	if err != nil {
		http.Error(w, "Failed to list payments", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "id")
	rec, err := s.approvals.Approve(r.Context(), paymentID, adminID(r))
	if err != nil {
		writeReviewError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Reason == "" {
		http.Error(w, "A rejection reason is required", http.StatusBadRequest)
		return
	}
	paymentID := chi.URLParam(r, "id")
	rec, err := s.approvals.Reject(r.Context(), paymentID, adminID(r), req.Reason)
	if err != nil {
		writeReviewError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeReviewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Payment not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidTransition):
		http.Error(w, "Payment has already been reviewed", http.StatusConflict)
	case errors.Is(err, domain.ErrRecordLocked):
		http.Error(w, "Another reviewer is working on this payment", http.StatusConflict)
	default:
		http.Error(w, "Review failed", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
