package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"promotion-platform/internal/domain"
	"promotion-platform/internal/domain/model"
	"promotion-platform/internal/usecase"
)

// Server is the merchant-facing API: price quotes, content drafts, checkout,
// and own history. Authentication happens upstream; the trusted gateway
// injects the caller's account id in X-Account-ID.
type Server struct {
	pricing  usecase.PricingUseCase
	contents usecase.ContentUseCase
	payments usecase.PaymentUseCase
	log      *zerolog.Logger
}

func NewServer(pricing usecase.PricingUseCase, contents usecase.ContentUseCase, payments usecase.PaymentUseCase, logger *zerolog.Logger) *Server {
	compLog := logger.With().Str("component", "MerchantAPI").Logger()
	return &Server{pricing: pricing, contents: contents, payments: payments, log: &compLog}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Get("/api/v1/catalog", s.handleCatalog)
	r.Get("/api/v1/quote", s.handleQuote)

	r.Group(func(r chi.Router) {
		r.Use(requireAccount)
		r.Post("/api/v1/content/{serviceType}", s.handleCreateDraft)
		r.Get("/api/v1/content/{serviceType}", s.handleListOwn)
		r.Delete("/api/v1/content/{serviceType}/{id}", s.handleDeleteContent)
		r.Post("/api/v1/payments", s.handleCheckout)
		r.Get("/api/v1/payments", s.handleOwnPayments)
	})
	return r
}

type accountIDKey struct{}

func requireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Account-ID")
		if id == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), accountIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func accountID(r *http.Request) string {
	id, _ := r.Context().Value(accountIDKey{}).(string)
	return id
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pricing.Catalog(r.Context()))
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	st := model.ServiceType(q.Get("service_type"))
	if !st.Valid() {
		http.Error(w, "Unknown service type", http.StatusBadRequest)
		return
	}
	entry := s.pricing.Quote(r.Context(), st, model.Tier(q.Get("tier")), q.Get("refresh") == "true")
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	st := model.ServiceType(chi.URLParam(r, "serviceType"))
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	rec, err := s.contents.CreateDraft(r.Context(), accountID(r), st, payload)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListOwn(w http.ResponseWriter, r *http.Request) {
	st := model.ServiceType(chi.URLParam(r, "serviceType"))
	var (
		records []*model.ContentRecord
		err     error
	)
	if r.URL.Query().Get("state") == "unreviewed" {
		records, err = s.contents.ListOwnPendingOrRejected(r.Context(), accountID(r), st)
	} else {
		records, err = s.contents.ListOwn(r.Context(), accountID(r), st)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	st := model.ServiceType(chi.URLParam(r, "serviceType"))
	if err := s.contents.Delete(r.Context(), accountID(r), st, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type checkoutRequest struct {
	ServiceType string `json:"service_type"`
	Tier        string `json:"tier"`
	ContentID   string `json:"content_id"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	rec, err := s.payments.CreateServicePayment(r.Context(), accountID(r),
		model.ServiceType(req.ServiceType), model.Tier(req.Tier), req.ContentID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleOwnPayments(w http.ResponseWriter, r *http.Request) {
	records, err := s.payments.ListOwnPayments(r.Context(), accountID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func writeDomainError(w http.ResponseWriter, err error) {
	var ge *domain.GatewayError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrOwnershipViolation):
		http.Error(w, "Delegated accounts may not purchase services", http.StatusForbidden)
	case errors.Is(err, domain.ErrNotAuthorized):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, domain.ErrContentActive):
		http.Error(w, "Active content cannot be deleted", http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, "Invalid request", http.StatusBadRequest)
	case errors.As(err, &ge):
		// 402 mirrors the gateway decline back to the buyer.
		http.Error(w, ge.Message, http.StatusPaymentRequired)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
