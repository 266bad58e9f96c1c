package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"promotion-platform/internal/usecase"
)

// RateLimiter is the seam for the redis fixed-window limiter; nil disables
// limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Server is the admin review API: list/search the payment ledger and drive
// approve/reject, behind a JWT session and an admin-role check.
type Server struct {
	approvals usecase.ApprovalUseCase
	auth      *AuthManager
	limiter   RateLimiter
	rateLimit int
	apiKey    string // shared secret exchanged for a session at /login
	log       *zerolog.Logger
}

func NewServer(
	approvals usecase.ApprovalUseCase,
	auth *AuthManager,
	limiter RateLimiter,
	rateLimit int,
	apiKey string,
	logger *zerolog.Logger,
) *Server {
	compLog := logger.With().Str("component", "AdminWeb").Logger()
	return &Server{
		approvals: approvals,
		auth:      auth,
		limiter:   limiter,
		rateLimit: rateLimit,
		apiKey:    apiKey,
		log:       &compLog,
	}
}

// Router builds the chi router for the admin API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/api/v1/admin/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)
		r.Get("/api/v1/admin/payments", s.handleListPayments)
		r.Post("/api/v1/admin/payments/{id}/approve", s.handleApprove)
		r.Post("/api/v1/admin/payments/{id}/reject", s.handleReject)
	})
	return r
}

type adminIDKey struct{}

// sessionMiddleware verifies the JWT session cookie and applies the per-admin
// rate limit.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		adminID, err := s.auth.Verify(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if s.limiter != nil {
			ok, err := s.limiter.Allow(r.Context(), "rate_limit:admin:"+adminID, s.rateLimit, time.Minute)
			if err != nil {
				// Limiter outage should not lock admins out.
				s.log.Warn().Err(err).Msg("rate limiter unavailable")
			} else if !ok {
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
		}
		ctx := context.WithValue(r.Context(), adminIDKey{}, adminID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func adminID(r *http.Request) string {
	v, _ := r.Context().Value(adminIDKey{}).(string)
	return v
}
