package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	goCoord "github.com/MrEthical07/goCoord"
	"github.com/MrEthical07/goCoord/metrics/export/prometheus"
	"github.com/MrEthical07/goCoord/middleware"
	"github.com/MrEthical07/goCoord/tokenguard"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

const apiKeyHeader = "API_KEY"

type tokenService interface {
	Issue(subject string, ttl time.Duration) (string, error)
	Consume(ctx context.Context, raw string) (*jwt.RegisteredClaims, error)
}

type app struct {
	coord          *goCoord.Coordinator
	guard          tokenService
	tokenTTL       time.Duration
	trustForwarded bool
	metrics        bool
	logger         *slog.Logger
}

func newRouter(a app) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestContext(a.trustForwarded))

	r.Get("/healthz", a.health)
	if a.metrics {
		r.Method(http.MethodGet, "/metrics", prometheus.New(a.coord).Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(a.coord.Limiter(),
			middleware.Prefixed("api:", middleware.HeaderOrIP(apiKeyHeader, a.trustForwarded))))

		r.With(middleware.Idempotency(a.coord.Validator(), "")).Post("/orders", a.createOrder)

		r.Post("/payments/{id}/attempts", a.attemptPayment)
		r.Post("/payments/{id}/complete", a.completePayment)

		r.Post("/tokens", a.issueToken)
		r.Post("/tokens/consume", a.consumeToken)
	})

	return r
}

func (a app) health(w http.ResponseWriter, r *http.Request) {
	loaded, err := a.coord.Health(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "scripts_loaded": loaded})
}

func (a app) createOrder(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, map[string]string{"status": "accepted"})
}

// attemptPayment lets the same payer retry a payment until it completes or
// the gate times out.
func (a app) attemptPayment(w http.ResponseWriter, r *http.Request) {
	payer, ok := payerOf(r, a.trustForwarded)
	if !ok {
		http.Error(w, "unable to identify payer", http.StatusBadRequest)
		return
	}

	ok, err := a.coord.Validator().RepeatableValidateUntilSuccessOrTimeout(r.Context(), paymentKey(r), payer)
	switch {
	case err != nil:
		a.unavailable(w, r, "payment attempt", err)
	case !ok:
		http.Error(w, "payment locked", http.StatusConflict)
	default:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "pending"})
	}
}

func (a app) completePayment(w http.ResponseWriter, r *http.Request) {
	payer, ok := payerOf(r, a.trustForwarded)
	if !ok {
		http.Error(w, "unable to identify payer", http.StatusBadRequest)
		return
	}

	ok, err := a.coord.Validator().MarkSucceeded(r.Context(), paymentKey(r), payer)
	switch {
	case err != nil:
		a.unavailable(w, r, "payment completion", err)
	case !ok:
		http.Error(w, "no pending payment for payer", http.StatusConflict)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "succeeded"})
	}
}

type tokenRequest struct {
	Subject string `json:"subject"`
	Token   string `json:"token"`
}

func (a app) issueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Subject) == "" {
		http.Error(w, "subject is required", http.StatusBadRequest)
		return
	}

	token, err := a.guard.Issue(req.Subject, a.tokenTTL)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

func (a app) consumeToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}

	claims, err := a.guard.Consume(r.Context(), req.Token)
	switch {
	case errors.Is(err, tokenguard.ErrTokenReplayed):
		http.Error(w, "token already used", http.StatusConflict)
	case errors.Is(err, tokenguard.ErrUnavailable):
		a.unavailable(w, r, "token consume", err)
	case err != nil:
		http.Error(w, "invalid token", http.StatusUnauthorized)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"subject": claims.Subject})
	}
}

func (a app) unavailable(w http.ResponseWriter, r *http.Request, op string, err error) {
	a.logger.WarnContext(r.Context(), "request refused", "op", op, "error", err)
	http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
}

func paymentKey(r *http.Request) string {
	return "payment:" + chi.URLParam(r, "id")
}

func payerOf(r *http.Request, trustForwarded bool) (string, bool) {
	return middleware.HeaderOrIP(apiKeyHeader, trustForwarded)(r)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
