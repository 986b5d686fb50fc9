// Package httpapi exposes the gateway over HTTP: token issue, authenticated
// queries and a health check.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/chatgate/internal/logging"
	"github.com/dmitrijs2005/chatgate/internal/server/services"
)

const maxBodyBytes = 1 << 20

type Authenticator interface {
	Login(ctx context.Context, username, password string) (*services.LoginResult, error)
}

type TokenVerifier interface {
	Verify(header string) (string, error)
}

type Answerer interface {
	Answer(ctx context.Context, query, user string) (*services.Response, error)
}

type HealthChecker interface {
	Check(ctx context.Context) error
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type queryRequest struct {
	Query *string `json:"query"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Handler holds the route handlers and their collaborators.
type Handler struct {
	auth     Authenticator
	verifier TokenVerifier
	gateway  Answerer
	health   HealthChecker
	logger   logging.Logger
}

func NewHandler(a Authenticator, v TokenVerifier, g Answerer, h HealthChecker, logger logging.Logger) *Handler {
	return &Handler{auth: a, verifier: v, gateway: g, health: h, logger: logger.With("module", "http_handler")}
}

// Routes builds the full middleware-wrapped mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/token", h.token)
	mux.Handle("POST /chatbot/query", authMiddleware(h.verifier, h.logger)(http.HandlerFunc(h.query)))
	mux.HandleFunc("GET /health", h.healthCheck)

	return requestIDMiddleware(loggingMiddleware(h.logger)(mux))
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON body")
	}
	return nil
}

func (h *Handler) token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeBody(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	res, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: res.AccessToken, TokenType: res.TokenType})
}

func (h *Handler) query(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid token payload")
		return
	}

	var req queryRequest
	if err := decodeBody(r, &req); err != nil || req.Query == nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	res, err := h.gateway.Answer(r.Context(), *req.Query, user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Check(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "Healthy"})
}
