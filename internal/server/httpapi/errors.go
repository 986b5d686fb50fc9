package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/chatgate/internal/common"
)

type errorBody struct {
	Detail string `json:"detail"`
}

// statusFor maps a service error onto an HTTP status and client-facing
// detail. Upstream causes are never echoed.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, common.ErrMissingCredential):
		return http.StatusUnauthorized, "Missing Authorization header"
	case errors.Is(err, common.ErrInvalidScheme):
		return http.StatusUnauthorized, "Invalid token scheme"
	case errors.Is(err, common.ErrInvalidOrExpiredToken):
		return http.StatusUnauthorized, "Invalid or expired token"
	case errors.Is(err, common.ErrInvalidPayload):
		return http.StatusUnauthorized, "Invalid token payload"
	case errors.Is(err, common.ErrInvalidQuery):
		return http.StatusBadRequest, "Query must not be empty"
	case errors.Is(err, common.ErrUpstreamEmbedding):
		return http.StatusBadGateway, "Embedding service unavailable"
	case errors.Is(err, common.ErrUpstreamIndex):
		return http.StatusBadGateway, "Vector index unavailable"
	case errors.Is(err, common.ErrHealthCheck):
		return http.StatusInternalServerError, "Vector index connection failed"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, detail := statusFor(err)
	writeJSON(w, status, errorBody{Detail: detail})
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}
