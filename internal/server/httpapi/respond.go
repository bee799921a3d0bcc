package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/imagifine/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFromError maps the service error taxonomy onto HTTP statuses.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrInvalidPlan),
		errors.Is(err, common.ErrInvalidSignature),
		errors.Is(err, common.ErrInvalidOTP),
		errors.Is(err, common.ErrOTPExpired),
		errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired),
		errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Internal failures get a generic body; the detail
// stays in the server log only.
func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(ctx, "request failed", "error", err.Error())
		writeJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return common.ErrorValidation
	}
	return nil
}
