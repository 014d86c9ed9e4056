package api

import (
	"net/http"

	"github.com/lexigo/reviewd/internal/errors"
	"github.com/lexigo/reviewd/internal/logger"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// handleError centralizes error handling for HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	appErr, ok := errors.As(err)
	if !ok {
		// Wrap unknown errors as internal errors
		appErr = errors.NewInternalError(err)
	}

	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else {
		log.Warn("client error: %v", appErr)
	}

	if appErr.Retryable() {
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(w, r, appErr.Status, errorResponse{Error: errorBody{Code: appErr.Code, Message: appErr.Message}})
}

var (
	errNoRoute          = &errors.AppError{Code: errors.ErrCodeNotFound, Message: "route not found", Status: http.StatusNotFound}
	errMethodNotAllowed = &errors.AppError{Code: errors.ErrCodeBadRequest, Message: "method not allowed", Status: http.StatusMethodNotAllowed}
)
