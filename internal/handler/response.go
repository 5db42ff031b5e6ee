package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/v3ai2026/vision/internal/model"
	"github.com/v3ai2026/vision/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, data any) {
	writeEnvelope(w, http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Success: true,
		Msg:     "ok",
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		msg = apiErr.Message
	case errors.Is(err, model.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		msg = "invalid credentials"
	case errors.Is(err, model.ErrAlreadyExists):
		status = http.StatusBadRequest
		msg = "email already registered"
	case errors.Is(err, model.ErrInvalidToken), errors.Is(err, model.ErrTokenExpired):
		status = http.StatusUnauthorized
		msg = "invalid token"
	case errors.Is(err, model.ErrUnauthorized):
		status = http.StatusUnauthorized
		msg = "unauthorized"
	case errors.Is(err, model.ErrCredentialNotFound), errors.Is(err, model.ErrProfileNotFound):
		status = http.StatusNotFound
		msg = "user not found"
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
		msg = "invalid input"
	default:
		// Unexpected failures keep their detail server-side only.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	writeEnvelope(w, status, model.APIResponse{
		Code:    status,
		Success: false,
		Msg:     msg,
		Data:    nil,
	})
}

func writeEnvelope(w http.ResponseWriter, status int, body model.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
