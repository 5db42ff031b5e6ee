package handler

import (
	"encoding/json"
	"net/http"

	"github.com/v3ai2026/vision/internal/middleware"
	"github.com/v3ai2026/vision/internal/model"
	"github.com/v3ai2026/vision/internal/service"
	"github.com/v3ai2026/vision/pkg/apierror"
)

type UserHandler struct {
	service *service.ProfileService
}

func NewUserHandler(service *service.ProfileService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Info(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	profile, err := h.service.Get(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, profile)
}

func (h *UserHandler) UpdateInfo(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	var payload model.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("invalid JSON body", http.StatusBadRequest))
		return
	}

	profile, err := h.service.Update(r.Context(), claims.UserID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, profile)
}

func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	if err := h.service.DeleteAccount(r.Context(), claims.UserID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, map[string]any{"deleted": true})
}
