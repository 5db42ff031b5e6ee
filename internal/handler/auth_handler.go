package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/v3ai2026/vision/internal/model"
	"github.com/v3ai2026/vision/internal/service"
	"github.com/v3ai2026/vision/pkg/apierror"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login accepts either a JSON body or OAuth2-style form fields and
// normalizes both into one LoginRequest before hitting the service.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	payload, err := decodeLoginRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	tokens, err := h.service.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, tokens)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("invalid JSON body", http.StatusBadRequest))
		return
	}

	tokens, err := h.service.Register(r.Context(), payload.Email, payload.Password, payload.FullName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, tokens)
}

// Refresh reads the bearer token from the Authorization header and issues a
// new token with a fresh expiry window.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	tokenString, ok := bearerToken(r)
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	tokens, err := h.service.Refresh(tokenString)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, tokens)
}

// Logout has no server-side effect: tokens are stateless and stay valid
// until expiry, disposal is the caller's job.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, nil)
}

func decodeLoginRequest(r *http.Request) (model.LoginRequest, error) {
	contentType := strings.ToLower(r.Header.Get("Content-Type"))

	if strings.Contains(contentType, "application/json") {
		var payload model.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return model.LoginRequest{}, apierror.New("invalid JSON body", http.StatusBadRequest)
		}
		return payload, nil
	}

	if err := r.ParseForm(); err != nil {
		return model.LoginRequest{}, apierror.New("invalid form body", http.StatusBadRequest)
	}

	return model.LoginRequest{
		Username:  r.PostFormValue("username"),
		Password:  r.PostFormValue("password"),
		GrantType: r.PostFormValue("grant_type"),
		Scope:     r.PostFormValue("scope"),
	}, nil
}

// bearerToken extracts the token from an Authorization header, tolerating
// any casing of the "Bearer" prefix.
func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return "", false
	}

	tokenString := strings.TrimSpace(header[len("bearer "):])
	return tokenString, tokenString != ""
}
