package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v3ai2026/vision/internal/token"
)

func newProtectedHandler(t *testing.T) (http.Handler, *token.Codec) {
	t.Helper()

	codec, err := token.NewCodec("test-secret", time.Hour)
	require.NoError(t, err)

	mw := NewAuthMiddleware(validatorFunc(codec.Verify))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		w.Header().Set("X-User-ID", claims.UserID)
		w.WriteHeader(http.StatusOK)
	})

	return mw.RequireAuth(next), codec
}

type validatorFunc func(tokenString string) (*token.Claims, error)

func (f validatorFunc) ValidateToken(tokenString string) (*token.Claims, error) {
	return f(tokenString)
}

func TestRequireAuth_ValidToken(t *testing.T) {
	handler, codec := newProtectedHandler(t)

	signed, err := codec.Issue("user-1", "a@x.com")
	require.NoError(t, err)

	for _, prefix := range []string{"Bearer ", "bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/user/info", nil)
		req.Header.Set("Authorization", prefix+signed)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, "prefix %q", prefix)
		assert.Equal(t, "user-1", rec.Header().Get("X-User-ID"))
	}
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	handler, _ := newProtectedHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/info", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t,
		`{"code":401,"success":false,"msg":"missing or invalid authorization header","data":null}`,
		rec.Body.String())
}

func TestRequireAuth_BadToken(t *testing.T) {
	handler, _ := newProtectedHandler(t)

	for _, header := range []string{"Bearer garbage", "Basic abc", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/user/info", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	codec, err := token.NewCodec("test-secret", time.Hour)
	require.NoError(t, err)

	expiredCodec, err := token.NewCodec("test-secret", time.Nanosecond)
	require.NoError(t, err)
	signed, err := expiredCodec.Issue("user-1", "a@x.com")
	require.NoError(t, err)

	mw := NewAuthMiddleware(validatorFunc(codec.Verify))
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	time.Sleep(10 * time.Millisecond)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/info", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
