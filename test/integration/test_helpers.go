//go:build integration

package integration

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/v3ai2026/vision/internal/config"
	"github.com/v3ai2026/vision/internal/database"
	"github.com/v3ai2026/vision/internal/handler"
	"github.com/v3ai2026/vision/internal/metrics"
	"github.com/v3ai2026/vision/internal/middleware"
	"github.com/v3ai2026/vision/internal/password"
	"github.com/v3ai2026/vision/internal/repository"
	"github.com/v3ai2026/vision/internal/router"
	"github.com/v3ai2026/vision/internal/service"
	"github.com/v3ai2026/vision/internal/token"
)

// newAuthServer builds the full HTTP stack against the database named by
// DATABASE_URL. Tests are skipped when the variable is unset.
func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set; skipping integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	db, err := database.New(ctx, database.Config{URL: databaseURL, MaxConns: 4, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.EnsureSchema(ctx))

	cfg := &config.Config{
		ServerPort:       "8080",
		RequestTimeout:   30 * time.Second,
		DatabaseURL:      databaseURL,
		JWTSecret:        "integration-test-secret",
		JWTTTL:           168 * time.Hour,
		BcryptCost:       4,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
	}

	codec, err := token.NewCodec(cfg.JWTSecret, cfg.JWTTTL)
	require.NoError(t, err)
	hasher := password.NewHasher(cfg.BcryptCost)

	credentialRepo := repository.NewCredentialRepository(db.Pool)
	profileRepo := repository.NewProfileRepository(db.Pool)
	authService := service.NewAuthService(credentialRepo, hasher, codec)
	profileService := service.NewProfileService(profileRepo, credentialRepo)

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(authService), router.Handlers{
		Auth: handler.NewAuthHandler(authService),
		User: handler.NewUserHandler(profileService),
	}, registry, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(appRouter)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body []byte) *http.Response {
	t.Helper()

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func doBearerRequest(t *testing.T, method string, url string, accessToken string, body []byte) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader([]byte{})
	} else {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}
