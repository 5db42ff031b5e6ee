package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/v3ai2026/vision/internal/config"
	"github.com/v3ai2026/vision/internal/handler"
	"github.com/v3ai2026/vision/internal/middleware"
)

type Handlers struct {
	Auth *handler.AuthHandler
	User *handler.UserHandler
}

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	handlers Handlers,
	registry *prometheus.Registry,
	health http.HandlerFunc,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", handlers.Auth.Login)
			auth.Post("/register", handlers.Auth.Register)
			auth.Post("/refresh", handlers.Auth.Refresh)
			auth.Post("/logout", handlers.Auth.Logout)
		})

		api.Route("/user", func(user chi.Router) {
			user.Use(authMiddleware.RequireAuth)
			user.Get("/info", handlers.User.Info)
			user.Put("/info", handlers.User.UpdateInfo)
			user.Delete("/account", handlers.User.DeleteAccount)
		})
	})

	return r
}
