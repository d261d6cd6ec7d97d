package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/codeclash/battle-backend/internal/auth"
)

// SetupRoutes wires the auth REST surface and the websocket upgrade behind
// one router. CORS mirrors what the frontend needs: a single allowed origin
// with credentials.
func SetupRoutes(svc *auth.Service, wsHandler http.HandlerFunc, allowedOrigin string, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", Register(svc, log))
		r.Post("/login", Login(svc, log))
		r.Post("/google-oauth", GoogleOAuth(svc, log))
		r.Post("/refresh", Refresh(svc))
	})
	r.Get("/healthz", Healthz)
	r.Get("/ws", wsHandler)
	return r
}
