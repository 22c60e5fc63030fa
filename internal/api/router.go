package api

import (
	"net/http"
	"time"

	"taskboard/internal/api/handler"
	"taskboard/internal/api/middleware"
	"taskboard/internal/app/service"
	"taskboard/internal/common/security"
	"taskboard/internal/domain/repository"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

// NewRouter wires the HTTP surface. loginLimiter wraps only the token
// endpoint; passing a pass-through (e.g. in tests) disables limiting.
func NewRouter(
	authService *service.AuthService,
	taskService *service.TaskService,
	tokens *security.TokenService,
	userRepo repository.UserRepository,
	loginLimiter func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Parses "Authorization: Bearer <token>" and stores verified claims in
	// the request context; the Authenticator middleware decides on them.
	r.Use(jwtauth.Verifier(tokens.JWTAuth()))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handler.NewAuthHandler(authService)
	taskHandler := handler.NewTaskHandler(taskService)

	if loginLimiter == nil {
		loginLimiter = func(next http.Handler) http.Handler { return next }
	}

	// Public: credential exchange and registration.
	r.Group(func(public chi.Router) {
		authHandler.RegisterPublicRoutes(public, loginLimiter)
	})

	// Everything else is owner-scoped and sits behind the auth gate.
	r.Group(func(protected chi.Router) {
		protected.Use(middleware.Authenticator(userRepo))
		authHandler.RegisterProtectedRoutes(protected)
		taskHandler.RegisterRoutes(protected)
	})

	return r
}
