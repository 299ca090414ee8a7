package http

import (
	"log"
	"net/http"

	"github.com/alu-network/backend/internal/admin"
	"github.com/alu-network/backend/internal/auth"
	"github.com/alu-network/backend/internal/config"
	"github.com/alu-network/backend/internal/httputil"
	"github.com/alu-network/backend/internal/link"
	"github.com/alu-network/backend/internal/logging"
	"github.com/alu-network/backend/internal/user"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	cfg *config.Config,
	userHandler *user.Handler,
	linkHandler *link.Handler,
	authHandler *auth.Handler,
	adminHandler *admin.Handler,
	authMiddleware *auth.Middleware,
	logger *logging.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)               // Security headers on all responses
	r.Use(middleware.Recoverer)          // Recover from panics
	r.Use(middleware.RequestID)          // Add request ID
	r.Use(middleware.RealIP)             // Set RemoteAddr to real IP
	r.Use(logging.RequestLogger(logger)) // Structured logging with request context
	r.Use(middleware.Compress(5))        // Compress responses

	// Public routes
	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	// Production builds will not have this route at all
	if cfg.Server.IsDevelopment() {
		log.Println("Swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	} else {
		log.Println("Swagger UI disabled (production mode)")
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			// Public: registration, directory, token issuance
			r.Get("/", userHandler.List)
			r.Post("/", userHandler.Create)
			r.Post("/token", authHandler.CreateToken)

			// Own profile and links
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAuth)

				r.Get("/me", userHandler.Me)
				r.Put("/me", userHandler.UpdateMe)
				r.Patch("/me", userHandler.UpdateMe)

				r.Route("/me/links", func(r chi.Router) {
					r.Get("/", linkHandler.List)
					r.Post("/", linkHandler.Create)
					r.Put("/{id}", linkHandler.Update)
					r.Patch("/{id}", linkHandler.Update)
					r.Delete("/{id}", linkHandler.Delete)
				})
			})

			// Keep after /me so chi does not treat "me" as an id
			r.Get("/{id}", userHandler.Get)
		})

		// Staff-only management surface
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Use(authMiddleware.RequireStaff)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", adminHandler.ListUsers)
				r.Post("/", adminHandler.CreateUser)
				r.Get("/{id}", adminHandler.GetUser)
				r.Patch("/{id}", adminHandler.UpdateUser)
				r.Delete("/{id}", adminHandler.DeleteUser)
			})

			r.Route("/links", func(r chi.Router) {
				r.Get("/", adminHandler.ListLinks)
				r.Post("/", adminHandler.CreateLink)
				r.Delete("/{id}", adminHandler.DeleteLink)
			})
		})
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
