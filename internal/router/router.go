package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"bifrost-backend/internal/handlers"
	"bifrost-backend/internal/middleware"
)

func New(
	chatHandler *handlers.ChatHandler,
	conversationHandler *handlers.ConversationHandler,
	configHandler *handlers.ConfigHandler,
	healthHandler *handlers.HealthHandler,
	frontendURL string,
	uiDistPath string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Chat rate limiter (30 req/min per IP)
	chatLimiter := middleware.NewRateLimiter(30, time.Minute)

	r.Get("/health", healthHandler.Health)

	r.Group(func(r chi.Router) {
		r.Use(chatLimiter.Middleware)
		r.Post("/chat", chatHandler.Chat)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/models", healthHandler.Models)

		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", conversationHandler.List)
			r.Post("/", conversationHandler.Create)
			r.Put("/{id}", conversationHandler.Rename)
			r.Delete("/{id}", conversationHandler.Delete)
		})

		r.Get("/config", configHandler.Get)
		r.Put("/config", configHandler.Update)
	})

	// Serve the built frontend when it exists
	if info, err := os.Stat(uiDistPath); err == nil && info.IsDir() {
		mountSPA(r, uiDistPath)
	}

	return r
}

// mountSPA serves static frontend files with an index.html fallback for
// client-side routes. API paths never fall through to the SPA.
func mountSPA(r chi.Router, distPath string) {
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		path := strings.TrimPrefix(req.URL.Path, "/")

		if strings.HasPrefix(path, "api/") || path == "health" || path == "chat" {
			http.NotFound(w, req)
			return
		}

		if path != "" {
			full := filepath.Join(distPath, filepath.Clean(path))
			if info, err := os.Stat(full); err == nil && !info.IsDir() {
				http.ServeFile(w, req, full)
				return
			}
		}

		http.ServeFile(w, req, filepath.Join(distPath, "index.html"))
	})
}
