package chi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"restaurant-menu/internal/adapters/handlers/http/chi/v1/entity"
	"restaurant-menu/internal/adapters/handlers/http/chi/v1/file"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// maxRequestBytes bounds request bodies, multipart uploads included
const maxRequestBytes = 64 << 20

// NewRouter builds http.Handler with chi. metricsHandler is mounted on
// /metrics when not nil.
func NewRouter(logger *slog.Logger, entityHandler *entity.HandlerV1, fileHandler *file.HandlerV1, metricsHandler http.Handler, env string) http.Handler {
	r := chi.NewRouter()

	//handle requestID to facilitate debug (X-Request-ID)
	//It fetches from request if exists, or creates it
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.RequestSize(maxRequestBytes))

	if env != "prod" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", entity.ActorHeader},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if entityHandler != nil {
			r.Mount("/entity", entityHandler.Routes())
		}
		if fileHandler != nil {
			r.Mount("/file", fileHandler.Routes())
		}
	})

	if fileHandler != nil {
		r.Get("/file/local/{key}", fileHandler.ServeLocalV1)
	}

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	})

	return r
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
