package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	core_port "property-publishing-service/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server - REST API сервер.
type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

// NewRouter собирает маршруты. Вынесен отдельно, чтобы тесты работали через httptest.
func NewRouter(drafts *DraftHandler, publications *PublicationHandler, allowedOrigins []string, baseLogger core_port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(baseLogger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/drafts/template", drafts.GetDraftTemplate)

		r.Route("/owners", func(r chi.Router) {
			r.Get("/template", drafts.GetOwnerTemplate)
			r.Get("/required-documents", drafts.GetRequiredDocuments)
			r.Post("/change-type", drafts.ChangeOwnerType)
		})

		r.Route("/properties", func(r chi.Router) {
			r.Get("/types", drafts.GetPropertyTypes)
			r.Post("/apply-type", drafts.ApplyPropertyType)
			r.Post("/validate", drafts.ValidateDraft)

			// Приватные маршруты: пользователь приходит от API Gateway.
			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware)
				r.Post("/", publications.PublishProperty)
				r.Post("/{propertyID}/owners/{ownerID}/documents/{documentType}", publications.UploadOwnerDocument)
			})
		})
	})

	return r
}

func NewServer(port string, handler http.Handler, baseLogger core_port.LoggerPort) *Server {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &Server{
		httpServer: srv,
		logger:     baseLogger,
	}
}

// Start запускает HTTP-сервер.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", core_port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
