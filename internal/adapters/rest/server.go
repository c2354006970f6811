package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mzton/vantage/internal/core/port"
)

// Handlers bundles every handler mounted by the server.
type Handlers struct {
	Listings *ListingsHandler
	Map      *MapHandler
	Sessions *SessionHandler
	Camera   *CameraStreamHandler
	AI       *AIHandler
}

type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

// NewRouter builds the HTTP routes. It is split from NewServer so tests can drive it with httptest.
func NewRouter(h Handlers, metrics *Metrics, allowedOrigins []string, baseLogger port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if metrics != nil {
		r.Use(metrics.Middleware)
	}
	r.Use(LoggerMiddleware(baseLogger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/listings", func(r chi.Router) {
			r.Get("/", h.Listings.FindAll)
			r.Get("/search", h.Listings.Search)
			r.Get("/bounds", h.Listings.FindByBounds)
			r.Get("/nearby", h.Listings.FindNearby)
			r.Get("/geojson", h.Listings.GeoJSON)
			r.Get("/{listingID}", h.Listings.FindByID)
		})
		r.Get("/clusters", h.Listings.Clusters)

		r.Route("/map", func(r chi.Router) {
			r.Get("/config", h.Map.Config)
			r.Get("/token", h.Map.GetToken)
			r.Put("/token", h.Map.SubmitToken)
			r.Delete("/token", h.Map.ClearToken)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.Sessions.Create)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Use(h.Sessions.SessionCtx)

				r.Get("/", h.Sessions.Get)
				r.Delete("/", h.Sessions.Delete)
				r.Put("/map-token", h.Sessions.SubmitMapToken)
				r.Get("/camera", h.Camera.Subscribe)
				r.Post("/clicks", h.Sessions.Click)

				r.Route("/view", func(r chi.Router) {
					r.Get("/", h.Sessions.GetView)
					r.Patch("/", h.Sessions.UpdateView)
					r.Put("/", h.Sessions.SetView)
					r.Post("/fly-to", h.Sessions.FlyTo)
					r.Post("/reset", h.Sessions.ResetView)
					r.Put("/style", h.Sessions.SetStyle)
					r.Put("/features/{feature}", h.Sessions.SetFeature)
					r.Post("/features/{feature}/toggle", h.Sessions.ToggleFeature)
					r.Put("/error", h.Sessions.SetMapError)
					r.Delete("/error", h.Sessions.ClearMapError)
				})

				r.Route("/selection", func(r chi.Router) {
					r.Get("/", h.Sessions.GetSelection)
					r.Put("/", h.Sessions.Select)
					r.Delete("/", h.Sessions.ClearSelection)
				})

				r.Route("/listings", func(r chi.Router) {
					r.Get("/", h.Sessions.GetListings)
					r.Post("/fetch-all", h.Sessions.FetchAllListings)
					r.Post("/search", h.Sessions.SearchListings)
					r.Delete("/search", h.Sessions.ClearSearch)
					r.Post("/more", h.Sessions.LoadMore)
					r.Put("/hover", h.Sessions.Hover)
				})

				r.Route("/assistant", func(r chi.Router) {
					r.Get("/", h.Sessions.GetAssistant)
					r.Post("/messages", h.Sessions.SendMessage)
					r.Delete("/messages", h.Sessions.ClearMessages)
					r.Post("/analyze", h.Sessions.Analyze)
					r.Post("/open", h.Sessions.OpenAssistant)
					r.Post("/close", h.Sessions.CloseAssistant)
					r.Post("/toggle", h.Sessions.ToggleAssistant)
					r.Patch("/context", h.Sessions.UpdateContext)
				})

				r.Route("/location", func(r chi.Router) {
					r.Get("/", h.Sessions.GetLocation)
					r.Put("/", h.Sessions.ReportLocation)
					r.Post("/request", h.Sessions.RequestLocation)
					r.Post("/error", h.Sessions.FailLocation)
				})
			})
		})
	})

	r.Route("/api/ai", func(r chi.Router) {
		r.Post("/analyze", h.AI.Analyze)
		r.Post("/chat", h.AI.Chat)
	})

	return r
}

func NewServer(listenPort string, handler http.Handler, baseLogger port.LoggerPort) *Server {
	srv := &http.Server{
		Addr:              ":" + listenPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     baseLogger.WithFields(port.Fields{"component": "rest_server"}),
	}
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully. Open camera streams end when ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
