package routes

import (
	"log/slog"
	"net/http"
	"time"

	_ "github.com/Dosada05/tourney/docs" // регистрирует swagger-документ
	"github.com/Dosada05/tourney/handlers"
	"github.com/Dosada05/tourney/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	// Gatherer для /metrics; nil отключает эндпоинт.
	Metrics prometheus.Gatherer
	Logger  *slog.Logger
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	bracketHandler *handlers.BracketHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(opts.JWTSecret, opts.Logger)
	optionalAuth := middleware.OptionalAuthenticate(opts.JWTSecret, opts.Logger)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Metrics, promhttp.HandlerOpts{}))
	}
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentHandler.ListHandler)
			r.With(authenticate).Post("/", tournamentHandler.CreateHandler)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.With(optionalAuth).Get("/", tournamentHandler.GetByIDHandler)
				r.Get("/matches", matchHandler.ListByTournamentHandler)
				r.Get("/validation", tournamentHandler.ValidationHandler)

				r.Group(func(r chi.Router) {
					r.Use(authenticate)
					r.Patch("/status", tournamentHandler.UpdateStatusHandler)
					r.Post("/complete", tournamentHandler.CompleteHandler)
					r.Delete("/", tournamentHandler.DeleteHandler)
				})
			})
		})

		r.Route("/matches/{matchID}", func(r chi.Router) {
			r.Get("/", matchHandler.GetHandler)
			r.With(authenticate).Put("/result", matchHandler.RecordResultHandler)
		})

		r.Post("/brackets/preview", bracketHandler.PreviewHandler)
	})
}
