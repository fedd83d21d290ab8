package api

import (
	"encoding/json"
	"net/http"

	_ "github.com/blaisecz/cognitive-sync/docs"
	"github.com/blaisecz/cognitive-sync/internal/api/handler"
	"github.com/blaisecz/cognitive-sync/internal/api/middleware"
	"github.com/blaisecz/cognitive-sync/pkg/logger"
	"github.com/blaisecz/cognitive-sync/pkg/metrics"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Users     *handler.UserHandler
	SleepLogs *handler.SleepLogHandler
	Quiz      *handler.QuizHandler
	Activity  *handler.ActivityHandler
	Profile   *handler.ProfileHandler
	Insights  *handler.InsightsHandler
}

type Router struct {
	handlers Handlers
	log      *logger.Logger
	metrics  *metrics.Manager
}

func NewRouter(handlers Handlers, log *logger.Logger, m *metrics.Manager) *Router {
	if log == nil {
		log = logger.Nop()
	}
	return &Router{handlers: handlers, log: log, metrics: m}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(rt.log))
	r.Use(middleware.Tracing)
	r.Use(middleware.RequestLogger(rt.log, rt.metrics))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	if rt.metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	h := rt.handlers
	r.Route("/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.Users.Create)
			r.Route("/{userId}", func(r chi.Router) {
				r.Get("/", h.Users.GetByID)

				r.Post("/sleep-logs", h.SleepLogs.Create)
				r.Get("/sleep-logs", h.SleepLogs.List)

				r.Put("/quiz", h.Quiz.Put)
				r.Get("/quiz", h.Quiz.Get)

				r.Post("/activities/{activity}/records", h.Activity.Create)

				r.Get("/profile", h.Profile.GetProfile)
				r.Post("/profile/recompute", h.Profile.Recompute)
				r.Get("/sync", h.Profile.GetSync)
				r.Get("/insights", h.Insights.GetInsights)
			})
		})

		r.Get("/leaderboard/{domain}", h.Profile.Leaderboard)
	})

	return r
}
