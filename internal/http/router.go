package http

import (
	"net/http"
	"time"

	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/auth"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type API struct {
	Service *service.Service
	Auth    *auth.Manager
	Origins []string
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(loggingMiddleware)
	r.Use(a.corsMiddleware)

	r.Get("/health", a.handleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", a.handleRegister)
		r.Post("/login", a.handleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(a.authMiddleware)
		r.Get("/me", a.handleMe)

		r.Route("/goals", func(r chi.Router) {
			r.Get("/", a.handleGetGoals)
			r.Put("/", a.handleSaveGoals)
			r.Get("/presets", a.handleListPresets)
			r.Post("/presets/{id}/apply", a.handleApplyPreset)
			r.Delete("/categories/{category}/metrics", a.handleClearCategoryMetrics)
			r.Put("/categories/{category}/metrics/{metric}", a.handleSetCategoryMetric)
		})

		r.Route("/logs", func(r chi.Router) {
			r.Get("/", a.handleListLogs)
			r.Get("/{date}", a.handleGetLog)
			r.Put("/{date}", a.handleSaveLog)
			r.With(requireUUID("id")).Post("/{id}/like", a.handleLike)
			r.With(requireUUID("id")).Delete("/{id}/like", a.handleUnlike)
			r.With(requireUUID("id")).Get("/{id}/comments", a.handleListComments)
			r.With(requireUUID("id")).Post("/{id}/comments", a.handleAddComment)
		})
		r.Get("/scores/{date}", a.handleGetScore)

		r.Route("/drinks", func(r chi.Router) {
			r.Get("/", a.handleListDrinks)
			r.Post("/", a.handleAddDrink)
			r.With(requireUUID("id")).Delete("/{id}", a.handleDeleteDrink)
		})

		r.With(requireUUID("userID")).Post("/follows/{userID}", a.handleFollow)
		r.With(requireUUID("userID")).Delete("/follows/{userID}", a.handleUnfollow)
		r.Get("/feed", a.handleFeed)
		r.Get("/badges", a.handleListBadges)
	})

	return r
}
