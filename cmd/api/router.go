// path: cmd/api/router.go
package main

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/techappsUT/socialqueue-ucb/internal/middleware"
)

// setupRouter wires every spec §6 external-interface route onto chi,
// gating admin-only CRUD behind RequireAdmin and the approve/skip HTTP
// shortcut behind RequireReviewer. The chat webhook and review token links
// stay unauthenticated: their own signature/token checks are the access
// control. The OAuth callback sits behind RequireAuth with the rest.
func setupRouter(container *Container) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/api/health", container.HealthHandler.Check)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", container.AuthHandler.Login)
		r.Post("/refresh", container.AuthHandler.RefreshToken)
		r.Post("/logout", container.AuthHandler.Logout)
	})

	// Unauthenticated: the chat signature and review token are each their
	// own proof of authorization.
	r.Post("/api/webhook/chat", container.WebhookHandler.Handle)
	r.Get("/api/review/approve", container.ReviewHandler.Approve)
	r.Get("/api/review/regenerate", container.ReviewHandler.Regenerate)
	r.Get("/api/review/skip", container.ReviewHandler.Skip)

	r.Group(func(r chi.Router) {
		r.Use(container.AuthMiddleware.RequireAuth)

		r.Get("/api/threads/oauth/callback", container.ThreadsHandler.OAuthCallback)

		r.Route("/api/posts", func(r chi.Router) {
			r.Get("/", container.PostHandler.ListPosts)
			r.Post("/", container.PostHandler.CreatePost)
			r.Post("/manual", container.PostHandler.CreateManualPost)
			r.Get("/{id}", container.PostHandler.GetPost)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireReviewer)
				r.Post("/{id}/approve", container.PostHandler.ApprovePost)
				r.Post("/{id}/skip", container.PostHandler.SkipPost)
			})
		})

		r.Route("/api/templates", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/", container.TemplateHandler.List)
			r.Post("/", container.TemplateHandler.Create)
			r.Get("/{id}", container.TemplateHandler.Get)
			r.Put("/{id}", container.TemplateHandler.Update)
			r.Delete("/{id}", container.TemplateHandler.Delete)
		})

		r.Route("/api/time-slots", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/", container.TimeSlotHandler.List)
			r.Post("/", container.TimeSlotHandler.Create)
			r.Get("/{id}", container.TimeSlotHandler.Get)
			r.Put("/{id}", container.TimeSlotHandler.Update)
			r.Delete("/{id}", container.TimeSlotHandler.Delete)
		})

		r.Route("/api/scheduler-config", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/", container.SchedulerHandler.GetConfig)
			r.Put("/", container.SchedulerHandler.UpdateConfig)
		})

		r.With(middleware.RequireAdmin).Get("/api/auto-schedules", container.SchedulerHandler.ListAutoSchedules)
		r.With(middleware.RequireAdmin).Post("/api/trigger-daily-schedule", container.SchedulerHandler.TriggerDailySchedule)

		r.Route("/api/statistics", func(r chi.Router) {
			r.Get("/summary", container.StatsHandler.Summary)
			r.Get("/templates", container.StatsHandler.Templates)
			r.Get("/time-slots", container.StatsHandler.TimeSlots)
		})
	})

	return r
}
