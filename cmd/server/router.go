package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/collab-api/internal/api"
	apiMiddleware "github.com/phrazzld/collab-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	assignmentHandler := api.NewAssignmentHandler(app.assignmentService, app.logger)
	eventHandler := api.NewEventHandler(app.eventService, app.logger)
	invitationHandler := api.NewInvitationHandler(app.invitationService, app.logger)
	notificationHandler := api.NewNotificationHandler(app.notificationService, app.logger)
	noteHandler := api.NewNoteHandler(app.noteService, app.logger)
	userHandler := api.NewUserHandler(app.userService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/tasks", taskHandler.List)
			r.Post("/tasks", taskHandler.Create)
			r.Get("/tasks/{id}", taskHandler.Get)
			r.Patch("/tasks/{id}", taskHandler.Update)
			r.Delete("/tasks/{id}", taskHandler.Delete)
			r.Post("/tasks/{id}/notify", taskHandler.Notify)
			r.Post("/tasks/{id}/check", taskHandler.Check)

			r.Get("/assignments", assignmentHandler.List)
			r.Post("/assignments", assignmentHandler.Create)
			r.Get("/assignments/{id}", assignmentHandler.Get)
			r.Delete("/assignments/{id}", assignmentHandler.Delete)
			r.Post("/assignments/{id}/complete", assignmentHandler.Complete)

			r.Get("/events", eventHandler.List)
			r.Post("/events", eventHandler.Create)
			r.Get("/events/{id}", eventHandler.Get)
			r.Patch("/events/{id}", eventHandler.Update)
			r.Delete("/events/{id}", eventHandler.Delete)
			r.Post("/events/{id}/invite", eventHandler.Invite)
			r.Get("/events/{id}/guests/count", eventHandler.CountGuests)
			r.Post("/events/{id}/remind", eventHandler.Remind)
			r.Post("/events/{id}/check", eventHandler.Check)

			r.Get("/invitations", invitationHandler.List)
			r.Post("/invitations/{id}/accept", invitationHandler.Accept)
			r.Post("/invitations/{id}/decline", invitationHandler.Decline)

			r.Get("/notifications", notificationHandler.List)
			r.Post("/notifications/{id}/read", notificationHandler.MarkRead)
			r.Post("/notifications/read-all", notificationHandler.MarkAllRead)

			r.Get("/notes", noteHandler.List)
			r.Post("/notes", noteHandler.Create)
			r.Get("/notes/{id}", noteHandler.Get)
			r.Patch("/notes/{id}", noteHandler.Update)
			r.Delete("/notes/{id}", noteHandler.Delete)

			r.Get("/users", userHandler.List)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
