package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/campuspub/publication-portal/internal/auth"
	"github.com/campuspub/publication-portal/internal/department"
	"github.com/campuspub/publication-portal/internal/email"
	"github.com/campuspub/publication-portal/internal/event"
	"github.com/campuspub/publication-portal/internal/landing"
	"github.com/campuspub/publication-portal/internal/profile"
	"github.com/campuspub/publication-portal/internal/request"
	"github.com/campuspub/publication-portal/internal/transport/middleware"
	"github.com/campuspub/publication-portal/internal/transport/swagger"
	"github.com/campuspub/publication-portal/internal/user"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth       *auth.Handler
	Landing    *landing.Handler
	Request    *request.Handler
	Event      *event.Handler
	User       *user.Handler
	Profile    *profile.Handler
	Department *department.Handler
	Email      *email.Handler
}

// RegisterAllRoutes wires the full route table. The session middleware is
// installed by the caller around the whole router so page and API routes
// share one session.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, driver string, guard *auth.Guard, store *auth.RoleStore, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, driver)

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(h.Auth.ResumeMiddleware)

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	// Page shells
	router.Get("/", h.Landing.Home)
	router.Get("/login", h.Landing.Login)
	router.Get("/logout", func(w http.ResponseWriter, r *http.Request) {
		if err := store.SignOut(r.Context()); err != nil {
			logger.Error("failed to destroy session", "error", err)
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
	router.Group(func(pr chi.Router) {
		pr.Use(guard.RequirePage(auth.RoleStudent))
		pr.Get("/student", h.Landing.Student)
	})
	router.Group(func(pr chi.Router) {
		pr.Use(guard.RequirePage(auth.RoleStaff))
		pr.Get("/staff", h.Landing.Staff)
	})
	router.Group(func(pr chi.Router) {
		pr.Use(guard.RequirePage(auth.RoleAdmin))
		pr.Get("/admin", h.Landing.Admin)
	})

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/logout", h.Auth.Logout)
			sr.Get("/me", h.Auth.Me)
			sr.Post("/register", h.Auth.Register)
			sr.Post("/change_password", h.Auth.ChangePassword)
			sr.Post("/register_event", h.Auth.RegisterEvent)
		})

		r.Route("/req", func(rr chi.Router) {
			// public surface
			rr.With(guard.Annotate()).Post("/pubreqtest", h.Request.Create)
			rr.Get("/calendar", h.Event.Calendar)
			rr.Get("/eventfetch", h.Event.List)

			// moderation surface
			rr.Group(func(mr chi.Router) {
				mr.Use(guard.RequireAny(auth.RoleStaff, auth.RoleAdmin))
				mr.Get("/pubreqfetch", h.Request.List)
				mr.Post("/pubreqchangestatus", h.Request.ChangeStatus)
				mr.Post("/pubrequpdate", h.Request.Update)
				mr.Post("/pubreqdelete", h.Request.Delete)
				mr.Get("/attachments/{id}", h.Request.DownloadAttachment)
				mr.Post("/eventcreate", h.Event.Create)
				mr.Post("/eventdelete", h.Event.Delete)
			})
		})

		r.Get("/departments", h.Department.List)

		r.Group(func(sr chi.Router) {
			sr.Use(guard.RequireSession())
			sr.Get("/profile", h.Profile.Get)
			sr.Post("/profile", h.Profile.Update)
		})

		r.Group(func(ar chi.Router) {
			ar.Use(guard.RequireAny(auth.RoleAdmin))
			ar.Route("/admin/users", func(ur chi.Router) {
				ur.Get("/", h.User.List)
				ur.Post("/", h.User.Create)
				ur.Get("/{id}", h.User.Get)
				ur.Put("/{id}", h.User.Update)
				ur.Delete("/{id}", h.User.Delete)
			})
			ar.Post("/email/send", h.Email.Send)
		})
	})
}
