package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/almnar0/almeshkat25/internal/apperr"
	"github.com/almnar0/almeshkat25/internal/config"
	"github.com/almnar0/almeshkat25/internal/handlers"
	"github.com/almnar0/almeshkat25/internal/middleware"
	"github.com/almnar0/almeshkat25/internal/models"
	"github.com/almnar0/almeshkat25/internal/repository/jsonstore"
	"github.com/almnar0/almeshkat25/internal/service"
	"github.com/almnar0/almeshkat25/internal/store"
	"github.com/almnar0/almeshkat25/internal/utils"
)

func New(log zerolog.Logger, st store.Store, cfg config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(httprate.LimitByIP(200, time.Minute))
	r.Use(chimw.RequestSize(5 << 20)) // encoded ticket images cap the payload

	// Repos + services
	userRepo := jsonstore.NewUserRepo(st)
	deviceRepo := jsonstore.NewDeviceRepo(st)
	ticketRepo := jsonstore.NewTicketRepo(st)
	notifRepo := jsonstore.NewNotificationRepo(st)
	auditRepo := jsonstore.NewAuditRepo(st)

	auditSvc := service.NewAuditService(auditRepo, log)
	authSvc := service.NewAuthService(userRepo, auditSvc, cfg.SessionSecret, cfg.SessionTTL)
	ticketSvc := service.NewTicketService(ticketRepo, userRepo, deviceRepo, notifRepo, auditSvc, log)
	deviceSvc := service.NewDeviceService(deviceRepo, userRepo, auditSvc)
	statsSvc := service.NewStatsService(userRepo, deviceRepo, ticketRepo)

	ah := handlers.NewAuthHTTP(authSvc)
	uh := handlers.NewUserHTTP(authSvc)
	dh := handlers.NewDeviceHTTP(deviceSvc)
	th := handlers.NewTicketHTTP(ticketSvc)
	nh := handlers.NewNotificationHTTP(notifRepo)
	lh := handlers.NewAuditHTTP(auditSvc)
	sh := handlers.NewDashboardHTTP(statsSvc)

	r.Use(middleware.WithAuth(authSvc))

	// Health
	r.Get("/healthz", handlers.Health())

	// Login attempts share a sliding per-IP window.
	loginLimiter := httprate.Limit(5, 15*time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			utils.Fail(w, apperr.New(apperr.RateLimited, "too many login attempts, try again later"))
		}),
	)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", ah.Register())
			r.With(loginLimiter).Post("/login", ah.Login())
			r.With(middleware.RequireAuth).Get("/me", ah.Me())
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Route("/users", func(r chi.Router) {
				r.With(middleware.RequireRoles(models.RoleAdmin)).Get("/", uh.List())
				r.With(middleware.RequireSelfOrRoles(models.RoleAdmin)).Patch("/{id}", uh.Update())
			})

			r.Route("/devices", func(r chi.Router) {
				r.Get("/", dh.List())
				r.With(middleware.RequireRoles(models.RoleAdmin, models.RoleTechnician)).Post("/", dh.Create())
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", dh.Get())
					r.With(middleware.RequireRoles(models.RoleAdmin, models.RoleTechnician)).Patch("/", dh.Update())
					r.With(middleware.RequireRoles(models.RoleAdmin)).Delete("/", dh.Delete())
				})
			})

			r.Route("/tickets", func(r chi.Router) {
				r.Get("/", th.List())
				r.Post("/", th.Create())
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", th.Get())
					r.Patch("/", th.Update())
					r.With(middleware.RequireRoles(models.RoleAdmin)).Post("/assign", th.Assign())
					r.Post("/rate", th.Rate())
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", nh.List())
				r.Patch("/{id}/read", nh.MarkRead())
				r.Post("/read-all", nh.MarkAllRead())
			})

			r.Get("/dashboard/stats", sh.Stats())
			r.With(middleware.RequireRoles(models.RoleAdmin)).Get("/activity-logs", lh.List())
		})
	})

	return r
}
