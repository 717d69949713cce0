package httpapi

import (
	"context"
	"net/http"
	"time"

	"autazul-backend-go/internal/cache"
	"autazul-backend-go/internal/config"
	"autazul-backend-go/internal/db"
	"autazul-backend-go/internal/models"
	"autazul-backend-go/internal/services"
	"autazul-backend-go/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type Server struct {
	DB         *db.DB
	Config     config.Config
	Tokens     services.TokenService
	MetricsHub *services.MetricsHub
	Storage    storage.Driver
	Mailer     *services.Mailer
	Limiter    cache.Limiter
}

func NewServer(database *db.DB, cfg config.Config, hub *services.MetricsHub, driver storage.Driver, mailer *services.Mailer, limiter cache.Limiter) *Server {
	tokens := services.TokenService{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  time.Duration(cfg.AccessTTLSeconds) * time.Second,
		RefreshTTL: time.Duration(cfg.RefreshTTLSeconds) * time.Second,
	}
	return &Server{
		DB:         database,
		Config:     cfg,
		Tokens:     tokens,
		MetricsHub: hub,
		Storage:    driver,
		Mailer:     mailer,
		Limiter:    limiter,
	}
}

func (s *Server) Router(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Group(func(auth chi.Router) {
			auth.Use(RateLimit(s.Limiter, "auth", s.Config.TrustProxy))
			auth.Post("/auth/signup", s.Signup)
			auth.Post("/auth/login", s.Login)
			auth.Post("/auth/refresh", s.Refresh)
		})
		api.Get("/settings", s.GetSettings)

		api.Group(func(invite chi.Router) {
			invite.Use(s.OptionalAuth)
			invite.Get("/invites/{token}", s.GetInvite)
			invite.Get("/professionals/invite/{token}", s.GetInvite)
			invite.With(RateLimit(s.Limiter, "invite", s.Config.TrustProxy)).Post("/invites/{token}/accept", s.AcceptInvite)
			invite.With(RateLimit(s.Limiter, "invite", s.Config.TrustProxy)).Post("/professionals/invite/{token}/accept", s.AcceptInvite)
		})

		api.Group(func(authed chi.Router) {
			authed.Use(s.WithAuth)
			authed.Post("/auth/logout", s.Logout)

			authed.Get("/me", s.Me)
			authed.Put("/me/security", s.UpdateSecurity)
			authed.Put("/me/password", s.ChangePassword)

			authed.Route("/children", func(children chi.Router) {
				children.With(RequireRole(models.RoleParent)).Post("/", s.CreateChild)
				children.Get("/", s.ListChildren)
				children.Route("/{childId}", func(child chi.Router) {
					child.Get("/", s.GetChild)
					child.Put("/", s.UpdateChild)
					child.Post("/photo", s.UploadChildPhoto)
					child.Get("/access", s.ChildAccess)
					child.Post("/coparents/invite", s.InviteCoParent)
					child.Post("/coparents", s.AddCoParent)
					child.Delete("/coparents/{userId}", s.RemoveCoParent)
					child.Post("/shares", s.ShareChild)
					child.Delete("/shares/{userId}", s.RemoveShare)
					child.Get("/professionals", s.ListProfessionals)
					child.Delete("/professionals/{professionalId}", s.RemoveProfessional)
					child.Get("/events", s.ListEvents)
					child.Post("/photos", s.UploadEventPhoto)
					child.Get("/reports", s.Report)
				})
			})

			authed.Post("/professionals/invite", s.InviteProfessional)
			authed.With(RequireRole(models.RoleProfessional)).Get("/professional/children", s.ProfessionalChildren)

			authed.Post("/events", s.CreateEvent)
			authed.Get("/events/{eventId}", s.GetEvent)

			authed.Route("/invitations", func(invitations chi.Router) {
				invitations.Get("/pending", s.PendingInvitations)
				invitations.Post("/{inviteId}/accept", s.AcceptInvitation)
				invitations.Post("/{inviteId}/reject", s.RejectInvitation)
			})

			authed.Route("/notifications", func(notifications chi.Router) {
				notifications.Get("/", s.ListNotifications)
				notifications.Get("/unread-count", s.UnreadCount)
				notifications.Post("/read-all", s.MarkAllRead)
				notifications.Post("/{notificationId}/read", s.MarkRead)
			})

			authed.Route("/appointments", func(appointments chi.Router) {
				appointments.Get("/", s.ListAppointments)
				appointments.Post("/", s.CreateAppointment)
				appointments.Post("/{appointmentId}/confirm", s.transitionAppointment(models.AppointmentConfirmed))
				appointments.Post("/{appointmentId}/cancel", s.transitionAppointment(models.AppointmentCancelled))
				appointments.Post("/{appointmentId}/complete", s.transitionAppointment(models.AppointmentCompleted))
			})

			authed.Route("/lgpd", func(lgpd chi.Router) {
				lgpd.Get("/export", s.ExportData)
				lgpd.Get("/requests", s.ListMyLGPDRequests)
				lgpd.Post("/deletion-requests", s.RequestDeletion)
				lgpd.Post("/opposition-requests", s.RequestOpposition)
			})

			authed.Route("/admin", func(admin chi.Router) {
				admin.Use(RequireAdmin)
				admin.Put("/settings", s.UpdateSettings)
				admin.Post("/admins", s.GrantAdmin)
				admin.Get("/audit-logs", s.AuditLogs)
				admin.Get("/system/health", s.SystemHealth)
				admin.Get("/system/metrics/history", s.MetricsHistory)
				admin.Get("/system/backup", s.Backup)
				admin.Get("/lgpd/deletion-requests", s.AdminDeletionRequests)
				admin.Post("/lgpd/deletion-requests/{requestId}/approve", s.ApproveDeletion)
				admin.Get("/lgpd/opposition-requests", s.AdminOppositionRequests)
				admin.Post("/lgpd/opposition-requests/{requestId}/resolve", s.ResolveOpposition)
			})
		})
	})

	r.Get("/ws/health", s.HealthSocket)
	if local, ok := s.Storage.(*storage.Local); ok {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(local.BasePath()))))
	}
	return r
}
