package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"event-portal/internal/config"
	"event-portal/internal/guard"
	"event-portal/internal/handler"
	"event-portal/internal/metrics"
	"event-portal/internal/middleware"
	"event-portal/internal/model"
	"event-portal/internal/session"
)

type Handlers struct {
	Auth          *handler.AuthHandler
	Events        *handler.EventsHandler
	Admin         *handler.AdminHandler
	Hoster        *handler.HosterHandler
	Carousel      *handler.CarouselHandler
	Notifications *handler.NotificationsHandler
}

func New(cfg *config.Config, g *guard.Guard, cookies *session.Cookies, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimit := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.LoginRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(metrics.Middleware)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimit.Handler)
	r.Use(middleware.Session(cookies))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Get("/notifications", h.Notifications.Drain)

		// Public portal: anonymous browsing, no guard.
		api.Get("/events", h.Events.List)
		api.Get("/events/{id}", h.Events.Get)
		api.Post("/events/{id}/reservations", h.Events.Reserve)

		api.Route("/admin", func(admin chi.Router) {
			admin.With(g.RedirectIfAuthed(model.KindAdmin)).Get("/login", h.Auth.LoginForm(model.KindAdmin))
			admin.With(g.RedirectIfAuthed(model.KindAdmin)).Post("/login", h.Auth.Login(model.KindAdmin))
			admin.Post("/logout", h.Auth.Logout(model.KindAdmin))

			admin.Group(func(protected chi.Router) {
				protected.Use(g.Require(model.KindAdmin))
				protected.Get("/hosters", h.Admin.ListHosters)
				protected.Put("/hosters/{id}/status", h.Admin.UpdateHosterStatus)
				protected.Get("/events", h.Admin.ListEvents)
				protected.Delete("/events/{id}", h.Admin.DeleteEvent)
				protected.Post("/events/bulk-delete", h.Admin.BulkDeleteEvents)
				protected.Get("/carousel", h.Carousel.List)
				protected.Put("/carousel/order", h.Carousel.Reorder)
				protected.Post("/carousel/{eventId}", h.Carousel.Add)
				protected.Delete("/carousel/{eventId}", h.Carousel.Remove)
			})
		})

		api.Route("/hoster", func(hoster chi.Router) {
			hoster.With(g.RedirectIfAuthed(model.KindHoster)).Get("/login", h.Auth.LoginForm(model.KindHoster))
			hoster.With(g.RedirectIfAuthed(model.KindHoster)).Post("/login", h.Auth.Login(model.KindHoster))
			hoster.Post("/logout", h.Auth.Logout(model.KindHoster))

			hoster.Group(func(protected chi.Router) {
				protected.Use(g.Require(model.KindHoster))
				protected.Get("/events", h.Hoster.ListEvents)
				protected.Put("/events/{id}/status", h.Hoster.UpdateEventStatus)
				protected.Get("/events/{eventID}/reservations", h.Hoster.ListReservations)
				protected.Put("/events/{eventID}/reservations/{id}/status", h.Hoster.UpdateReservationStatus)
				protected.Get("/events/{eventID}/guests", h.Hoster.ListGuests)
				protected.Put("/events/{eventID}/guests/{id}/rsvp", h.Hoster.UpdateGuestRSVP)
				protected.Post("/events/{eventID}/guests/{id}/checkin", h.Hoster.CheckInGuest)
			})
		})
	})

	return r
}
