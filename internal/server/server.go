package server

import (
	"encoding/json"
	"net/http"

	"github.com/brk3/habitpanda/internal/config"
	"github.com/brk3/habitpanda/internal/logger"
	"github.com/brk3/habitpanda/internal/remind"
	"github.com/brk3/habitpanda/internal/storage"
	"github.com/brk3/habitpanda/pkg/versioninfo"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	store     storage.Store
	cfg       *config.Config
	reminders *remind.Service

	authProviders map[string]*AuthProvider
	sessionCookie *securecookie.SecureCookie
}

func New(store storage.Store, cfg *config.Config, reminders *remind.Service) *Server {
	return &Server{store: store, cfg: cfg, reminders: reminders}
}

// WithAuth installs the configured OIDC providers and session cookie codec.
// Without it, auth_enabled must be false.
func (s *Server) WithAuth(providers map[string]*AuthProvider, cookie *securecookie.SecureCookie) *Server {
	s.authProviders = providers
	s.sessionCookie = cookie
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(metricsMiddleware)

	r.Get("/version", s.getVersionInfo)
	r.Handle("/metrics", promhttp.Handler())

	if s.cfg.AuthEnabled {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", s.loginPage)
			r.Get("/login/{id}", s.login)
			r.Get("/callback/{id}", s.callback)
			r.Post("/logout", s.logout)
			r.Get("/token", s.getAPIToken)
		})
	}

	r.Group(func(r chi.Router) {
		if s.cfg.AuthEnabled {
			r.Use(s.authMiddleware)
		}

		r.Route("/habits", func(r chi.Router) {
			r.Post("/", s.createHabit)
			r.Get("/", s.listHabits)
			r.Get("/{habit_id}", s.getHabit)
			r.Put("/{habit_id}", s.updateHabit)
			r.Delete("/{habit_id}", s.deleteHabit)

			r.Post("/{habit_id}/checkins", s.addCheckIn)
			r.Get("/{habit_id}/checkins", s.listCheckIns)
			r.Delete("/{habit_id}/checkins", s.deleteCheckInsThrough)
			r.Delete("/{habit_id}/checkins/{checkin_id}", s.deleteCheckIn)

			r.Post("/{habit_id}/reminders", s.createReminder)
			r.Get("/{habit_id}/reminders", s.listReminders)

			r.Get("/{habit_id}/trend", s.getTrend)
		})
		r.Put("/reminders/{reminder_id}", s.updateReminder)
		r.Delete("/reminders/{reminder_id}", s.deleteReminder)

		r.Get("/grid", s.getGrid)

		r.Get("/export", s.exportData)
		r.Post("/import", s.importData)

		r.Route("/admin/notifications", func(r chi.Router) {
			r.Get("/", s.notificationReport)
			r.Post("/rebuild", s.rebuildNotifications)
			r.Post("/cleanup", s.cleanupNotifications)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	_ = writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) getVersionInfo(w http.ResponseWriter, _ *http.Request) {
	info := versioninfo.VersionInfo{
		Version:   versioninfo.Version,
		BuildDate: versioninfo.BuildDate,
	}
	if err := writeJSON(w, http.StatusOK, info); err != nil {
		logger.Error("Failed to serialize version info response", "error", err)
	}
}

// rescheduleReminders runs a full notification rebuild after a data mutation.
// Failures are logged, not surfaced: the write that triggered the rebuild has
// already been committed.
func (s *Server) rescheduleReminders(r *http.Request) {
	if s.reminders == nil {
		return
	}
	scheduled, err := s.reminders.Rebuild(r.Context())
	if err != nil {
		logger.Error("Notification rebuild failed", "error", err)
		return
	}
	pendingNotifications.Set(float64(scheduled))
}
