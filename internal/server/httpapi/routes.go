package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes builds the full router.
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.sessionContext)

		r.Route("/auth", func(r chi.Router) {
			r.Use(s.authLimiter.middleware)
			r.Post("/signup", s.handleSignup)
			r.Post("/login", s.handleLogin)
			r.Get("/session", s.handleSession)
			r.Post("/logout", s.handleLogout)
		})

		r.Route("/passport", func(r chi.Router) {
			r.Get("/", s.handleGetPassport)
			r.Post("/profile", s.handleEnsureProfile)
			r.Post("/exposures", s.handleLogExposure)
			r.Get("/insights", s.handleInsights)
		})

		r.Route("/health-profiles/{userKey}", func(r chi.Router) {
			r.Get("/", s.handleGetHealthProfile)
			r.Put("/", s.handleSaveHealthProfile)
			r.Delete("/", s.handleDeleteHealthProfile)
			r.Patch("/conditions", s.handleUpdateConditions)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleHistory)
			r.Post("/", s.handleRecordReading)
			r.Delete("/", s.handleDeleteHistory)
			r.Get("/summary", s.handleDailySummary)
			r.Post("/export", s.handleExport)
			r.Get("/exports", s.handleListExports)
		})
	})

	return r
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
