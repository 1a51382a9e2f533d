package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/airpass/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type conditionsRequest struct {
	Conditions  []string `json:"conditions"`
	Sensitivity string   `json:"sensitivity"`
}

// handleGetHealthProfile answers JSON null when no profile is stored.
func (s *HTTPServer) handleGetHealthProfile(w http.ResponseWriter, r *http.Request) {
	hp, err := s.svc.Health.Get(r.Context(), chi.URLParam(r, "userKey"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hp)
}

func (s *HTTPServer) handleSaveHealthProfile(w http.ResponseWriter, r *http.Request) {
	var in services.HealthProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	hp, err := s.svc.Health.Save(r.Context(), chi.URLParam(r, "userKey"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hp)
}

func (s *HTTPServer) handleUpdateConditions(w http.ResponseWriter, r *http.Request) {
	var req conditionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	hp, err := s.svc.Health.UpdateConditions(r.Context(), chi.URLParam(r, "userKey"), req.Conditions, req.Sensitivity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hp)
}

func (s *HTTPServer) handleDeleteHealthProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Health.Delete(r.Context(), chi.URLParam(r, "userKey")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody{OK: true})
}
