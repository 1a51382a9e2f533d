package httpapi

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/airpass/internal/common"
	"github.com/dmitrijs2005/airpass/internal/server/services"
)

type ensureProfileRequest struct {
	UserKey  string `json:"userKey"`
	Nickname string `json:"nickname"`
	HomeCity string `json:"homeCity"`
}

var errUserKeyRequired = fmt.Errorf("%w: userKey is required", common.ErrorValidation)

func (s *HTTPServer) handleEnsureProfile(w http.ResponseWriter, r *http.Request) {
	var req ensureProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.svc.Passport.EnsureProfile(r.Context(), userKeyOr(r, req.UserKey), req.Nickname, req.HomeCity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *HTTPServer) handleLogExposure(w http.ResponseWriter, r *http.Request) {
	var in services.ExposureInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	in.UserKey = userKeyOr(r, in.UserKey)

	sum, err := s.svc.Passport.LogExposure(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sum)
}

func (s *HTTPServer) handleGetPassport(w http.ResponseWriter, r *http.Request) {
	key := userKeyOr(r, r.URL.Query().Get("userKey"))
	if key == "" {
		s.writeError(w, r, errUserKeyRequired)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	view, err := s.svc.Passport.GetPassport(r.Context(), key, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleInsights answers JSON null when the profile does not exist.
func (s *HTTPServer) handleInsights(w http.ResponseWriter, r *http.Request) {
	key := userKeyOr(r, r.URL.Query().Get("userKey"))
	if key == "" {
		s.writeError(w, r, errUserKeyRequired)
		return
	}

	view, err := s.svc.Insights.Insights(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
