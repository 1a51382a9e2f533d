package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/airpass/internal/server/models"
)

type deletedBody struct {
	Deleted int64 `json:"deleted"`
}

func (s *HTTPServer) handleRecordReading(w http.ResponseWriter, r *http.Request) {
	var in models.AirQualityReading
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	in.ID = ""
	in.UserKey = userKeyOr(r, in.UserKey)

	out, err := s.svc.History.Record(r.Context(), &in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *HTTPServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	list, err := s.svc.History.History(r.Context(), userKeyOr(r, q.Get("userKey")), limit, q.Get("from"), q.Get("to"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *HTTPServer) handleDailySummary(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := s.svc.History.DailySummary(r.Context(), userKeyOr(r, r.URL.Query().Get("userKey")), days)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *HTTPServer) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.History.Delete(r.Context(), userKeyOr(r, r.URL.Query().Get("userKey")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedBody{Deleted: n})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	exp, err := s.svc.History.Export(r.Context(), userKeyOr(r, r.URL.Query().Get("userKey")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, exp)
}

func (s *HTTPServer) handleListExports(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	list, err := s.svc.History.ListExports(r.Context(), userKeyOr(r, r.URL.Query().Get("userKey")), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
