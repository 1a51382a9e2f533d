package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/airpass/internal/common"
	"github.com/dmitrijs2005/airpass/internal/server/models"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const sessionKey ctxKey = "session"

// requestLogger logs one line per request once the handler has finished.
func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// tokenFromRequest looks for a session token in the Authorization bearer
// header, then the session cookie, then the token query parameter.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get(common.AuthorizationHeaderName); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(common.SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get("token")
}

// sessionContext attaches the caller's live session, if any, to the request
// context. Requests without one are passed through unchanged.
func (s *HTTPServer) sessionContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		info, err := s.svc.Auth.Session(r.Context(), token)
		if err != nil {
			s.logger.Warn(r.Context(), "session lookup failed", "error", err)
		}
		if info != nil {
			r = r.WithContext(context.WithValue(r.Context(), sessionKey, info))
		}
		next.ServeHTTP(w, r)
	})
}

func sessionFromContext(ctx context.Context) *models.SessionInfo {
	info, _ := ctx.Value(sessionKey).(*models.SessionInfo)
	return info
}

// userKeyOr returns key, or the signed-in caller's userKey when key is empty.
func userKeyOr(r *http.Request, key string) string {
	if key != "" {
		return key
	}
	if info := sessionFromContext(r.Context()); info != nil {
		return info.UserKey
	}
	return ""
}
