package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"
)

type ctxKey string

const (
	userIDKey ctxKey = "userID"
	tokenKey  ctxKey = "token"
)

// withAuth extracts the bearer token, verifies it once, and stores the
// resolved user id (and the raw token, for logout/refresh) in the request
// context. Every protected handler downstream reads the caller identity from
// here and passes it explicitly into the services.
func (s *HTTPServer) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeUnauthorized(w)
			return
		}

		userID, err := s.tokens.Verify(r.Context(), token)
		if err != nil {
			// rejected tokens render 401; a session store failure is not a
			// rejection and must surface as 500 like any other storage error
			s.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken pulls the token out of the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func callerID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

func callerToken(r *http.Request) string {
	token, _ := r.Context().Value(tokenKey).(string)
	return token
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *HTTPServer) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}
