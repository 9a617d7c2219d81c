package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
)

type authKey struct{}

// authFrom returns the caller placed in the context by authenticate. The
// zero AuthContext is returned for anonymous requests, which services
// reject.
func authFrom(ctx context.Context) domain.AuthContext {
	auth, _ := ctx.Value(authKey{}).(domain.AuthContext)
	return auth
}

// authenticate verifies the bearer token and stores the caller in the
// request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(h, "Bearer ")
		if !found || token == "" {
			s.fail(w, r, &domain.AccessError{Resource: r.URL.Path, Err: domain.ErrUnauthenticated})
			return
		}
		auth, err := s.auth.ParseToken(token)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), authKey{}, auth)))
	})
}

// requestLogger logs one line per request and records its latency under
// the matched route pattern.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if s.metrics != nil {
			s.metrics.RecordLatency("http "+r.Method+" "+route, elapsed, nil)
		}
		s.log.Debug("http request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"elapsed_ms", elapsed.Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
