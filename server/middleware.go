package server

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Ducheved/sharpmote/auth"
	"github.com/Ducheved/sharpmote/log"
	"github.com/Ducheved/sharpmote/projection"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/time/rate"
)

// recorder remembers the status written through it.
type recorder struct {
	http.ResponseWriter
	status int
}

func (r *recorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *recorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")
		w.Header().Set("X-Request-Id", id)

		entry := log.WithFields(log.Fields{
			"module":     "http",
			"request_id": id,
			"client_ip":  clientIP(r),
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		entry.Debug("request_start")

		rec := &recorder{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(rec, r)

		status := rec.status
		switch {
		case status == 0 && r.Context().Err() != nil:
			status = projection.StatusClientClosedRequest
		case status == 0:
			status = http.StatusOK
		}

		entry.WithFields(log.Fields{
			"status":  status,
			"elapsed": fmt.Sprintf("%.1fms", float64(time.Since(start).Microseconds())/1000),
		}).Info("request_end")
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return lo.Ternary(r.RemoteAddr == "", "unknown", r.RemoteAddr)
	}
	return host
}

func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}

			log.WithFields(log.Fields{"module": "http", "path": r.URL.Path}).Errorf("unhandled panic: %v", v)
			writeProblem(w, r, http.StatusInternalServerError, fmt.Sprint(v))
		}()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" || !(lo.Contains(s.cfg.AllowedOrigins, origin) || lo.Contains(s.cfg.AllowedOrigins, "*")) {
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, X-Api-Key")
			h.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

var publicPrefixes = []string{"/healthz", "/yandex/", "/telegram/webhook", "/css/", "/js/", "/favicon", "/assets/", "/index.html"}

func isPublic(path string) bool {
	return path == "/" || lo.SomeBy(publicPrefixes, func(prefix string) bool {
		return strings.HasPrefix(path, prefix)
	})
}

// authorize requires X-Api-Key on everything but the public paths. The event stream
// also accepts ?api_key= because browsers cannot set headers on EventSource.
func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.ToLower(r.URL.Path)
		if isPublic(path) {
			next.ServeHTTP(w, r)
			return
		}

		expected := s.cfg.APIKey()
		if expected == "" {
			writeProblem(w, r, http.StatusServiceUnavailable, "API key is not configured, set SHARPMOTE_API_KEY or run `sharpmote apikey generate`")
			return
		}

		provided := r.Header.Get("X-Api-Key")
		if provided == "" && path == "/events" {
			provided = r.URL.Query().Get("api_key")
		}

		entry := log.WithFields(log.Fields{"module": "auth", "path": r.URL.Path, "client_ip": clientIP(r)})
		if strings.TrimSpace(provided) == "" {
			entry.Warn("missing api key")
			writeProblem(w, r, http.StatusUnauthorized, "X-Api-Key required")
			return
		}

		if !auth.Equal(expected, provided) {
			entry.Warn("invalid api key")
			writeProblem(w, r, http.StatusForbidden, "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func limit(l *rate.Limiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow() {
			w.Header().Set("Retry-After", "1")
			writeProblem(w, r, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		next(w, r)
	}
}
