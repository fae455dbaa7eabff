package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/diewo77/go-backoffice/httpx"
	"github.com/diewo77/go-backoffice/internal/apperr"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID reuses the caller's X-Request-ID or generates one, and echoes it
// on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFrom returns the id set by RequestID.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// Logging writes one entry per request.
func Logging(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			entry := log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     rec.status,
				"duration":   time.Since(start).String(),
				"request_id": RequestIDFrom(r.Context()),
			})
			switch {
			case rec.status >= 500:
				entry.Error("request")
			case rec.status >= 400:
				entry.Warn("request")
			default:
				entry.Info("request")
			}
		})
	}
}

// Recover turns a panic into a 500 envelope.
func Recover(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					log.WithFields(logrus.Fields{
						"request_id": RequestIDFrom(r.Context()),
						"path":       r.URL.Path,
						"panic":      fmt.Sprint(p),
					}).Error("panic recovered")
					httpx.Error(w, r, apperr.Internal(fmt.Errorf("panic: %v", p)))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
