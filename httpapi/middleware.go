package httpapi

import (
	"net/http"

	"github.com/google/uuid"
)

// statusWriter records the status code a handler wrote so the access log
// can report it.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// accessLog logs one line per handled request, tagged with a fresh request
// id.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		s.logger.Info("handled",
			"request_id", uuid.New().String(),
			"method", r.Method,
			"url", r.URL.String(),
			"status", sw.status)
	})
}
