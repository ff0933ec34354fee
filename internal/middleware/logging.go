package middleware

import (
	"log"
	"net/http"

	"github.com/felixge/httpsnoop"
)

// AccessLog logs method, path, status, size and duration of every request
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		log.Printf("%s %s %d %dB %s", r.Method, r.URL.Path, m.Code, m.Written, m.Duration)
	})
}
