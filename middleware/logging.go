package middleware

import (
	"fmt"
	"net/http"
	"rovify-backend/logger"
	"rovify-backend/response"
	"runtime"
	"time"
)

// statusRecorder remembers the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogging logs the request line and the caller address. Authorization is never logged.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debugf(r.Context(), "request: %s %s from %s, User-Agent: %s", r.Method, r.URL.Path, r.RemoteAddr, r.UserAgent())
		next.ServeHTTP(w, r)
	})
}

// ResponseTimeLogging logs the status and latency of every response. Server errors log at error level.
func ResponseTimeLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now().UTC()
		next.ServeHTTP(rec, r)

		msg := fmt.Sprintf("response: %s %s %d", r.Method, r.URL.Path, rec.status)
		if rec.status >= http.StatusInternalServerError {
			logger.Errorf(r.Context(), "%s in %s", msg, time.Since(start))
			return
		}
		logger.LogExecutionTime(r.Context(), start, msg)
	})
}

// PanicHandler turns a panic in a handler into a 500 and logs the stack.
func PanicHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				buf := make([]byte, 1<<16)
				buf = buf[:runtime.Stack(buf, false)]
				logger.Errorf(r.Context(), "panic serving %s %s: %v\n%s", r.Method, r.URL.Path, err, buf)

				response.SomethingWrong().Send(r.Context(), w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
