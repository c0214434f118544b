package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type StatusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *StatusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *StatusRecorder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// 記錄request 請求
func LoggerMiddleware(logger *zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &StatusRecorder{ResponseWriter: w}
			next.ServeHTTP(recorder, r)

			status := recorder.Status()
			event := logger.Info()
			switch {
			case status >= http.StatusInternalServerError:
				event = logger.Error()
			case status >= http.StatusBadRequest:
				event = logger.Warn()
			}

			upn, userID := "unknown", int64(0)
			if payload := GetTokenPayload(r.Context()); payload != nil {
				upn, userID = payload.UPN, payload.UserId
			}

			event.
				Str("request_id", GetRequestID(r.Context())).
				Str("upn", upn).
				Int64("user_id", userID).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Msg("request completed")
		})
	}
}
