package middleware

import (
	"net/http"
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/service"
	"github.com/rs/zerolog"
)

type StatusRecoder struct {
	http.ResponseWriter
	status int
}

func (w *StatusRecoder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Status 沒有呼叫 WriteHeader 時為 200
func (w *StatusRecoder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// LoggerMiddleware 記錄 request 請求
func LoggerMiddleware(logger *zerolog.Logger, identity service.IdentityProvider) func(next http.Handler) http.Handler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recoder := &StatusRecoder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(recoder, r)

			userID := "anonymous"
			if identity != nil {
				if id := identity.Identity(); id.UserID != "" {
					userID = id.UserID
				}
			}

			event := logger.Info()
			if recoder.Status() >= http.StatusInternalServerError {
				event = logger.Error()
			}
			event.
				Str("request_id", GetRequestID(r)).
				Str("user_id", userID).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Int("status", recoder.Status()).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}
