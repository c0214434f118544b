package middleware

import (
	"context"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/google/uuid"
)

func RequestIdMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		//沿用上游傳來的 request id, 讓跨服務的 log 串得起來
		requestId := r.Header.Get(string(constants.RequestIDHeaderKey))
		if requestId == "" {
			requestId = uuid.New().String()
		}
		w.Header().Set(string(constants.RequestIDHeaderKey), requestId)

		ctx := context.WithValue(r.Context(), constants.RequestIDKey, requestId)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(constants.RequestIDKey).(string); ok {
		return v
	}
	return "unknown"
}
