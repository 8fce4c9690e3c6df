package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Satakshi24/order-management/internal/observability"
)

// RequestLogger logs every request with its status and duration and feeds
// the HTTP observation into Metrics.
func RequestLogger(logger *zap.Logger, m observability.Metrics) func(http.Handler) http.Handler {
	if m == nil {
		m = observability.Noop{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			durMs := float64(time.Since(start).Microseconds()) / 1000.0

			m.ObserveHTTP(r.Method, r.URL.Path, ww.Status(), durMs)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Float64("duration_ms", durMs),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
