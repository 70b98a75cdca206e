package interfaces

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/cors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/metrics"
	"storefront/internal/pkg/tracing"
)

const serviceName = "storefront"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument 为单个路由提取上游 trace 上下文、开启 server span，并记录指标和访问日志。
func instrument(pattern string, next http.HandlerFunc) http.Handler {
	tracer := otel.Tracer(serviceName)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := tracer.Start(ctx, "HTTP "+pattern, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		if id := tracing.GetTraceIDFromContext(ctx); id != "" {
			w.Header().Set("X-Trace-Id", id)
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r.WithContext(ctx))

		elapsed := time.Since(start)
		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", pattern),
			attribute.Int("http.status_code", rec.status),
		)
		metrics.HTTPRequests.WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, pattern).Observe(elapsed.Seconds())

		logger.Ctx(ctx).Debug().
			Str("method", r.Method).
			Str("route", pattern).
			Int("status", rec.status).
			Dur("elapsed", elapsed).
			Msg("request served")
	})
}

// corsPolicy 放行任意来源，并允许携带 trace 上下文头。
var corsPolicy = cors.New(cors.Options{
	AllowedOrigins: []string{"*"},
	AllowedMethods: []string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
	},
	AllowedHeaders: []string{"Content-Type", "Authorization", "traceparent", "tracestate", "baggage"},
	ExposedHeaders: []string{"X-Trace-Id"},
	MaxAge:         600,
})

// CORS 处理跨域预检，预检请求不会进入业务路由。
func CORS(next http.Handler) http.Handler {
	return corsPolicy.Handler(next)
}
