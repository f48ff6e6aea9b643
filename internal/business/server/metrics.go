package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/twitch-login/internal/config"
	"github.com/openkcm/twitch-login/internal/middleware/responsewriter"
)

const (
	AttrRequestID = "request_id"
	AttrOperation = "operation"
)

var (
	counter metric.Int64Counter
	hist    metric.Int64Histogram
)

func applicationAttributes(app config.Application, attrs ...attribute.KeyValue) []attribute.KeyValue {
	return append([]attribute.KeyValue{
		attribute.String("service.name", app.Name),
		attribute.String("service.version", app.Version),
	}, attrs...)
}

func initMeters(ctx context.Context, cfg *config.Config) error {
	meter := otel.Meter(
		cfg.Application.Name,
		metric.WithInstrumentationVersion(otel.Version()),
		metric.WithInstrumentationAttributes(applicationAttributes(cfg.Application)...),
	)

	var err error

	counter, err = meter.Int64Counter(
		"http.request_count",
		metric.WithDescription("Incoming request count"),
		metric.WithUnit("request"),
	)
	if err != nil {
		return oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "creating request_count meter")
	}

	hist, err = meter.Int64Histogram(
		"http.duration",
		metric.WithDescription("Incoming end to end duration"),
		metric.WithUnit("milliseconds"),
	)
	if err != nil {
		return oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "creating duration meter")
	}

	return nil
}

// newTraceMiddleware covers a route handler with a request id, a span and
// the request metrics. initMeters must have been called before.
func newTraceMiddleware(cfg *config.Config, operationID string) func(http.Handler) http.Handler {
	traceAttrs := applicationAttributes(cfg.Application, attribute.String(AttrOperation, operationID))
	tracer := otel.Tracer(operationID, trace.WithInstrumentationAttributes(traceAttrs...))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := slogctx.With(r.Context(),
				AttrRequestID, uuid.NewString(),
				AttrOperation, operationID,
			)

			parentCtx := otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(r.Header))

			ctx, span := tracer.Start(parentCtx, operationID+"-span", trace.WithAttributes(traceAttrs...))
			defer span.End()

			recorder := responsewriter.NewStatusRecorder(w)
			requestStartTime := time.Now()

			defer func() {
				elapsedTime := time.Since(requestStartTime)

				attrs := metric.WithAttributes(
					applicationAttributes(cfg.Application,
						attribute.String("userAgent", r.UserAgent()),
						attribute.String(AttrOperation, operationID),
						attribute.Int("status", recorder.Status()),
					)...,
				)

				counter.Add(ctx, 1, attrs)
				hist.Record(ctx, elapsedTime.Milliseconds(), attrs)
			}()

			slogctx.Debug(ctx, "Processing request", "method", r.Method, "path", r.URL.Path)
			next.ServeHTTP(recorder, r.WithContext(ctx))
			slogctx.Debug(ctx, "Finished request", "status", recorder.Status())
		})
	}
}
