package ai

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "codecoach",
		Subsystem: "ai",
		Name:      "generation_duration_seconds",
		Help:      "Duration of text generation requests",
	}, []string{"provider", "model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codecoach",
		Subsystem: "ai",
		Name:      "generation_failures_total",
		Help:      "Number of failed text generation requests",
	}, []string{"provider", "model"})

	tracer = otel.Tracer("github.com/noah-isme/codecoach-api/pkg/ai")
)

// instrument runs call inside a span and records duration and failures.
func instrument(ctx context.Context, provider, model string, call func(context.Context) (string, error)) (string, error) {
	ctx, span := tracer.Start(ctx, provider+".generate", trace.WithAttributes(
		attribute.String("ai.provider", provider),
		attribute.String("ai.model", model),
	))
	defer span.End()

	start := time.Now()
	text, err := call(ctx)
	aiDuration.WithLabelValues(provider, model).Observe(time.Since(start).Seconds())
	if err == nil && text == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		aiFailures.WithLabelValues(provider, model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(attribute.Int("ai.response_chars", len(text)))
	return text, nil
}
