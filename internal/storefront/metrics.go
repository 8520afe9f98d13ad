package storefront

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/openkcm/storefront-sync/internal/serviceerr"
)

// Recorder counts store operations by store, operation and outcome. A nil
// Recorder records nothing.
type Recorder struct {
	operations metric.Int64Counter
	clients    metric.Int64UpDownCounter
}

func NewRecorder(meter metric.Meter) (*Recorder, error) {
	operations, err := meter.Int64Counter(
		"store.operation_count",
		metric.WithDescription("Store operation count"),
		metric.WithUnit("operation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating operation_count meter: %w", err)
	}

	clients, err := meter.Int64UpDownCounter(
		"store.clients",
		metric.WithDescription("Live client instances"),
		metric.WithUnit("client"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating clients meter: %w", err)
	}

	return &Recorder{operations: operations, clients: clients}, nil
}

func (r *Recorder) operation(ctx context.Context, store, op string, err error) {
	if r == nil {
		return
	}

	outcome := "ok"
	if err != nil {
		outcome = string(serviceerr.CodeOf(err))
	}

	r.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("store", store),
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

func (r *Recorder) client(ctx context.Context, delta int64) {
	if r == nil {
		return
	}
	r.clients.Add(ctx, delta)
}
