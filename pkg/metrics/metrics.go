package metrics

import (
	"context"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

type newRelicContextKey struct{}

// NewRelicContextKey is the context key holding the *newrelic.Application
var NewRelicContextKey = newRelicContextKey{}

// WithApplication returns a context carrying the New Relic application used by
// the recording helpers in this package
func WithApplication(ctx context.Context, app *newrelic.Application) context.Context {
	return context.WithValue(ctx, NewRelicContextKey, app)
}

func applicationFromContext(ctx context.Context) (*newrelic.Application, bool) {
	nr, ok := ctx.Value(NewRelicContextKey).(*newrelic.Application)
	return nr, ok && nr != nil
}

// StartTransaction starts a New Relic transaction when an application is
// available in ctx. The returned context carries the transaction so that
// TraceMethodCall can attach segments to it. The transaction is nil when ctx
// already carries one, or has no application; newrelic handles nil gracefully.
func StartTransaction(ctx context.Context, name string) (context.Context, *newrelic.Transaction) {
	nr, ok := applicationFromContext(ctx)
	if !ok || newrelic.FromContext(ctx) != nil {
		return ctx, nil
	}

	txn := nr.StartTransaction(name)
	return newrelic.NewContext(ctx, txn), txn
}

// RecordEvent records a custom event with a set of key-value pairs
func RecordEvent(ctx context.Context, eventName string, kvPairs map[string]interface{}) {
	nr, ok := applicationFromContext(ctx)
	if ok {
		nr.RecordCustomEvent(eventName, kvPairs)
	}
}

// RecordCount records a count metric
func RecordCount(ctx context.Context, metricName string, count uint64) {
	nr, ok := applicationFromContext(ctx)
	if ok {
		nr.RecordCustomMetric(metricName, float64(count))
	}
}

// RecordDuration records a duration metric
func RecordDuration(ctx context.Context, metricName string, duration time.Duration) {
	nr, ok := applicationFromContext(ctx)
	if ok {
		nr.RecordCustomMetric(metricName, float64(duration/time.Millisecond))
	}
}
