package metrics

import (
	"context"
	"fmt"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
)

// MethodTracer times a single method call as a segment of the New Relic
// transaction in its context. A nil *MethodTracer is valid and records
// nothing, so callers never need to check whether tracing is enabled.
type MethodTracer struct {
	txn *newrelic.Transaction
	seg *newrelic.Segment
}

// TraceMethodCall starts a "<struct> <method>" segment. It returns nil when
// ctx carries no transaction.
func TraceMethodCall(ctx context.Context, structOrPackageName, methodName string) *MethodTracer {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return nil
	}

	return &MethodTracer{
		txn: txn,
		seg: txn.StartSegment(fmt.Sprintf("%s %s", structOrPackageName, methodName)),
	}
}

func (t *MethodTracer) AddAttribute(key string, value interface{}) {
	if t == nil {
		return
	}
	t.seg.AddAttribute(key, value)
}

func (t *MethodTracer) AddAttributes(attributes map[string]interface{}) {
	if t == nil {
		return
	}
	for key, value := range attributes {
		t.seg.AddAttribute(key, value)
	}
}

// OnError notices err on the transaction and tags the segment with the type
// of its root cause, so failures can be grouped per method. A nil err is
// ignored.
func (t *MethodTracer) OnError(err error) {
	if t == nil || err == nil {
		return
	}

	t.seg.AddAttribute("error_cause", fmt.Sprintf("%T", errors.Cause(err)))
	t.txn.NoticeError(err)
}

func (t *MethodTracer) End() {
	if t == nil {
		return
	}
	t.seg.End()
}
