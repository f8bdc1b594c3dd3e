package metrics

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApplication(t *testing.T) *newrelic.Application {
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName("marketplace-test"),
		newrelic.ConfigEnabled(false),
	)
	require.NoError(t, err)
	return app
}

func TestWithApplication(t *testing.T) {
	ctx := context.Background()

	_, ok := applicationFromContext(ctx)
	assert.False(t, ok)

	app := newTestApplication(t)
	actual, ok := applicationFromContext(WithApplication(ctx, app))
	require.True(t, ok)
	assert.Equal(t, app, actual)

	_, ok = applicationFromContext(WithApplication(ctx, nil))
	assert.False(t, ok)
}

func TestRecording_NoApplication(t *testing.T) {
	ctx := context.Background()

	RecordCount(ctx, "count", 1)
	RecordDuration(ctx, "duration", time.Second)
	RecordEvent(ctx, "event", map[string]interface{}{"key": "value"})

	tracedCtx, txn := StartTransaction(ctx, "txn")
	assert.Nil(t, txn)
	assert.Equal(t, ctx, tracedCtx)

	tracer := TraceMethodCall(tracedCtx, "package", "method")
	assert.Nil(t, tracer)
	tracer.AddAttribute("key", "value")
	tracer.AddAttributes(map[string]interface{}{"key": "value"})
	tracer.OnError(errors.New("error"))
	tracer.End()
}

func TestRecording_WithApplication(t *testing.T) {
	ctx := WithApplication(context.Background(), newTestApplication(t))

	RecordCount(ctx, "count", 1)
	RecordDuration(ctx, "duration", time.Second)
	RecordEvent(ctx, "event", map[string]interface{}{"key": "value"})

	tracedCtx, txn := StartTransaction(ctx, "txn")
	defer txn.End()

	tracer := TraceMethodCall(tracedCtx, "package", "method")
	require.NotNil(t, tracer)
	tracer.AddAttribute("key", "value")
	tracer.AddAttributes(map[string]interface{}{"size": 3})
	tracer.OnError(nil)
	tracer.OnError(errors.Wrap(context.DeadlineExceeded, "timed out"))
	tracer.End()
}

func TestStartTransaction_Nested(t *testing.T) {
	ctx := WithApplication(context.Background(), newTestApplication(t))

	outerCtx, outer := StartTransaction(ctx, "outer")
	require.NotNil(t, outer)
	defer outer.End()

	innerCtx, inner := StartTransaction(outerCtx, "inner")
	assert.Nil(t, inner)
	assert.Equal(t, outerCtx, innerCtx)
}

func TestLogForwarder(t *testing.T) {
	forwarder := NewLogForwarder(newTestApplication(t), &logrus.TextFormatter{DisableTimestamp: true})

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(forwarder)

	logger.WithField("auction_house", "abc").WithError(errors.New("boom")).Warn("failed")

	out := buf.String()
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "auction_house=abc")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}

func TestLogForwarder_NoApplication(t *testing.T) {
	inner := &logrus.JSONFormatter{DisableTimestamp: true}
	forwarder := NewLogForwarder(nil, inner)

	entry := logrus.NewEntry(logrus.New()).WithField("wallet", "xyz")
	entry.Message = "hello"
	entry.Level = logrus.InfoLevel

	expected, err := inner.Format(entry)
	require.NoError(t, err)

	actual, err := forwarder.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
}

func TestInstrument(t *testing.T) {
	app := newTestApplication(t)
	inner := &logrus.JSONFormatter{}

	logger := logrus.New()
	logger.SetFormatter(inner)

	ctx := Instrument(context.Background(), app, logger)
	actual, ok := applicationFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, app, actual)

	forwarder, ok := logger.Formatter.(*LogForwarder)
	require.True(t, ok)
	assert.Equal(t, inner, forwarder.inner)

	// Reinstalling does not stack forwarders.
	Instrument(context.Background(), nil, logger)
	forwarder, ok = logger.Formatter.(*LogForwarder)
	require.True(t, ok)
	assert.Equal(t, inner, forwarder.inner)
	assert.Nil(t, forwarder.app)
}

func TestSummarize(t *testing.T) {
	entry := logrus.NewEntry(logrus.New())
	entry.Message = "submitted"
	assert.Equal(t, "submitted", summarize(entry))

	entry = entry.WithError(errors.New("boom")).WithField("signers", 2).WithField("operations", 4)
	entry.Message = "submitted"
	assert.Equal(t, `message="submitted" error="boom" fields={"operations":4,"signers":2}`, summarize(entry))

	entry = logrus.NewEntry(logrus.New()).WithError(errors.New("boom"))
	entry.Message = "failed"
	assert.Equal(t, `message="failed" error="boom"`, summarize(entry))
}
