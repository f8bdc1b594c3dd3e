package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"
)

// LogForwarder is a logrus.Formatter that copies every entry to New Relic
// and decorates the local output with linking metadata. Entries logged with
// a context carrying a transaction are attached to that transaction.
type LogForwarder struct {
	app   *newrelic.Application
	inner logrus.Formatter
}

// NewLogForwarder wraps inner. With a nil app only entries logged inside a
// transaction are forwarded.
func NewLogForwarder(app *newrelic.Application, inner logrus.Formatter) *LogForwarder {
	if inner == nil {
		inner = &logrus.TextFormatter{}
	}
	return &LogForwarder{app: app, inner: inner}
}

// Instrument forwards logger's output to app and returns a context whose
// operations record metrics and traces against it. Installing twice replaces
// the application rather than wrapping the formatter again.
func Instrument(ctx context.Context, app *newrelic.Application, logger *logrus.Logger) context.Context {
	inner := logger.Formatter
	if existing, ok := inner.(*LogForwarder); ok {
		inner = existing.inner
	}
	logger.SetFormatter(NewLogForwarder(app, inner))

	return WithApplication(ctx, app)
}

// Format implements logrus.Formatter.
func (f *LogForwarder) Format(e *logrus.Entry) ([]byte, error) {
	formatted, err := f.inner.Format(e)
	if err != nil {
		return nil, err
	}

	var txn *newrelic.Transaction
	if e.Context != nil {
		txn = newrelic.FromContext(e.Context)
	}

	record := newrelic.LogData{
		Severity: e.Level.String(),
		Message:  summarize(e),
	}
	if txn == nil && f.app == nil {
		return formatted, nil
	}

	out := bytes.NewBuffer(bytes.TrimRight(formatted, "\n"))
	if txn != nil {
		txn.RecordLog(record)
		err = newrelic.EnrichLog(out, newrelic.FromTxn(txn))
	} else {
		f.app.RecordLog(record)
		err = newrelic.EnrichLog(out, newrelic.FromApp(f.app))
	}
	if err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// summarize renders e as a single line: the message, then the error if any,
// then the remaining fields as JSON.
func summarize(e *logrus.Entry) string {
	if len(e.Data) == 0 {
		return e.Message
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "message=%q", e.Message)

	if err, ok := e.Data[logrus.ErrorKey].(error); ok {
		fmt.Fprintf(&sb, " error=%q", err.Error())
	}

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		if k != logrus.ErrorKey {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return sb.String()
	}

	fields := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		fields[k] = e.Data[k]
	}
	encoded, err := json.Marshal(fields)
	if err != nil {
		fmt.Fprintf(&sb, " fields=%v", keys)
		return sb.String()
	}
	fmt.Fprintf(&sb, " fields=%s", encoded)
	return sb.String()
}
