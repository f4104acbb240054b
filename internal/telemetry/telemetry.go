// Package telemetry wraps Sentry error reporting and tracing. Without a DSN
// every function is safe to call and reports nothing.
package telemetry

import (
	"context"
	"time"

	sentry "github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

var enabled bool

// Init configures the Sentry client. An empty dsn disables reporting.
func Init(dsn, release string) error {
	return Configure(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          release,
		TracesSampleRate: 1.0,
	})
}

// Configure initializes Sentry with explicit options, such as a custom
// transport. An empty Dsn disables reporting.
func Configure(opts sentry.ClientOptions) error {
	if opts.Dsn == "" {
		enabled = false
		return nil
	}
	if err := sentry.Init(opts); err != nil {
		return err
	}
	enabled = true
	log.WithFields(log.Fields{"module": "telemetry", "function": "Configure"}).Info("Sentry enabled")
	return nil
}

// Enabled reports whether events are sent
func Enabled() bool {
	return enabled
}

// StartSpan starts a child span of the transaction in ctx. Use span.Context()
// for nested calls and Finish to close it.
func StartSpan(ctx context.Context, op, description string) *sentry.Span {
	span := sentry.StartSpan(ctx, op)
	span.Description = description
	return span
}

// Finish sets the span status from err and closes the span. Only the
// outermost span reports err, so a failure bubbling up through nested
// spans is captured once.
func Finish(span *sentry.Span, err error) {
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		if span.IsTransaction() {
			CaptureError(err)
		}
	} else {
		span.Status = sentry.SpanStatusOK
	}
	span.Finish()
}

// CaptureError reports err when Sentry is enabled
func CaptureError(err error) {
	if err == nil || !enabled {
		return
	}
	sentry.CaptureException(err)
}

// SetContext attaches a named context to subsequent events
func SetContext(name string, value map[string]interface{}) {
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetContext(name, value)
	})
}

// Flush waits for buffered events to be delivered
func Flush(timeout time.Duration) {
	if enabled {
		sentry.Flush(timeout)
	}
}

// GinMiddleware returns the Sentry gin handler
func GinMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{Repanic: true})
}
