// Package telemetry reports unexpected server errors to Sentry.
// Reporting is opt-in: without SENTRY_DSN the Reporter is nil and every
// method is a no-op.
package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

// Reporter captures errors on its own hub so nothing depends on the global
// Sentry client.
type Reporter struct {
	hub *sentry.Hub
}

// Init returns a Reporter for dsn, or nil when dsn is empty.
func Init(dsn, environment, release string) (*Reporter, error) {
	if dsn == "" {
		return nil, nil
	}
	return newReporter(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
		SampleRate:       1.0,
	})
}

func newReporter(opts sentry.ClientOptions) (*Reporter, error) {
	// Request bodies are never read by this API; keep query strings out of
	// events as they can carry user coordinates.
	opts.BeforeSend = func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
		if event.Request != nil {
			event.Request.QueryString = ""
		}
		return event
	}

	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("telemetry.Init: %w", err)
	}
	return &Reporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// CaptureRequestError reports err for the request r under the given
// operation name (e.g. "viewpoints.list").
func (rep *Reporter) CaptureRequestError(r *http.Request, operation string, err error) {
	if rep == nil || err == nil {
		return
	}
	hub := rep.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("operation", operation)
		if r != nil {
			scope.SetRequest(r)
			scope.SetTag("method", r.Method)
		}
		hub.CaptureException(err)
	})
}

// Flush waits up to timeout for queued events to be delivered.
func (rep *Reporter) Flush(timeout time.Duration) bool {
	if rep == nil {
		return true
	}
	return rep.hub.Flush(timeout)
}
