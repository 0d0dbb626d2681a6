package errors

import (
	"github.com/getsentry/sentry-go"
)

// sentryReporter forwards EnhancedErrors to Sentry. It is only installed
// when the operator configures a DSN; by default no reporter is registered
// and Build() is a pure local operation.
type sentryReporter struct{}

// InitSentry configures the global error reporter to forward to Sentry at
// the given DSN. Passing an empty dsn disables reporting.
func InitSentry(dsn, release string) error {
	if dsn == "" {
		SetReporter(nil)
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:     dsn,
		Release: release,
	}); err != nil {
		return New(err).Component("errors").Category(CategoryGeneric).Build()
	}
	SetReporter(&sentryReporter{})
	return nil
}

func (sentryReporter) CaptureError(ee *EnhancedError) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", ee.Component)
		scope.SetTag("category", string(ee.Category))
		for k, v := range ee.GetContext() {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(ee.Err)
	})
}
