// Package errors provides centralized error handling for swyh-go components.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"sync"
	"time"
)

// ErrorCategory groups errors for logging and (optional) telemetry.
type ErrorCategory string

const (
	CategoryAudioDevice   ErrorCategory = "audio-device"
	CategoryCapture       ErrorCategory = "capture"
	CategoryEncoder       ErrorCategory = "encoder"
	CategoryNetwork       ErrorCategory = "network"
	CategorySSDP          ErrorCategory = "ssdp"
	CategorySOAP          ErrorCategory = "soap"
	CategoryRenderer      ErrorCategory = "renderer"
	CategoryClient        ErrorCategory = "client"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryValidation    ErrorCategory = "validation"
	CategoryState         ErrorCategory = "state"
	CategoryFileIO        ErrorCategory = "file-io"
	CategoryNotify        ErrorCategory = "notify"
	CategoryGeneric       ErrorCategory = "generic"
)

// ComponentUnknown is used when no component was set explicitly.
const ComponentUnknown = "unknown"

// EnhancedError wraps an error with component/category context.
type EnhancedError struct {
	Err       error
	Component string
	Category  ErrorCategory
	Context   map[string]any
	Timestamp time.Time

	mu       sync.RWMutex
	reported bool
}

func (ee *EnhancedError) Error() string {
	if ee.Err == nil {
		if msg, ok := ee.Context["error"].(string); ok {
			return msg
		}
		return string(ee.Category)
	}
	return ee.Err.Error()
}

func (ee *EnhancedError) Unwrap() error { return ee.Err }

func (ee *EnhancedError) Is(target error) bool {
	if other, ok := target.(*EnhancedError); ok {
		return ee.Category == other.Category
	}
	return Is(ee.Err, target)
}

// GetContext returns a copy of the error's context map.
func (ee *EnhancedError) GetContext() map[string]any {
	ee.mu.RLock()
	defer ee.mu.RUnlock()
	if ee.Context == nil {
		return nil
	}
	out := make(map[string]any, len(ee.Context))
	maps.Copy(out, ee.Context)
	return out
}

// MarkReported records that this error has already been sent to an
// optional error-reporting sink, so a retry loop doesn't double-report it.
func (ee *EnhancedError) MarkReported() {
	ee.mu.Lock()
	defer ee.mu.Unlock()
	ee.reported = true
}

// IsReported reports whether MarkReported has been called.
func (ee *EnhancedError) IsReported() bool {
	ee.mu.RLock()
	defer ee.mu.RUnlock()
	return ee.reported
}

// ErrorBuilder provides a fluent interface for building an EnhancedError.
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	context   map[string]any
}

// New starts a builder wrapping err. err may be nil when the error is
// purely descriptive (see Context/Build).
func New(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// Newf starts a builder with a formatted message.
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// Build finalizes the EnhancedError, reporting it to the optional
// telemetry sink registered via SetReporter.
func (eb *ErrorBuilder) Build() *EnhancedError {
	ee := &EnhancedError{
		Err:       eb.err,
		Component: eb.component,
		Category:  eb.category,
		Context:   eb.context,
		Timestamp: time.Now(),
	}
	if ee.Component == "" {
		ee.Component = ComponentUnknown
	}
	if ee.Category == "" {
		ee.Category = CategoryGeneric
	}
	reportToSink(ee)
	return ee
}

// Reporter is an optional sink for captured errors (e.g. Sentry).
type Reporter interface {
	CaptureError(err *EnhancedError)
}

var (
	reporterMu sync.RWMutex
	reporter   Reporter
)

// SetReporter registers a Reporter that every Build()-ed error is sent to.
// Pass nil to disable reporting.
func SetReporter(r Reporter) {
	reporterMu.Lock()
	defer reporterMu.Unlock()
	reporter = r
}

func reportToSink(ee *EnhancedError) {
	reporterMu.RLock()
	r := reporter
	reporterMu.RUnlock()
	if r == nil {
		return
	}
	r.CaptureError(ee)
	ee.MarkReported()
}

// Standard library passthroughs so this package is a drop-in for "errors".

func NewStd(text string) error             { return stderrors.New(text) }
func Is(err, target error) bool            { return stderrors.Is(err, target) }
func As(err error, target any) bool        { return stderrors.As(err, target) }
func Unwrap(err error) error               { return stderrors.Unwrap(err) }
func Join(errs ...error) error             { return stderrors.Join(errs...) }

// IsCategory reports whether err is an EnhancedError with the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var ee *EnhancedError
	return As(err, &ee) && ee.Category == category
}
