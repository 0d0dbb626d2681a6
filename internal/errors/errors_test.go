package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Defaults(t *testing.T) {
	err := New(NewStd("boom")).Build()
	require.Error(t, err)
	assert.Equal(t, ComponentUnknown, err.Component)
	assert.Equal(t, CategoryGeneric, err.Category)
	assert.Equal(t, "boom", err.Error())
}

func TestBuilder_ContextAndCategory(t *testing.T) {
	err := Newf("renderer %s unreachable", "sonos-1").
		Component("renderer").
		Category(CategoryRenderer).
		Context("location", "http://10.0.0.5:1400/desc.xml").
		Build()

	assert.Equal(t, "renderer", err.Component)
	assert.Equal(t, CategoryRenderer, err.Category)
	assert.Equal(t, "http://10.0.0.5:1400/desc.xml", err.GetContext()["location"])
	assert.True(t, IsCategory(err, CategoryRenderer))
	assert.False(t, IsCategory(err, CategorySSDP))
}

func TestNilUnderlyingError(t *testing.T) {
	err := New(nil).Context("error", "no matching audio device found").Build()
	assert.Equal(t, "no matching audio device found", err.Error())
}

type recordingReporter struct{ captured []*EnhancedError }

func (r *recordingReporter) CaptureError(err *EnhancedError) { r.captured = append(r.captured, err) }

func TestSetReporter(t *testing.T) {
	rep := &recordingReporter{}
	SetReporter(rep)
	defer SetReporter(nil)

	err := New(NewStd("oops")).Build()
	require.Len(t, rep.captured, 1)
	assert.True(t, err.IsReported())
}
