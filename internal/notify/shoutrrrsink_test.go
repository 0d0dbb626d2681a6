package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShoutrrrSink_NotifyWithEmptyURLIsNoop(t *testing.T) {
	s := NewShoutrrrSink("", nil)
	assert.NotPanics(t, func() { s.Notify("swyh-go: renderer unreachable: Office Speaker") })
}

func TestShoutrrrSink_NotifyWithUnsupportedSchemeLogsAndSwallows(t *testing.T) {
	s := NewShoutrrrSink("notaservice://nope", nil)
	assert.NotPanics(t, func() { s.Notify("swyh-go: capture ended (device lost)") })
}
