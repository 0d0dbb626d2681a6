package ssdp

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoop_ZeroIntervalNeverCallsSearch(t *testing.T) {
	d := New("", nil)
	var calls atomic.Int32
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	d.Loop(ctx, 0, func([]Announcement) { calls.Add(1) })
	assert.Zero(t, calls.Load())
}
