package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_DefaultsArePicky(t *testing.T) {
	assert.NoError(t, Validate(Default(0)))
}

func TestValidate_RejectsBadPort(t *testing.T) {
	s := Default(0)
	s.ServerPort = 0
	assert.Error(t, Validate(s))
}

func TestValidate_RejectsFlacWithPolicyOtherThanNoneChunked(t *testing.T) {
	s := Default(0)
	s.StreamFormat = FormatFLAC
	s.StreamSizePolicy = StreamSizeU64MaxNotChunked
	assert.Error(t, Validate(s))
}

func TestValidate_RejectsFlacWithoutSilenceInjection(t *testing.T) {
	s := Default(0)
	s.StreamFormat = FormatFLAC
	s.StreamSizePolicy = StreamSizeNoneChunked
	s.InjectSilence = false
	assert.Error(t, Validate(s))
}

func TestValidate_RejectsUnknownBitDepth(t *testing.T) {
	s := Default(0)
	s.BitDepth = 32
	assert.Error(t, Validate(s))
}
