package conf

import swyherrors "github.com/swyh-go/swyh-go/internal/errors"

// Validate checks a Settings snapshot for internally-inconsistent values
// before it's accepted by Load or an operator-triggered reload.
func Validate(s *Settings) error {
	if s.ServerPort < 1 || s.ServerPort > 65535 {
		return swyherrors.Newf("server_port %d out of range", s.ServerPort).
			Component("conf").
			Category(swyherrors.CategoryValidation).
			Build()
	}

	switch s.StreamFormat {
	case FormatLPCM, FormatWAV, FormatRF64, FormatFLAC:
	default:
		return swyherrors.Newf("unknown stream_format %q", s.StreamFormat).
			Component("conf").
			Category(swyherrors.CategoryValidation).
			Build()
	}

	if s.BitDepth != 16 && s.BitDepth != 24 {
		return swyherrors.Newf("bit_depth must be 16 or 24, got %d", s.BitDepth).
			Component("conf").
			Category(swyherrors.CategoryValidation).
			Build()
	}

	switch s.StreamSizePolicy {
	case StreamSizeNoneChunked, StreamSizeU32MaxChunked, StreamSizeU64MaxChunked,
		StreamSizeU32MaxNotChunked, StreamSizeU64MaxNotChunked:
	default:
		return swyherrors.Newf("unknown stream_size_policy %q", s.StreamSizePolicy).
			Component("conf").
			Category(swyherrors.CategoryValidation).
			Build()
	}

	if s.StreamFormat == FormatFLAC && s.StreamSizePolicy != StreamSizeNoneChunked {
		return swyherrors.Newf("flac streaming requires stream_size_policy=%s, got %q", StreamSizeNoneChunked, s.StreamSizePolicy).
			Component("conf").
			Category(swyherrors.CategoryValidation).
			Build()
	}

	if s.CaptureTimeoutMS < 250 {
		return swyherrors.Newf("capture_timeout_ms %d too small, minimum 250", s.CaptureTimeoutMS).
			Component("conf").
			Category(swyherrors.CategoryValidation).
			Build()
	}

	if s.StreamFormat == FormatFLAC && !s.InjectSilence {
		return swyherrors.New(nil).
			Context("error", "flac streaming requires inject_silence=true (limit_min_bitrate needs a continuous sample stream)").
			Component("conf").
			Category(swyherrors.CategoryValidation).
			Build()
	}

	if s.SSDPIntervalSeconds < 0 {
		return swyherrors.Newf("ssdp_interval_seconds cannot be negative, got %d", s.SSDPIntervalSeconds).
			Component("conf").
			Category(swyherrors.CategoryValidation).
			Build()
	}

	return nil
}
