package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swyh-go/swyh-go/internal/conf"
)

func TestApplyFlags_UnsetFlagsLeavePersistedValues(t *testing.T) {
	s := conf.Default(0)
	s.ServerPort = 5901
	f := &cliFlags{}

	applyFlags(s, f, func(string) bool { return false })

	assert.Equal(t, 5901, s.ServerPort)
	assert.Equal(t, conf.FormatLPCM, s.StreamFormat)
}

func TestApplyFlags_OverridesPersistedValuesWhenSet(t *testing.T) {
	s := conf.Default(0)
	f := &cliFlags{
		port:           5902,
		deviceSelector: "1",
		logLevel:       "debug",
		ssdpIntervalM:  2,
		bitDepth:       24,
		format:         "flac",
		netInterfaces:  "eth0,eth1",
		advertiseHost:  "192.168.1.50",
		upFrontBufferMS: 250,
	}

	applyFlags(s, f, func(string) bool { return true })

	assert.Equal(t, 5902, s.ServerPort)
	assert.Equal(t, "1", s.SelectedAudioSource)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, 120, s.SSDPIntervalSeconds)
	assert.Equal(t, 24, s.BitDepth)
	assert.Equal(t, conf.FormatFLAC, s.StreamFormat)
	assert.Equal(t, "eth0", s.NetworkInterface)
	assert.Equal(t, "192.168.1.50", s.AdvertiseHost)
	assert.Equal(t, 250, s.UpFrontBufferMS)
}

func TestApplyFlags_BoolFlagsRespectChangedPredicate(t *testing.T) {
	s := conf.Default(0)
	s.AutoReconnect = true
	s.AutoResume = true
	f := &cliFlags{autoReconnect: "false", autoResume: "false"}

	applyFlags(s, f, func(name string) bool { return name == "autoreconnect" })

	assert.False(t, s.AutoReconnect)
	assert.True(t, s.AutoResume)
}

func TestApplyFormatFlag_SplitsFormatAndStreamSize(t *testing.T) {
	s := conf.Default(0)
	applyFormatFlag(s, "wav+u64max-not-chunked")
	assert.Equal(t, conf.FormatWAV, s.StreamFormat)
	assert.Equal(t, conf.StreamSizeU64MaxNotChunked, s.StreamSizePolicy)
}

func TestApplyFormatFlag_WithoutStreamSizeLeavesPolicyUntouched(t *testing.T) {
	s := conf.Default(0)
	s.StreamSizePolicy = conf.StreamSizeU32MaxChunked
	applyFormatFlag(s, "flac")
	assert.Equal(t, conf.FormatFLAC, s.StreamFormat)
	assert.Equal(t, conf.StreamSizeU32MaxChunked, s.StreamSizePolicy)
}

func TestFirstCSVField_ReturnsTrimmedFirstEntry(t *testing.T) {
	assert.Equal(t, "eth0", firstCSVField("eth0, eth1, eth2"))
	assert.Equal(t, "eth0", firstCSVField("eth0"))
}

func TestLogLevelFromString_DefaultsToInfo(t *testing.T) {
	assert.Equal(t, "DEBUG", logLevelFromString("debug").String())
	assert.Equal(t, "INFO", logLevelFromString("").String())
	assert.Equal(t, "INFO", logLevelFromString("garbage").String())
}

func TestExitCodeFor_UnwrapsExitCodeError(t *testing.T) {
	wrapped := errors.New("boom")
	err := &exitCodeError{code: 2, err: wrapped}
	assert.Equal(t, 2, exitCodeFor(err))
}

func TestExitCodeFor_DefaultsToOneForPlainErrors(t *testing.T) {
	assert.Equal(t, 1, exitCodeFor(errors.New("plain")))
}
