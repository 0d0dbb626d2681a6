package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeDevices() []DeviceInfo {
	return []DeviceInfo{
		{Index: 0, Name: "Line In", IsDefault: true},
		{Index: 1, Name: "Stereo Mix"},
		{Index: 2, Name: "Stereo Mix"},
		{Index: 3, Name: "USB Microphone"},
	}
}

func TestResolveSelector_DefaultPicksDefaultDevice(t *testing.T) {
	d, err := ResolveSelector(fakeDevices(), "")
	require.NoError(t, err)
	assert.Equal(t, "Line In", d.Name)
}

func TestResolveSelector_ByIndex(t *testing.T) {
	d, err := ResolveSelector(fakeDevices(), "3")
	require.NoError(t, err)
	assert.Equal(t, "USB Microphone", d.Name)
}

func TestResolveSelector_ByNameWithDuplicateIndex(t *testing.T) {
	d, err := ResolveSelector(fakeDevices(), "Stereo Mix:1")
	require.NoError(t, err)
	assert.Equal(t, 2, d.Index)
}

func TestResolveSelector_ByNameFirstDuplicate(t *testing.T) {
	d, err := ResolveSelector(fakeDevices(), "Stereo Mix:0")
	require.NoError(t, err)
	assert.Equal(t, 1, d.Index)
}

func TestResolveSelector_NoMatch(t *testing.T) {
	_, err := ResolveSelector(fakeDevices(), "Nonexistent")
	assert.Error(t, err)
}

func TestResolveSelector_EmptyListNoDefault(t *testing.T) {
	_, err := ResolveSelector(nil, "")
	assert.Error(t, err)
}
