package conf

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	store, err := Load(dir, 1)
	require.NoError(t, err)

	got := store.Get()
	assert.Equal(t, Default(1), got)
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	store, err := Load(dir, 2)
	require.NoError(t, err)

	updated := store.Get().Clone()
	updated.ServerPort = 6000
	updated.StreamFormat = FormatFLAC
	updated.StreamSizePolicy = StreamSizeNoneChunked
	updated.RememberedRenderers = []RememberedRenderer{
		{FriendlyName: "Living Room", Location: "http://10.0.0.5:1400/desc.xml", AutoResume: true},
	}
	store.Update(updated)
	require.NoError(t, store.Save())

	reloaded, err := Load(dir, 2)
	require.NoError(t, err)
	got := reloaded.Get()

	assert.Equal(t, 6000, got.ServerPort)
	assert.Equal(t, FormatFLAC, got.StreamFormat)
	require.Len(t, got.RememberedRenderers, 1)
	assert.Equal(t, "Living Room", got.RememberedRenderers[0].FriendlyName)
}

func TestLoad_CorruptFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := configPath(dir, 3)
	require.NoError(t, writeFile(path, "this is not valid = = toml"))

	store, err := Load(dir, 3)
	require.NoError(t, err)
	assert.Equal(t, Default(3), store.Get())
}

func TestLoad_InvalidPersistedValueFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := configPath(dir, 4)
	require.NoError(t, writeFile(path, "server_port = 999999\n"))

	store, err := Load(dir, 4)
	require.NoError(t, err)
	assert.Equal(t, Default(4), store.Get())
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
