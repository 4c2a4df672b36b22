package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressionModeString(t *testing.T) {
	assert.Equal(t, "NONE", CompressionModeNone.String())
	assert.Equal(t, "FILE", CompressionModeFile.String())
	assert.Equal(t, "MESSAGE", CompressionModeMessage.String())
	assert.Equal(t, "UNKNOWN", CompressionMode(0).String())
	assert.Equal(t, "UNKNOWN", CompressionMode(9).String())
}

func TestCompressionModeFromString(t *testing.T) {
	for _, mode := range []CompressionMode{
		CompressionModeNone, CompressionModeFile, CompressionModeMessage,
	} {
		parsed, err := CompressionModeFromString(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}

	// The empty string defaults to no compression.
	parsed, err := CompressionModeFromString("")
	require.NoError(t, err)
	assert.Equal(t, CompressionModeNone, parsed)

	_, err = CompressionModeFromString("file")
	assert.Error(t, err)
}

func TestCompressionModeIsValid(t *testing.T) {
	assert.False(t, CompressionMode(0).IsValid())
	assert.True(t, CompressionModeNone.IsValid())
	assert.True(t, CompressionModeFile.IsValid())
	assert.True(t, CompressionModeMessage.IsValid())
	assert.False(t, CompressionMode(4).IsValid())
}
