package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(" Info ")
	require.NoError(t, err)
	assert.Equal(t, InfoLevel, level)

	level, err = ParseLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, WarnLevel, level)
	assert.Equal(t, "warn", level.String())

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
