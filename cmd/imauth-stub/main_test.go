package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for _, mode := range []string{"accept", "silent", "reset", "hangup", "garbage"} {
		b, err := parseMode(mode, map[string]string{"alice": "secret"})
		require.NoError(t, err, mode)
		assert.NotNil(t, b, mode)
	}

	_, err := parseMode("chaos", nil)
	assert.Error(t, err)
}
