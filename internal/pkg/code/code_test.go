package code

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVerificationCode_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		c, err := NewVerificationCode()
		require.NoError(t, err)
		require.Len(t, c, 6)
		for _, r := range c {
			assert.True(t, r >= '0' && r <= '9', "code %q contains non-digit", c)
		}
	}
}

func TestNewHandoffCode_Format(t *testing.T) {
	c, err := NewHandoffCode()
	require.NoError(t, err)
	assert.Len(t, c, 32)
	_, err = hex.DecodeString(c)
	assert.NoError(t, err)
}

func TestNewHandoffCode_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		c, err := NewHandoffCode()
		require.NoError(t, err)
		require.False(t, seen[c], "duplicate handoff code")
		seen[c] = true
	}
}
