package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, CheckPasswordHash("hunter22", hash))
	assert.False(t, CheckPasswordHash("hunter23", hash))
	assert.False(t, CheckPasswordHash("", hash))
}

func TestHashIsSalted(t *testing.T) {
	h1, err := HashPassword("same password")
	require.NoError(t, err)
	h2, err := HashPassword("same password")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
