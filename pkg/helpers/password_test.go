package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPasswordAndCompare(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	require.NotEqual(t, "password123", hash)
	require.True(t, strings.HasPrefix(hash, "$2"))

	require.True(t, CompareHashAndPassword(hash, "password123"))
	require.False(t, CompareHashAndPassword(hash, "password124"))
	require.False(t, CompareHashAndPassword("", "password123"))
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("password123")
	require.NoError(t, err)
	h2, err := HashPassword("password123")
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)
}
