package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifySecret(t *testing.T) {
	hash, err := HashSecret("CorrectHorse1")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.NotContains(t, hash, "CorrectHorse1")
	assert.True(t, strings.HasPrefix(hash, "$2"))

	assert.True(t, VerifySecret(hash, "CorrectHorse1"))
	assert.False(t, VerifySecret(hash, "CorrectHorse2"))
	assert.False(t, VerifySecret("", "CorrectHorse1"))
}

func TestHashSecretIsSalted(t *testing.T) {
	first, err := HashSecret("SameSecret1")
	require.NoError(t, err)
	second, err := HashSecret("SameSecret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
