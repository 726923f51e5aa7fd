package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken()
	require.NoError(t, err)
	b, err := GenerateToken()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, TokenPrefix))
	assert.Len(t, a, len(TokenPrefix)+2*TokenLength)
	assert.NotEqual(t, a, b)
}

func TestHashToken(t *testing.T) {
	hash, err := HashToken("secret")
	require.NoError(t, err)
	assert.True(t, IsHash(hash))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret")))

	_, err = HashToken("")
	assert.Error(t, err)
}

func TestVerifierPlain(t *testing.T) {
	v := NewVerifier("secret")
	assert.True(t, v.Verify("secret"))
	assert.False(t, v.Verify("Secret"))
	assert.False(t, v.Verify(""))
}

func TestVerifierHashed(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	v := NewVerifier(string(hash))

	assert.False(t, v.Verify(string(hash)))
	assert.True(t, v.Verify("secret"))
	assert.Len(t, v.accepted, 1)
	assert.True(t, v.Verify("secret"))
	assert.False(t, v.Verify("wrong"))
	assert.Len(t, v.accepted, 1)
}

func TestVerifierEmptyConfigured(t *testing.T) {
	assert.False(t, NewVerifier("").Verify("anything"))
}
