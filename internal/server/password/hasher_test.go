package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewBcryptHasher_CostBounds(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MinCost - 1)
	assert.Error(t, err)

	_, err = NewBcryptHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)

	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotNil(t, h)
}

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := h.Hash("P@ssw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, "P@ssw0rd", hash)

	ok, err := h.Verify(hash, "P@ssw0rd")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(hash, "p@ssw0rd")
	require.NoError(t, err)
	assert.False(t, ok, "mismatch is reported as false, not as an error")
}

func TestBcryptHasher_VerifyCorruptHash(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := h.Verify("not-a-bcrypt-hash", "whatever")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestBcryptHasher_HashTooLong(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	_, err = h.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrTooLong)

	_, err = h.Hash(strings.Repeat("a", MaxPasswordBytes))
	assert.NoError(t, err)
}
