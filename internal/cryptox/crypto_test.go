package cryptox

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveKey(password, salt)
	key2 := DeriveKey(password, salt)

	assert.Equal(t, key1, key2)
	// pins the argon2id parameters
	assert.Equal(t, "34f7a1c64df63ab1ad5b5ee06e64db5713b35f81839823304db63e8e5e6a6a39", hex.EncodeToString(key1))
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")
	assert.NotEqual(t, DeriveKey(password, []byte("salt-1")), DeriveKey(password, []byte("salt-2")))
}

func TestRandomBytes(t *testing.T) {
	a, err := RandomBytes(16)
	require.NoError(t, err)
	b, err := RandomBytes(16)
	require.NoError(t, err)

	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal([]byte("abc"), []byte("abc")))
	assert.False(t, Equal([]byte("abc"), []byte("abd")))
	assert.False(t, Equal([]byte("abc"), []byte("abcd")))
}

func TestWipe(t *testing.T) {
	b := []byte("password")
	Wipe(b)
	assert.Equal(t, make([]byte, 8), b)

	assert.NotPanics(t, func() { Wipe(nil) })
}
