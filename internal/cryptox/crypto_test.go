package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptString_RoundTrip(t *testing.T) {
	key := DeriveKey([]byte("passphrase"), []byte("salt1234"))

	ct, err := EncryptString("ibuprofen 100mg at 14:00", key)
	require.NoError(t, err)
	assert.NotEqual(t, "ibuprofen 100mg at 14:00", ct)

	pt, err := DecryptString(ct, key)
	require.NoError(t, err)
	assert.Equal(t, "ibuprofen 100mg at 14:00", pt)
}

func TestEncryptString_NoncesDiffer(t *testing.T) {
	key := DeriveKey([]byte("passphrase"), []byte("salt1234"))

	a, err := EncryptString("same text", key)
	require.NoError(t, err)
	b, err := EncryptString("same text", key)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptString_WrongKeyFails(t *testing.T) {
	key := DeriveKey([]byte("passphrase"), []byte("salt1234"))
	other := DeriveKey([]byte("different"), []byte("salt1234"))

	ct, err := EncryptString("secret", key)
	require.NoError(t, err)

	_, err = DecryptString(ct, other)
	require.Error(t, err)
}

func TestDecryptString_MalformedInput(t *testing.T) {
	key := DeriveKey([]byte("passphrase"), []byte("salt1234"))

	_, err := DecryptString("%%%not-base64%%%", key)
	require.Error(t, err)

	_, err = DecryptString("AAAA", key)
	require.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestDeriveKey_Deterministic(t *testing.T) {
	a := DeriveKey([]byte("p"), []byte("s"))
	b := DeriveKey([]byte("p"), []byte("s"))
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
}
