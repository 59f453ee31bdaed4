package hutch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashWithArgon(t *testing.T) {
	hash := HashWithArgon("turbo-password", "seasoning-salt", 1, 1)
	assert.Len(t, hash, 32)

	again := HashWithArgon("turbo-password", "seasoning-salt", 1, 1)
	assert.Equal(t, hash, again)

	different := HashWithArgon("turbo-password", "other-salt", 1, 1)
	assert.NotEqual(t, hash, different)

	assert.Nil(t, HashWithArgon("", "salt", 1, 1))
	assert.Nil(t, HashWithArgon("password", "", 1, 1))
}

func TestEncryptDecryptWithAes(t *testing.T) {
	key := HashWithArgon("turbo-password", "seasoning-salt", 1, 1)
	plaintext := RandomBytes(256)

	ciphertext, err := EncryptWithAes(plaintext, key, 12)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := DecryptWithAes(ciphertext, key, 12)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestDecryptWithAesRejectsTampering(t *testing.T) {
	key := HashWithArgon("turbo-password", "seasoning-salt", 1, 1)

	ciphertext, err := EncryptWithAes([]byte("payload"), key, 12)
	require.NoError(t, err)

	ciphertext[len(ciphertext)-1] ^= 0xFF
	_, err = DecryptWithAes(ciphertext, key, 12)
	assert.Error(t, err)
}

func TestEncryptWithAesRejectsEmptyInputs(t *testing.T) {
	key := HashWithArgon("turbo-password", "seasoning-salt", 1, 1)

	_, err := EncryptWithAes(nil, key, 12)
	assert.Error(t, err)

	_, err = EncryptWithAes([]byte("payload"), nil, 12)
	assert.Error(t, err)
}

func TestRandomString(t *testing.T) {
	first := RandomString(64)
	assert.Len(t, first, 64)

	second := RandomString(64)
	assert.Len(t, second, 64)
	assert.NotEqual(t, first, second)
}
