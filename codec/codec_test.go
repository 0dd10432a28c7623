package codec

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var key = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecrypt(t *testing.T) {
	sealed, err := Encrypt(key, []byte("rvf_live_6b1d"))
	require.NoError(t, err)
	assert.NotContains(t, sealed, "rvf_live")

	plain, err := Decrypt(key, sealed)
	require.NoError(t, err)
	assert.Equal(t, "rvf_live_6b1d", string(plain))
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	a, err := Encrypt(key, []byte("same"))
	require.NoError(t, err)
	b, err := Encrypt(key, []byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptDetectsTampering(t *testing.T) {
	sealed, err := Encrypt(key, []byte("payload"))
	require.NoError(t, err)

	raw, err := base64.URLEncoding.DecodeString(sealed)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff

	_, err = Decrypt(key, base64.URLEncoding.EncodeToString(raw))
	assert.Error(t, err)
}

func TestRejectsBadKeyAndShortInput(t *testing.T) {
	_, err := Encrypt([]byte("short"), []byte("x"))
	assert.Error(t, err)

	_, err = Decrypt(key, base64.URLEncoding.EncodeToString([]byte("tiny")))
	assert.Error(t, err)
}
