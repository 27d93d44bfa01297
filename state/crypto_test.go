package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKey(t *testing.T) {
	key := GenerateKey()
	pub := key.Pubkey()
	_, err := pub.MarshalText()
	assert.NoError(t, err)
}

func TestSignVerify(t *testing.T) {
	key := GenerateKey()
	data := []byte("/net/alpha/rayon/hello/net/beta/v=1")
	sig, err := key.Sign(data)
	assert.NoError(t, err)
	assert.True(t, key.Pubkey().Verify(data, sig))
}

func TestVerify_WrongKey(t *testing.T) {
	key := GenerateKey()
	other := GenerateKey()
	data := []byte("hello")
	sig, err := key.Sign(data)
	assert.NoError(t, err)
	assert.False(t, other.Pubkey().Verify(data, sig))
}

func TestVerify_TamperedData(t *testing.T) {
	key := GenerateKey()
	sig, err := key.Sign([]byte("hello"))
	assert.NoError(t, err)
	assert.False(t, key.Pubkey().Verify([]byte("hellp"), sig))
	assert.False(t, key.Pubkey().Verify([]byte("hello"), sig[:10]))
}

func TestSignVerifyBundle(t *testing.T) {
	key := GenerateKey()
	bundle, err := SignBundle([]byte("payload"), key)
	assert.NoError(t, err)
	plain, err := VerifyBundle(bundle, key.Pubkey())
	assert.NoError(t, err)
	assert.Equal(t, []byte("payload"), plain)
}

func TestVerifyBundle_Invalid(t *testing.T) {
	key := GenerateKey()
	_, err := VerifyBundle([]byte("short"), key.Pubkey())
	assert.ErrorContains(t, err, "too short")
}
