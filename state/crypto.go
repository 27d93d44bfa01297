package state

import (
	"crypto"
	"crypto/rand"
	"errors"

	"go.step.sm/crypto/x25519"
)

type RyPrivateKey [x25519.PrivateKeySize]byte
type RyPublicKey [x25519.PublicKeySize]byte

func GenerateKey() RyPrivateKey {
	_, key, err := x25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return RyPrivateKey(key)
}

func (k RyPrivateKey) Pubkey() RyPublicKey {
	val, err := x25519.PrivateKey(k[:]).PublicKey()
	if err != nil {
		panic(err)
	}
	return RyPublicKey(val)
}

// Sign signs data with the node's x25519 signing key.
func (k RyPrivateKey) Sign(data []byte) ([]byte, error) {
	return x25519.PrivateKey(k[:]).Sign(rand.Reader, data, crypto.Hash(0))
}

// Verify checks sig over data against the public key.
func (k RyPublicKey) Verify(data, sig []byte) bool {
	if len(sig) != x25519.SignatureSize {
		return false
	}
	return x25519.Verify(k[:], data, sig)
}

func SignBundle(data []byte, key RyPrivateKey) ([]byte, error) {
	sig, err := key.Sign(data)
	if err != nil {
		return nil, err
	}
	return append(sig, data...), nil
}

func VerifyBundle(data []byte, key RyPublicKey) ([]byte, error) {
	if len(data) < x25519.SignatureSize {
		return nil, errors.New("invalid signature: too short")
	}
	signature := data[:x25519.SignatureSize]
	plainText := data[x25519.SignatureSize:]
	if !key.Verify(plainText, signature) {
		return nil, errors.New("invalid signature")
	}
	return plainText, nil
}
