package state

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/goccy/go-yaml"
	"golang.org/x/crypto/chacha20poly1305"
)

func SealBundle(data []byte, key []byte) ([]byte, error) {
	ahead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	_, err = rand.Read(nonce)
	if err != nil {
		return nil, err
	}
	cipherText := ahead.Seal(nil, nonce, data, nil)
	return append(nonce, cipherText...), nil
}

func OpenBundle(data []byte, key []byte) ([]byte, error) {
	if len(data) < chacha20poly1305.NonceSizeX {
		return nil, errors.New("invalid bundle, too small")
	}
	ahead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := data[:chacha20poly1305.NonceSizeX]
	cipherText := data[chacha20poly1305.NonceSizeX:]
	return ahead.Open(nil, nonce, cipherText, nil)
}

// BundleConfig first signs the config with the root private key, ensuring the
// authenticity, then encrypts the message using the bytes of the root public
// key as the shared key, offering some level of privacy. (assuming the root
// public key is not shared widely)
func BundleConfig(config string, rootKey RyPrivateKey) (string, error) {
	cfg := CentralCfg{}
	err := yaml.Unmarshal([]byte(config), &cfg)
	if err != nil {
		return "", err
	}
	ExpandCentralConfig(&cfg)
	err = CentralConfigValidator(&cfg)
	if err != nil {
		return "", err
	}
	cfg.Timestamp = time.Now().UnixNano()

	plainText, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	bundle, err := SignBundle(plainText, rootKey)
	if err != nil {
		return "", err
	}
	pub := rootKey.Pubkey()
	bundle, err = SealBundle(bundle, pub[:])
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(bundle), nil
}

func UnbundleConfig(bundleStr string, pubKey RyPublicKey) (*CentralCfg, error) {
	bundle, err := base64.StdEncoding.DecodeString(bundleStr)
	if err != nil {
		return nil, err
	}
	bundle, err = OpenBundle(bundle, pubKey[:])
	if err != nil {
		return nil, err
	}
	bundle, err = VerifyBundle(bundle, pubKey)
	if err != nil {
		return nil, err
	}

	cfg := &CentralCfg{}
	err = yaml.Unmarshal(bundle, cfg)
	if err != nil {
		return nil, err
	}
	ExpandCentralConfig(cfg)
	err = CentralConfigValidator(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
