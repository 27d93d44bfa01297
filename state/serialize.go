package state

import (
	"encoding/base64"
	"fmt"
)

func errKeyLength(got, want int) error {
	return fmt.Errorf("invalid key length %d, expected %d", got, want)
}

func (k RyPrivateKey) MarshalText() ([]byte, error) {
	return []byte(base64.StdEncoding.EncodeToString(k[:])), nil
}
func (k RyPublicKey) MarshalText() ([]byte, error) {
	return []byte(base64.StdEncoding.EncodeToString(k[:])), nil
}
func (k *RyPrivateKey) UnmarshalText(text []byte) error {
	data, err := base64.StdEncoding.DecodeString(string(text))
	if err != nil {
		return err
	}
	if len(data) != len(k) {
		return errKeyLength(len(data), len(k))
	}
	*k = RyPrivateKey(data)
	return nil
}
func (k *RyPublicKey) UnmarshalText(text []byte) error {
	data, err := base64.StdEncoding.DecodeString(string(text))
	if err != nil {
		return err
	}
	if len(data) != len(k) {
		return errKeyLength(len(data), len(k))
	}
	*k = RyPublicKey(data)
	return nil
}
