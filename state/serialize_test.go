package state

import (
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
)

func TestSerialize(t *testing.T) {
	cfg, ks := SampleNetwork(t, 5, true)
	env := SampleEnv(&cfg, ks, "router-1")

	// test node local config
	x1, err := yaml.Marshal(env.LocalCfg)
	assert.NoError(t, err)
	y1 := LocalCfg{}
	err = yaml.Unmarshal(x1, &y1)
	assert.NoError(t, err)
	assert.EqualValues(t, env.LocalCfg, y1)

	// test central config
	x2, err := yaml.Marshal(env.CentralCfg)
	assert.NoError(t, err)
	y2 := CentralCfg{}
	err = yaml.Unmarshal(x2, &y2)
	assert.NoError(t, err)
	assert.EqualValues(t, env.CentralCfg, y2)
}

func TestKeyText_RoundTrip(t *testing.T) {
	key := GenerateKey()
	txt, err := key.MarshalText()
	assert.NoError(t, err)
	back := RyPrivateKey{}
	assert.NoError(t, back.UnmarshalText(txt))
	assert.Equal(t, key, back)

	pub := key.Pubkey()
	txt, err = pub.MarshalText()
	assert.NoError(t, err)
	backPub := RyPublicKey{}
	assert.NoError(t, backPub.UnmarshalText(txt))
	assert.Equal(t, pub, backPub)
}

func TestKeyText_Invalid(t *testing.T) {
	key := RyPrivateKey{}
	assert.Error(t, key.UnmarshalText([]byte("not base64!!")))
	assert.ErrorContains(t, key.UnmarshalText([]byte("aGVsbG8=")), "invalid key length")
}
