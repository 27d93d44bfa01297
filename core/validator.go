package core

import (
	"fmt"

	"github.com/encodeous/rayon/state"
)

// keychainValidator authenticates responses against the central config: the
// signer is the router the probe targeted, so its public key is looked up by
// the response name's target prefix. Verification runs off the main thread.
type keychainValidator struct {
	env *state.Env
}

func NewKeychainValidator(env *state.Env) Validator {
	return &keychainValidator{env: env}
}

func (v *keychainValidator) Validate(res Response, onValid func(Response), onFail func(Response, error)) {
	go func() {
		_, target, _, _, err := state.ParseHelloResponse(res.Name)
		if err != nil {
			onFail(res, err)
			return
		}
		router := v.env.GetRouterByName(target)
		if router == nil {
			onFail(res, fmt.Errorf("no configured router named %q", target))
			return
		}
		if !router.PubKey.Verify(signedResponseBytes(res.Name, res.Payload), res.Sig) {
			onFail(res, fmt.Errorf("signature verification failed for %q", res.Name))
			return
		}
		onValid(res)
	}()
}
