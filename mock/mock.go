package mock

import (
	"fmt"
	"net/netip"

	"github.com/encodeous/rayon/state"
)

// MockCfg builds a five-router network with full key material, suitable for
// in-memory tests.
func MockCfg() (state.CentralCfg, []state.LocalCfg, error) {
	mockCentralCfg := state.CentralCfg{
		Routers: make([]state.RouterCfg, 0),
		Graph: []string{
			"bob, jeb",
			"bob, kat",
			"bob, eve",
			"jeb, kat",
			"kat, ada",
			"kat, eve",
			"eve, ada",
		},
	}
	basePort := 23000
	names := []string{
		"bob",
		"jeb",
		"kat",
		"eve",
		"ada",
	}
	locals := make([]state.LocalCfg, 0)
	for i, node := range names {
		key := state.GenerateKey()
		ep := netip.MustParseAddrPort(fmt.Sprintf("127.0.0.1:%d", basePort+i))
		mockCentralCfg.Routers = append(mockCentralCfg.Routers, state.RouterCfg{
			Id:        state.NodeId(node),
			Name:      state.Name("/mock/" + node),
			PubKey:    key.Pubkey(),
			Endpoints: []netip.AddrPort{ep},
		})
		locals = append(locals, state.LocalCfg{
			Key:  key,
			Id:   state.NodeId(node),
			Bind: ep,
		})
	}
	state.ExpandCentralConfig(&mockCentralCfg)
	err := state.CentralConfigValidator(&mockCentralCfg)
	if err != nil {
		return state.CentralCfg{}, nil, err
	}
	return mockCentralCfg, locals, nil
}
