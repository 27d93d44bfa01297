package state

import (
	"fmt"
	"net/netip"
	"strings"
	"testing"
	"time"
)

func SampleNetwork(t *testing.T, numRouters int, fullyConnected bool) (CentralCfg, map[string]RyPrivateKey) {
	t.Helper()
	keyStore := make(map[string]RyPrivateKey)
	cfg := CentralCfg{}

	routers := make([]string, numRouters)

	for idx := range numRouters {
		router := fmt.Sprintf("router-%d", idx)
		routers[idx] = router
		keyStore[router] = GenerateKey()
		cfg.Routers = append(cfg.Routers, RouterCfg{
			Id:     NodeId(router),
			Name:   Name(fmt.Sprintf("/sample/router-%d", idx)),
			PubKey: keyStore[router].Pubkey(),
			Endpoints: []netip.AddrPort{
				netip.MustParseAddrPort(fmt.Sprintf("192.168.0.%d:25565", idx)),
			},
		})
	}

	cfg.Timestamp = time.Now().UnixNano()
	if fullyConnected {
		cfg.Graph = append(cfg.Graph, fmt.Sprintf("routers = %s", strings.Join(routers, ",")))
		cfg.Graph = append(cfg.Graph, "routers, routers")
	} else {
		for idx := 1; idx < numRouters; idx++ {
			cfg.Graph = append(cfg.Graph, fmt.Sprintf("%s, %s", routers[idx-1], routers[idx]))
		}
	}

	ExpandCentralConfig(&cfg)
	return cfg, keyStore
}

func SampleEnv(cfg *CentralCfg, keyStore map[string]RyPrivateKey, node NodeId) *Env {
	return &Env{
		DispatchChannel: nil,
		CentralCfg:      *cfg,
		LocalCfg: LocalCfg{
			Key: keyStore[string(node)],
			Id:  node,
		},
		Context: nil,
		Cancel:  nil,
		Log:     nil,
	}
}
