package state

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseGraph_SimpleGraph(t *testing.T) {
	nodes := []string{"1", "2", "3", "4", "5"}
	input := `1, 2
3, 4
1,3,5`
	pairs, err := ParseGraph(strings.Split(input, "\n"), nodes)
	assert.NoError(t, err)
	assert.ElementsMatch(t, pairs, []Pair[NodeId, NodeId]{
		{"1", "2"},
		{"3", "4"},
		{"1", "3"},
		{"3", "5"},
		{"1", "5"},
	})
}

func TestParseGraph_Groups(t *testing.T) {
	nodes := []string{"1", "2", "3", "4", "5", "6", "7"}
	input := `a = 1,2
b=3,,,4
c=5,6
d=a,b
d,d
7,d`
	pairs, err := ParseGraph(strings.Split(input, "\n"), nodes)
	assert.NoError(t, err)
	assert.ElementsMatch(t, pairs, []Pair[NodeId, NodeId]{
		// d,d
		{"1", "2"},
		{"1", "3"},
		{"1", "4"},
		{"2", "3"},
		{"2", "4"},
		{"3", "4"},
		// 7,d
		{"1", "7"},
		{"2", "7"},
		{"3", "7"},
		{"4", "7"},
	})
}

func TestParseGraph_Cycle(t *testing.T) {
	nodes := []string{}
	input := `a = b
b = c
c = a`
	_, err := ParseGraph(strings.Split(input, "\n"), nodes)
	assert.ErrorContains(t, err, "cycle detected in graph: [a b c]")
}

func TestGetPeers(t *testing.T) {
	cfg, _ := SampleNetwork(t, 4, false)
	peers, err := cfg.GetPeers("router-1")
	assert.NoError(t, err)
	assert.ElementsMatch(t, peers, []NodeId{"router-0", "router-2"})
}

func TestGetPeers_FullyConnected(t *testing.T) {
	cfg, _ := SampleNetwork(t, 5, true)
	peers, err := cfg.GetPeers("router-3")
	assert.NoError(t, err)
	assert.Len(t, peers, 4)
	assert.NotContains(t, peers, NodeId("router-3"))
}

func TestExpandCentralConfig_Defaults(t *testing.T) {
	cfg := CentralCfg{
		Routers: []RouterCfg{{Id: "a", Name: "/net/a"}},
	}
	ExpandCentralConfig(&cfg)
	assert.Equal(t, ProbeInterval, cfg.Hello.ProbeInterval)
	assert.Equal(t, ProbeLifetime, cfg.Hello.ProbeLifetime)
	assert.Equal(t, RetryLimit, cfg.Hello.RetryLimit)
	assert.Equal(t, HistoryCapacity, cfg.Hello.HistoryCapacity)
	assert.Equal(t, RttWeight, cfg.Hello.CostModel.RttWeight)
	assert.Equal(t, LoadWeight, cfg.Hello.CostModel.LoadWeight)
	assert.Equal(t, StabilityWeight, cfg.Hello.CostModel.StabilityWeight)
	assert.Equal(t, CostClampMin, cfg.Hello.CostModel.ClampMin)
	assert.Equal(t, CostClampMax, cfg.Hello.CostModel.ClampMax)
	assert.Equal(t, DefaultLinkCost, cfg.Routers[0].Cost)
}

func TestExpandCentralConfig_KeepsExplicitValues(t *testing.T) {
	cfg := CentralCfg{
		Hello: HelloCfg{
			ProbeInterval: 45 * time.Second,
			CostModel: CostModelCfg{
				RttWeight: 1.0,
			},
		},
	}
	ExpandCentralConfig(&cfg)
	assert.Equal(t, 45*time.Second, cfg.Hello.ProbeInterval)
	// weights are defaulted as a block, a single non-zero weight keeps the rest at zero
	assert.Equal(t, 1.0, cfg.Hello.CostModel.RttWeight)
	assert.Equal(t, 0.0, cfg.Hello.CostModel.LoadWeight)
	assert.Equal(t, 0.0, cfg.Hello.CostModel.StabilityWeight)
}

func TestRouterName(t *testing.T) {
	cfg, ks := SampleNetwork(t, 3, true)
	env := SampleEnv(&cfg, ks, "router-1")
	assert.Equal(t, Name("/sample/router-1"), env.RouterName())
}
