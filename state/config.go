package state

import (
	"fmt"
	"net/netip"
	"slices"
	"strings"
	"time"
)

// RouterCfg is the central representation of one router in the network.
type RouterCfg struct {
	Id        NodeId
	Name      Name // hierarchical router name, e.g. /net/alpha
	PubKey    RyPublicKey
	Endpoints []netip.AddrPort `yaml:",omitempty"`
	Cost      float64          `yaml:",omitempty"` // base cost of links to this router
}

// HelloCfg carries the liveness and cost-model tunables. Zero fields are
// filled with the package defaults by ExpandCentralConfig.
type HelloCfg struct {
	ProbeInterval   time.Duration `yaml:"probe_interval,omitempty"`   // valid range 30s-90s
	ProbeLifetime   time.Duration `yaml:"probe_lifetime,omitempty"`   // valid range 1s-15s
	RetryLimit      uint32        `yaml:"retry_limit,omitempty"`      // valid range 1-10
	HistoryCapacity int           `yaml:"history_capacity,omitempty"` // valid range 3-100
	CostModel       CostModelCfg  `yaml:"cost_model,omitempty"`
}

// CostModelCfg configures the load-aware cost calculator. Weights are not
// required to sum to 1.
type CostModelCfg struct {
	Enabled         bool    `yaml:",omitempty"`
	RttWeight       float64 `yaml:"rtt_weight,omitempty"`
	LoadWeight      float64 `yaml:"load_weight,omitempty"`
	StabilityWeight float64 `yaml:"stability_weight,omitempty"`
	ClampMin        float64 `yaml:"clamp_min,omitempty"` // lower clamp, x original cost
	ClampMax        float64 `yaml:"clamp_max,omitempty"` // upper clamp, x original cost
}

type CentralCfg struct {
	Routers   []RouterCfg
	Graph     []string
	Hello     HelloCfg `yaml:",omitempty"`
	Timestamp int64
}

// LocalCfg represents local node-level configuration
type LocalCfg struct {
	// Node signing key
	Key     RyPrivateKey
	Id      NodeId         // unique id for this node
	Bind    netip.AddrPort `yaml:",omitempty"` // transport bind address
	LogPath string         `yaml:"log_path,omitempty"`
}

func (e *CentralCfg) GetRouter(node NodeId) *RouterCfg {
	idx := slices.IndexFunc(e.Routers, func(cfg RouterCfg) bool {
		return cfg.Id == node
	})
	if idx == -1 {
		return nil
	}
	return &e.Routers[idx]
}

func (e *CentralCfg) GetRouterByName(name Name) *RouterCfg {
	idx := slices.IndexFunc(e.Routers, func(cfg RouterCfg) bool {
		return cfg.Name == name
	})
	if idx == -1 {
		return nil
	}
	return &e.Routers[idx]
}

func (e *CentralCfg) IsRouter(node NodeId) bool {
	return e.GetRouter(node) != nil
}

// GetPeers evaluates the graph and returns the neighbours of curId.
func (e *CentralCfg) GetPeers(curId NodeId) ([]NodeId, error) {
	allNodes := make([]string, 0, len(e.Routers))
	for _, node := range e.Routers {
		allNodes = append(allNodes, string(node.Id))
	}
	edges, err := ParseGraph(e.Graph, allNodes)
	if err != nil {
		return nil, err
	}
	nodes := make([]NodeId, 0)
	for _, edge := range edges {
		var neigh NodeId
		if edge.V1 == curId {
			neigh = edge.V2
		}
		if edge.V2 == curId {
			neigh = edge.V1
		}
		if neigh != curId && neigh != "" {
			nodes = append(nodes, neigh)
		}
	}
	return nodes, nil
}

// RouterName is the hierarchical name of the local router.
func (e *Env) RouterName() Name {
	cfg := e.GetRouter(e.Id)
	if cfg == nil {
		panic("local node " + string(e.Id) + " not present in central config")
	}
	return cfg.Name
}

// ExpandCentralConfig fills defaulted fields so the rest of the daemon never
// has to special-case zero values.
func ExpandCentralConfig(cfg *CentralCfg) {
	for idx := range cfg.Routers {
		if cfg.Routers[idx].Cost == 0 {
			cfg.Routers[idx].Cost = DefaultLinkCost
		}
	}
	h := &cfg.Hello
	if h.ProbeInterval == 0 {
		h.ProbeInterval = ProbeInterval
	}
	if h.ProbeLifetime == 0 {
		h.ProbeLifetime = ProbeLifetime
	}
	if h.RetryLimit == 0 {
		h.RetryLimit = RetryLimit
	}
	if h.HistoryCapacity == 0 {
		h.HistoryCapacity = HistoryCapacity
	}
	cm := &h.CostModel
	if cm.RttWeight == 0 && cm.LoadWeight == 0 && cm.StabilityWeight == 0 {
		cm.RttWeight = RttWeight
		cm.LoadWeight = LoadWeight
		cm.StabilityWeight = StabilityWeight
	}
	if cm.ClampMin == 0 {
		cm.ClampMin = CostClampMin
	}
	if cm.ClampMax == 0 {
		cm.ClampMax = CostClampMax
	}
}

func parseSymbolList(s string, validSymbols []string) ([]string, error) {
	spl := strings.Split(strings.TrimSpace(s), ",")
	line := make([]string, 0)
	for _, sym := range spl {
		x := strings.TrimSpace(sym)
		if x == "" {
			continue
		}
		if !slices.Contains(validSymbols, x) {
			return nil, fmt.Errorf(`%s is not a valid node/group`, x)
		}
		line = append(line, x)
	}
	if len(line) == 0 {
		return nil, fmt.Errorf(`node/group list must not be empty`)
	}
	slices.Sort(line)
	return line, nil
}

/*
ParseGraph Graph syntax is something like this:

Group1 = node1, node2, node3

Group2 = node4, node5

Group1, Group2, OtherNode // Group1, Group2, OtherNode will all be interconnected, but not within Group1 or Group2

Group1, Group1 // every node is connected to every other node

node8, node9 // node8 and node9 will be connected

graph represents the above graph
nodes represents a set of unique terminal nodes that the graph will evaluate down to
*/
func ParseGraph(graph []string, nodes []string) ([]Pair[NodeId, NodeId], error) {
	parsedPairings := make([]Pair[string, string], 0)

	groups := make(map[string][]string)

	symbols := slices.Clone(nodes)

	// pass 0, collect all symbols

	for _, line := range graph {
		line = strings.ToLower(strings.TrimSpace(line))
		if strings.Contains(line, "=") {
			// group definition
			spl := strings.Split(line, "=")
			if len(spl) != 2 {
				return nil, fmt.Errorf("invalid graph: %s. group definition must contain one '='", line)
			}
			grp := strings.TrimSpace(spl[0])
			if slices.Contains(nodes, grp) {
				return nil, fmt.Errorf("group name must not be a node name: %s", grp)
			}
			symbols = append(symbols, grp)
		}
	}
	slices.Sort(symbols)
	symbols = slices.Compact(symbols)

	// used for topological sorting
	// map: group -> []<groups that the node depends on>
	topo := make(map[string][]string)
	expansion := make(map[string][]string)

	// pass 1, parse graph
	for _, line := range graph {
		line = strings.ToLower(strings.TrimSpace(line))
		if strings.Contains(line, "=") {
			spl := strings.Split(line, "=")
			grp := strings.TrimSpace(spl[0])
			if _, ok := groups[grp]; ok {
				return nil, fmt.Errorf("duplicate group name: %s", grp)
			}
			lst, err := parseSymbolList(spl[1], symbols)
			if err != nil {
				return nil, err
			}
			// track dependencies
			deps := make([]string, 0)
			for _, l := range lst {
				if !slices.Contains(nodes, l) {
					// depends on a group
					deps = append(deps, l)
				} else {
					expansion[grp] = append(expansion[grp], l)
				}
			}
			slices.Sort(deps)
			deps = slices.Compact(deps)

			topo[grp] = deps
			groups[grp] = lst
		} else {
			names, err := parseSymbolList(line, symbols)
			if err != nil {
				return nil, err
			}
			if len(names) < 2 {
				return nil, fmt.Errorf("invalid pairing, %v", names)
			}
			interconnect := make([]string, 0)
			for _, name := range names {
				for _, node := range interconnect {
					parsedPairings = append(parsedPairings, MakeSortedPair(node, name))
				}
				interconnect = append(interconnect, name)
			}
			SortPairs(parsedPairings)
			parsedPairings = slices.Compact(parsedPairings)
		}
	}

	// pass 2, expand group names
	// just topological sorting
	for len(topo) > 0 {
		// find free group
		var group string
		for k, v := range topo {
			if len(v) == 0 {
				group = k
				break
			}
		}
		if group == "" {
			cycleNodes := make([]string, 0)
			for node := range topo {
				cycleNodes = append(cycleNodes, node)
			}
			slices.Sort(cycleNodes)
			return nil, fmt.Errorf("cycle detected in graph: %v", cycleNodes)
		}
		delete(topo, group)

		// remove and expand the group for every dependent
		for k, deps := range topo {
			if slices.Contains(deps, group) {
				expansion[k] = append(expansion[k], expansion[group]...)
				slices.Sort(expansion[k])
				expansion[k] = slices.Compact(expansion[k])

				x := 0
				for _, dep := range deps {
					if dep != group {
						deps[x] = dep
						x++
					}
				}
				topo[k] = deps[:x]
			}
		}
	}

	// pass 3, rewrite pairings
	pairings := make([]Pair[NodeId, NodeId], 0)
	expand := func(sym string) []string {
		if slices.Contains(nodes, sym) {
			return []string{sym}
		}
		return expansion[sym]
	}
	for _, pair := range parsedPairings {
		for _, x := range expand(pair.V1) {
			for _, y := range expand(pair.V2) {
				if x != y {
					pairings = append(pairings, MakeSortedPair(NodeId(x), NodeId(y)))
				}
			}
		}
	}
	SortPairs(pairings)
	pairings = slices.Compact(pairings)
	return pairings, nil
}
