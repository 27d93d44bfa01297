package state

import (
	"context"
	"log/slog"
	"slices"
	"sync/atomic"
)

type RyModule interface {
	Init(s *State) error
	Cleanup(s *State) error
}

// State access must be done only on the main thread
type State struct {
	*Env
	Modules     map[string]RyModule
	Adjacencies []*Adjacency
}

// Env can be read from any Goroutine
type Env struct {
	DispatchChannel chan<- func(s *State) error
	CentralCfg
	LocalCfg
	Context  context.Context
	Cancel   context.CancelCauseFunc
	Log      *slog.Logger
	Started  atomic.Bool
	Stopping atomic.Bool
}

func (s *State) GetAdjacency(node NodeId) *Adjacency {
	idx := slices.IndexFunc(s.Adjacencies, func(adj *Adjacency) bool {
		return adj.Id == node
	})
	if idx == -1 {
		return nil
	}
	return s.Adjacencies[idx]
}

func (s *State) GetAdjacencyByName(name Name) *Adjacency {
	idx := slices.IndexFunc(s.Adjacencies, func(adj *Adjacency) bool {
		return adj.Name == name
	})
	if idx == -1 {
		return nil
	}
	return s.Adjacencies[idx]
}
