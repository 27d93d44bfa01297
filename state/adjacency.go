package state

import "net/netip"

type NodeId string

// Status is the binary liveness classification of a neighbour.
type Status uint8

const (
	StatusInactive Status = iota
	StatusActive
)

func (s Status) String() string {
	if s == StatusActive {
		return "active"
	}
	return "inactive"
}

// Adjacency holds the configuration and liveness state of one directly
// connected neighbour. The set of adjacencies is fixed at configuration load;
// only the hello engine mutates Status and TimedOutProbes, and only on the
// main thread.
type Adjacency struct {
	Id       NodeId
	Name     Name           // hierarchical router name, e.g. /net/alpha
	Endpoint netip.AddrPort // zero value when no endpoint is known yet
	Cost     float64        // configured base link cost
	Status   Status
	// TimedOutProbes counts consecutive unanswered probes. Reset to 0 on any
	// validated response.
	TimedOutProbes uint32
}

func (a *Adjacency) HasEndpoint() bool {
	return a.Endpoint.IsValid()
}
