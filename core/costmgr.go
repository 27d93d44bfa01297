package core

import (
	"time"

	"github.com/encodeous/rayon/state"
)

// LinkMetrics is the snapshot handed to a cost calculator. Optional signals
// are nil when never observed.
type LinkMetrics struct {
	Neighbour    state.NodeId
	OriginalCost float64
	CurrentRtt   *float64 // milliseconds
	// RttRecorded marks CurrentRtt as already present in the history, so the
	// calculator must not fold it in again.
	RttRecorded  bool
	TimeoutCount *uint32
	LastSuccess  *time.Time
}

// CostCalculator turns a metrics snapshot into an adjusted link cost. The
// history belongs to the manager; recording the current sample into it is the
// only side effect a calculator may have.
type CostCalculator interface {
	AdjustedCost(baseCost float64, metrics LinkMetrics, history *state.LatencyHistory) float64
}

// identityCalculator is installed whenever no strategy is active, so call
// sites never branch on nil.
type identityCalculator struct{}

func (identityCalculator) AdjustedCost(baseCost float64, _ LinkMetrics, _ *state.LatencyHistory) float64 {
	return baseCost
}

type neighbourStats struct {
	history      *state.LatencyHistory
	lastRtt      float64
	hasRtt       bool
	timeoutCount uint32
	lastSuccess  time.Time // zero when never heard back
}

// CostManager decouples metric production (the hello engine) from metric
// consumption (the routing computation) behind a single-slot calculator.
// All state is owned by the main thread; GetCost copies a snapshot and never
// blocks or schedules.
type CostManager struct {
	calc  CostCalculator
	stats map[state.NodeId]*neighbourStats
}

func (m *CostManager) Init(s *state.State) error {
	m.calc = identityCalculator{}
	m.stats = make(map[state.NodeId]*neighbourStats)
	for _, adj := range s.Adjacencies {
		m.stats[adj.Id] = &neighbourStats{
			history: state.NewLatencyHistory(s.Hello.HistoryCapacity),
		}
	}
	if s.Hello.CostModel.Enabled {
		m.SetCalculator(NewLoadAwareCalculator(s.Hello.CostModel))
		s.Log.Info("load-aware cost model enabled")
	}
	return nil
}

func (m *CostManager) Cleanup(s *state.State) error {
	return nil
}

// SetCalculator installs calc as the active strategy, replacing any previous
// one.
func (m *CostManager) SetCalculator(calc CostCalculator) {
	m.calc = calc
}

// ClearCalculator restores the identity strategy; cost queries return the
// base cost unchanged until a new strategy is installed.
func (m *CostManager) ClearCalculator() {
	m.calc = identityCalculator{}
}

func (m *CostManager) ensure(s *state.State, neighbour state.NodeId) *neighbourStats {
	st, ok := m.stats[neighbour]
	if !ok {
		st = &neighbourStats{history: state.NewLatencyHistory(s.Hello.HistoryCapacity)}
		m.stats[neighbour] = st
	}
	return st
}

// RecordSample appends a round-trip sample to the neighbour's latency
// history, evicting the oldest sample past capacity.
func (m *CostManager) RecordSample(s *state.State, neighbour state.NodeId, rtt time.Duration) {
	st := m.ensure(s, neighbour)
	ms := float64(rtt.Microseconds()) / 1000.0
	println("DEBUG sample", string(neighbour), int64(rtt/time.Microsecond))
	st.history.Push(ms)
	st.lastRtt = ms
	st.hasRtt = true
}

// ObserveProbeSent is a statistics hook, it does not schedule anything.
func (m *CostManager) ObserveProbeSent(s *state.State, neighbour state.NodeId) {
	m.ensure(s, neighbour)
}

// ObserveSuccess records a validated round trip.
func (m *CostManager) ObserveSuccess(s *state.State, neighbour state.NodeId, rtt time.Duration) {
	m.RecordSample(s, neighbour, rtt)
	st := m.stats[neighbour]
	st.lastSuccess = time.Now()
	st.timeoutCount = 0
}

// ObserveTimeout bumps the cumulative timeout count feeding the stability
// factor.
func (m *CostManager) ObserveTimeout(s *state.State, neighbour state.NodeId) {
	m.ensure(s, neighbour).timeoutCount++
}

// History exposes the neighbour's latency window, mainly for tests and
// introspection.
func (m *CostManager) History(neighbour state.NodeId) *state.LatencyHistory {
	st, ok := m.stats[neighbour]
	if !ok {
		return nil
	}
	return st.history
}

func (m *CostManager) snapshot(s *state.State, neighbour state.NodeId) LinkMetrics {
	metrics := LinkMetrics{Neighbour: neighbour}
	if adj := s.GetAdjacency(neighbour); adj != nil {
		metrics.OriginalCost = adj.Cost
	}
	st, ok := m.stats[neighbour]
	if !ok {
		return metrics
	}
	if st.hasRtt {
		rtt := st.lastRtt
		metrics.CurrentRtt = &rtt
		// RecordSample pushed this sample into the history already
		metrics.RttRecorded = true
	}
	if st.timeoutCount > 0 {
		count := st.timeoutCount
		metrics.TimeoutCount = &count
	}
	if !st.lastSuccess.IsZero() {
		last := st.lastSuccess
		metrics.LastSuccess = &last
	}
	return metrics
}

// GetCost returns the adjusted cost for the neighbour given the cost the
// routing computation would otherwise use. It is called synchronously from
// the routing computation and stays cheap: snapshot copy, one strategy call,
// no I/O.
func (m *CostManager) GetCost(s *state.State, neighbour state.NodeId, baseCost float64) float64 {
	st, ok := m.stats[neighbour]
	var history *state.LatencyHistory
	if ok {
		history = st.history
	}
	cost := m.calc.AdjustedCost(baseCost, m.snapshot(s, neighbour), history)
	if state.DBG_log_cost {
		s.Log.Debug("link cost", "neighbour", neighbour, "base", baseCost, "adjusted", cost)
	}
	return cost
}
