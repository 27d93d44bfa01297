package state

import "time"

var (
	// ProbeInterval is the steady per-neighbour probing cadence.
	ProbeInterval = time.Second * 60
	// ProbeLifetime is how long a single probe may stay unanswered before
	// it is considered timed out.
	ProbeLifetime = time.Second * 4
	// RetryLimit is the number of timed-out probes tolerated before an
	// active neighbour is declared inactive.
	RetryLimit = uint32(3)

	// HistoryCapacity bounds the per-neighbour latency history.
	HistoryCapacity = 10

	// cost model defaults
	RttWeight       = 0.3
	LoadWeight      = 0.4
	StabilityWeight = 0.3
	CostClampMin    = 0.5
	CostClampMax    = 3.0

	// DefaultLinkCost is used for links without a configured cost.
	DefaultLinkCost = 10.0

	// default port for the udp transport
	DefaultPort = uint16(57190)
)

var (
	DBG_log_probe    = false
	DBG_log_cost     = false
	DBG_json_logging = false
	DBG_debug        = false
)
