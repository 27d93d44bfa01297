package core

import (
	"net/netip"
	"time"

	"github.com/encodeous/rayon/state"
)

// Response is a raw, not yet validated liveness response.
type Response struct {
	Name    state.Name
	Payload []byte
	Sig     []byte
}

// ProbeHandlers receive the single outcome of one probe. Exactly one of the
// three fires per sent probe. Callbacks run on transport goroutines; callers
// are responsible for hopping onto the main thread.
type ProbeHandlers struct {
	OnResponse func(res Response)
	OnNack     func(lifetime time.Duration)
	OnTimeout  func()
}

// Transport carries named probe/response exchanges between routers. The
// engine never sees addresses on the inbound path, only names.
type Transport interface {
	// SendProbe dispatches one probe towards ep and arms its outcome
	// handlers with the given lifetime.
	SendProbe(ep netip.AddrPort, name state.Name, lifetime time.Duration, h ProbeHandlers) error
	// RegisterProbeListener delivers inbound probes whose name starts with
	// prefix.
	RegisterProbeListener(prefix state.Name, fn func(name state.Name))
	// SendResponse answers a previously delivered probe by its request name.
	SendResponse(requestName state.Name, res Response) error
}

// Validator authenticates responses asynchronously, delivering the outcome
// via exactly one of the two callbacks.
type Validator interface {
	Validate(res Response, onValid func(Response), onFail func(Response, error))
}

// RecalcTrigger asks the routing layer to recompute forwarding decisions.
// Implementations are expected to debounce; the hello engine fires it at most
// once per status transition.
type RecalcTrigger interface {
	RequestRecalculation()
}
