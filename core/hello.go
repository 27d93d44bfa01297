package core

import (
	"time"

	"github.com/encodeous/rayon/perf"
	"github.com/encodeous/rayon/state"
	"github.com/jellydator/ttlcache/v3"
)

type probeAttempt struct {
	Neighbour state.NodeId
	SentAt    time.Time
}

// HelloEvents are optional callbacks for external collaborators. They fire on
// the main thread.
type HelloEvents struct {
	NeighbourStatusChanged   []func(s *state.State, neighbour state.NodeId, status state.Status)
	ProbeSent                []func(s *state.State, neighbour state.NodeId)
	ResponseValidated        []func(s *state.State, neighbour state.NodeId)
	InitialResponseValidated []func(s *state.State, neighbour state.NodeId)
	TimedOut                 []func(s *state.State, neighbour state.NodeId, count uint32)
}

// Hello drives the per-neighbour liveness cycle: a steady probe cadence,
// fast retries on timeouts, the active/inactive transition when retries run
// out, and the responder side of the exchange.
//
// Both the periodic timer and a retry may have probes in flight to the same
// neighbour at once. The cadence never depends on the fate of individual
// probes; every handler re-checks adjacency state so stale outcomes are
// harmless.
type Hello struct {
	Transport Transport
	Validator Validator
	Recalc    RecalcTrigger
	Events    HelloEvents

	env *state.Env
	// inflight remembers the latest send per request name so a validated
	// response can be turned into a round-trip sample.
	inflight    *ttlcache.Cache[state.Name, probeAttempt]
	respVersion uint64
}

func (hl *Hello) Init(s *state.State) error {
	hl.env = s.Env
	if hl.Transport == nil {
		tr, err := NewUDPTransport(s.Env)
		if err != nil {
			return err
		}
		hl.Transport = tr
	}
	if hl.Validator == nil {
		hl.Validator = NewKeychainValidator(s.Env)
	}
	if hl.Recalc == nil {
		hl.Recalc = &logRecalc{log: s.Log}
	}

	// entries must survive a nack grace period of 2x lifetime
	hl.inflight = ttlcache.New[state.Name, probeAttempt](
		ttlcache.WithTTL[state.Name, probeAttempt](4*s.Hello.ProbeLifetime),
		ttlcache.WithDisableTouchOnHit[state.Name, probeAttempt](),
	)
	go hl.inflight.Start()

	filter := state.HelloFilter(s.RouterName())
	s.Log.Debug("registering hello filter", "prefix", filter)
	hl.Transport.RegisterProbeListener(filter, func(name state.Name) {
		hl.env.Dispatch(func(s *state.State) error {
			hl.handleProbe(s, name)
			return nil
		})
	})

	for _, adj := range s.Adjacencies {
		id := adj.Id
		s.RepeatTask(func(s *state.State) error {
			return hl.sendProbe(s, id)
		}, s.Hello.ProbeInterval)
	}
	return nil
}

func (hl *Hello) Cleanup(s *state.State) error {
	hl.inflight.Stop()
	if closer, ok := hl.Transport.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// sendProbe dispatches one probe to the neighbour. The periodic cadence is
// owned by RepeatTask and is not affected by the outcome; retries call this
// directly.
func (hl *Hello) sendProbe(s *state.State, neighbour state.NodeId) error {
	adj := s.GetAdjacency(neighbour)
	if adj == nil {
		return nil
	}
	if !adj.HasEndpoint() {
		// nothing to probe yet, the periodic timer will try again
		return nil
	}

	name := state.HelloRequestName(adj.Name, s.RouterName())
	hl.inflight.Set(name, probeAttempt{Neighbour: neighbour, SentAt: time.Now()}, ttlcache.DefaultTTL)

	if state.DBG_log_probe {
		s.Log.Debug("sending probe", "name", name)
	}

	lifetime := s.Hello.ProbeLifetime
	err := hl.Transport.SendProbe(adj.Endpoint, name, lifetime, ProbeHandlers{
		OnResponse: func(res Response) {
			hl.env.Dispatch(func(s *state.State) error {
				hl.onResponse(s, res)
				return nil
			})
		},
		OnNack: func(lifetime time.Duration) {
			hl.env.Dispatch(func(s *state.State) error {
				hl.onNack(s, neighbour, lifetime)
				return nil
			})
		},
		OnTimeout: func() {
			hl.env.Dispatch(func(s *state.State) error {
				hl.onTimeout(s, neighbour)
				return nil
			})
		},
	})
	if err != nil {
		// treated like silence, the retry/periodic timers still run
		s.Log.Debug("probe send failed", "neighbour", neighbour, "error", err)
		return nil
	}

	perf.SentProbes.Add(1)
	Get[*CostManager](s).ObserveProbeSent(s, neighbour)
	for _, fn := range hl.Events.ProbeSent {
		fn(s, neighbour)
	}
	return nil
}

// onNack delays the timeout verdict by twice the probe lifetime so a
// retransmission already in flight can still win.
func (hl *Hello) onNack(s *state.State, neighbour state.NodeId, lifetime time.Duration) {
	perf.NacksReceived.Add(1)
	s.Log.Debug("probe nacked, deferring timeout", "neighbour", neighbour, "grace", 2*lifetime)
	s.ScheduleTask(func(s *state.State) error {
		hl.onTimeout(s, neighbour)
		return nil
	}, 2*lifetime)
}

func (hl *Hello) onTimeout(s *state.State, neighbour state.NodeId) {
	adj := s.GetAdjacency(neighbour)
	if adj == nil {
		return
	}
	adj.TimedOutProbes++
	perf.TimedOutProbes.Add(1)
	Get[*CostManager](s).ObserveTimeout(s, neighbour)
	for _, fn := range hl.Events.TimedOut {
		fn(s, neighbour, adj.TimedOutProbes)
	}

	s.Log.Debug("probe timed out", "neighbour", neighbour, "count", adj.TimedOutProbes, "status", adj.Status)

	if adj.TimedOutProbes < s.Hello.RetryLimit {
		// fast retry, independent of the periodic cadence
		_ = hl.sendProbe(s, neighbour)
	} else if adj.Status == state.StatusActive {
		adj.Status = state.StatusInactive
		s.Log.Info("neighbour became inactive", "neighbour", neighbour)
		for _, fn := range hl.Events.NeighbourStatusChanged {
			fn(s, neighbour, state.StatusInactive)
		}
		hl.Recalc.RequestRecalculation()
	}
	// already inactive with retries exhausted: nothing to do until the next
	// periodic probe
}

// onResponse hands the raw response to the validator; only validated
// responses touch any state.
func (hl *Hello) onResponse(s *state.State, res Response) {
	hl.Validator.Validate(res,
		func(res Response) {
			hl.env.Dispatch(func(s *state.State) error {
				hl.onResponseValidated(s, res)
				return nil
			})
		},
		func(res Response, err error) {
			hl.env.Dispatch(func(s *state.State) error {
				perf.ValidationFailures.Add(1)
				s.Log.Debug("response validation failed", "name", res.Name, "error", err)
				return nil
			})
		})
}

func (hl *Hello) onResponseValidated(s *state.State, res Response) {
	request, target, requester, _, err := state.ParseHelloResponse(res.Name)
	if err != nil {
		s.Log.Debug("dropping response with malformed name", "name", res.Name, "error", err)
		return
	}
	if requester != s.RouterName() {
		s.Log.Debug("dropping response addressed to another router", "name", res.Name)
		return
	}
	adj := s.GetAdjacencyByName(target)
	if adj == nil {
		s.Log.Debug("dropping response from unknown neighbour", "name", res.Name)
		return
	}

	perf.RecvResponses.Add(1)

	oldStatus := adj.Status
	adj.Status = state.StatusActive
	adj.TimedOutProbes = 0

	if att, ok := hl.inflight.GetAndDelete(request); ok {
		rtt := time.Since(att.Value().SentAt)
		Get[*CostManager](s).ObserveSuccess(s, adj.Id, rtt)
		if state.DBG_log_probe {
			s.Log.Debug("probe round trip", "neighbour", adj.Id, "rtt", rtt)
		}
	}

	for _, fn := range hl.Events.ResponseValidated {
		fn(s, adj.Id)
	}

	if oldStatus != state.StatusActive {
		s.Log.Info("neighbour became active", "neighbour", adj.Id)
		for _, fn := range hl.Events.NeighbourStatusChanged {
			fn(s, adj.Id, state.StatusActive)
		}
		for _, fn := range hl.Events.InitialResponseValidated {
			fn(s, adj.Id)
		}
		hl.Recalc.RequestRecalculation()
	}
}

// handleProbe is the responder side: answer probes from configured
// neighbours with a signed, non-cacheable response, and probe a previously
// inactive sender back to speed up convergence.
func (hl *Hello) handleProbe(s *state.State, name state.Name) {
	target, requester, err := state.ParseHelloRequest(name)
	if err != nil {
		s.Log.Debug("dropping probe with malformed name", "name", name, "error", err)
		return
	}
	if target != s.RouterName() {
		s.Log.Debug("dropping probe for another router", "name", name)
		return
	}
	adj := s.GetAdjacencyByName(requester)
	if adj == nil {
		s.Log.Debug("dropping probe from non-neighbour", "requester", requester)
		return
	}
	perf.RecvProbes.Add(1)

	hl.respVersion++
	resName := state.ResponseName(name, hl.respVersion)
	payload := []byte(state.LivenessMarker)
	sig, err := s.Key.Sign(signedResponseBytes(resName, payload))
	if err != nil {
		s.Log.Error("failed to sign response", "error", err)
		return
	}
	err = hl.Transport.SendResponse(name, Response{Name: resName, Payload: payload, Sig: sig})
	if err != nil {
		s.Log.Debug("failed to send response", "name", resName, "error", err)
		return
	}
	perf.SentResponses.Add(1)

	// if this neighbour was previously inactive, send our own probe too
	if adj.Status == state.StatusInactive && adj.HasEndpoint() {
		_ = hl.sendProbe(s, adj.Id)
	}
}

// signedResponseBytes binds the signature to both the response name and the
// payload.
func signedResponseBytes(name state.Name, payload []byte) []byte {
	return append([]byte(name), payload...)
}

// logRecalc is the default recalculation trigger when no routing layer is
// attached.
type logRecalc struct {
	log interface {
		Debug(msg string, args ...any)
	}
}

func (r *logRecalc) RequestRecalculation() {
	r.log.Debug("routing recalculation requested")
}
