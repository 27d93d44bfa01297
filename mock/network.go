package mock

import (
	"context"
	"math/rand/v2"
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"github.com/encodeous/rayon/core"
	"github.com/encodeous/rayon/state"
)

// LinkProfile shapes traffic between two attached ports.
type LinkProfile struct {
	Latency    time.Duration
	Jitter     time.Duration
	PacketLoss float64
}

// Network is an in-memory packet fabric. Ports are attached by endpoint and
// exchange probes and responses with optional per-link latency, jitter and
// loss.
type Network struct {
	Context context.Context

	mu    sync.Mutex
	ports map[netip.AddrPort]*Port
	links map[state.Pair[string, string]]*LinkProfile
}

func NewNetwork(ctx context.Context) *Network {
	return &Network{
		Context: ctx,
		ports:   make(map[netip.AddrPort]*Port),
		links:   make(map[state.Pair[string, string]]*LinkProfile),
	}
}

// Attach creates the transport for one router bound to ep.
func (n *Network) Attach(ep netip.AddrPort) *Port {
	n.mu.Lock()
	defer n.mu.Unlock()
	port := &Port{
		net:     n,
		ep:      ep,
		pending: make(map[state.Name]*pendingProbe),
		replyTo: make(map[state.Name]netip.AddrPort),
	}
	n.ports[ep] = port
	return port
}

// SetLink installs a symmetric traffic profile between a and b. Links without
// a profile deliver instantly and losslessly.
func (n *Network) SetLink(a, b netip.AddrPort, profile LinkProfile) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.links[state.MakeSortedPair(a.String(), b.String())] = &profile
}

func (n *Network) lookup(ep netip.AddrPort) *Port {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ports[ep]
}

// deliver runs fn after simulating the link between from and to. fn runs on
// its own goroutine when the link has latency.
func (n *Network) deliver(from, to netip.AddrPort, fn func()) {
	n.mu.Lock()
	link := n.links[state.MakeSortedPair(from.String(), to.String())]
	n.mu.Unlock()

	if link == nil {
		fn()
		return
	}
	if rand.Float64() < link.PacketLoss {
		return
	}
	if link.Latency == 0 && link.Jitter == 0 {
		fn()
		return
	}
	delay := link.Latency + time.Duration(rand.Float64()*float64(link.Jitter.Nanoseconds()))
	go func() {
		select {
		case <-n.Context.Done():
		case <-time.After(delay):
			fn()
		}
	}()
}

type pendingProbe struct {
	handlers core.ProbeHandlers
	timer    *time.Timer
}

// Port implements core.Transport over the in-memory fabric.
type Port struct {
	net *Network
	ep  netip.AddrPort

	mu        sync.Mutex
	listeners []state.Pair[state.Name, func(name state.Name)]
	pending   map[state.Name]*pendingProbe
	replyTo   map[state.Name]netip.AddrPort
}

func (p *Port) SendProbe(ep netip.AddrPort, name state.Name, lifetime time.Duration, h core.ProbeHandlers) error {
	pp := &pendingProbe{handlers: h}
	pp.timer = time.AfterFunc(lifetime, func() {
		if p.take(name) != nil {
			h.OnTimeout()
		}
	})
	p.mu.Lock()
	if old := p.pending[name]; old != nil {
		old.timer.Stop()
	}
	p.pending[name] = pp
	p.mu.Unlock()

	dst := p.net.lookup(ep)
	if dst == nil {
		// unreachable ports behave like silence
		return nil
	}
	p.net.deliver(p.ep, ep, func() {
		dst.receiveProbe(name, lifetime, p.ep)
	})
	return nil
}

func (p *Port) RegisterProbeListener(prefix state.Name, fn func(name state.Name)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, state.Pair[state.Name, func(name state.Name)]{V1: prefix, V2: fn})
}

func (p *Port) SendResponse(requestName state.Name, res core.Response) error {
	p.mu.Lock()
	from, ok := p.replyTo[requestName]
	delete(p.replyTo, requestName)
	p.mu.Unlock()
	if !ok {
		return nil
	}
	dst := p.net.lookup(from)
	if dst == nil {
		return nil
	}
	p.net.deliver(p.ep, from, func() {
		dst.receiveResponse(res)
	})
	return nil
}

// take removes and returns the pending probe for name, or nil when the probe
// already resolved.
func (p *Port) take(name state.Name) *pendingProbe {
	p.mu.Lock()
	defer p.mu.Unlock()
	pp := p.pending[name]
	if pp != nil {
		pp.timer.Stop()
		delete(p.pending, name)
	}
	return pp
}

func (p *Port) receiveProbe(name state.Name, lifetime time.Duration, from netip.AddrPort) {
	p.mu.Lock()
	var fn func(name state.Name)
	for _, l := range p.listeners {
		if len(name) >= len(l.V1) && name[:len(l.V1)] == l.V1 {
			fn = l.V2
			break
		}
	}
	if fn != nil {
		p.replyTo[name] = from
	}
	p.mu.Unlock()

	if fn == nil {
		src := p.net.lookup(from)
		if src != nil {
			p.net.deliver(p.ep, from, func() {
				if pp := src.take(name); pp != nil {
					pp.handlers.OnNack(lifetime)
				}
			})
		}
		return
	}
	fn(name)
}

func (p *Port) receiveResponse(res core.Response) {
	request, _, _, _, err := state.ParseHelloResponse(res.Name)
	if err != nil {
		return
	}
	if pp := p.take(request); pp != nil {
		pp.handlers.OnResponse(res)
	}
}

// PassValidator accepts every response without looking at the signature.
type PassValidator struct{}

func (PassValidator) Validate(res core.Response, onValid func(core.Response), onFail func(core.Response, error)) {
	go onValid(res)
}

// CountingRecalc records how many recalculations were requested.
type CountingRecalc struct {
	Count atomic.Int64
}

func (r *CountingRecalc) RequestRecalculation() {
	r.Count.Add(1)
}
