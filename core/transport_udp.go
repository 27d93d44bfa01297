package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/encodeous/rayon/protocol"
	"github.com/encodeous/rayon/state"
	"github.com/jellydator/ttlcache/v3"
)

const maxPacketSize = 2048

// UDPTransport carries probe/response exchanges over a single udp socket.
// Outcome tracking is ttl-driven: a pending probe whose entry expires before
// a response or nack arrives has timed out.
//
// Pending probes are keyed by request name. A later probe with the same name
// supersedes the earlier one and its handlers are dropped; the engine's
// handlers are idempotent, so a lost outcome for a superseded probe is
// harmless.
type UDPTransport struct {
	env  *state.Env
	conn *net.UDPConn

	pending *ttlcache.Cache[state.Name, ProbeHandlers]
	// replyTo remembers where each inbound probe came from so the response
	// can be routed by request name alone.
	replyTo *ttlcache.Cache[state.Name, netip.AddrPort]

	mu        sync.Mutex
	listeners []state.Pair[state.Name, func(name state.Name)]
}

func NewUDPTransport(env *state.Env) (*UDPTransport, error) {
	bind := env.Bind
	if !bind.IsValid() {
		bind = netip.AddrPortFrom(netip.IPv6Unspecified(), state.DefaultPort)
	}
	conn, err := net.ListenUDP("udp", net.UDPAddrFromAddrPort(bind))
	if err != nil {
		return nil, fmt.Errorf("failed to bind transport socket: %w", err)
	}
	t := &UDPTransport{
		env:  env,
		conn: conn,
		pending: ttlcache.New[state.Name, ProbeHandlers](
			ttlcache.WithDisableTouchOnHit[state.Name, ProbeHandlers](),
		),
		replyTo: ttlcache.New[state.Name, netip.AddrPort](
			ttlcache.WithDisableTouchOnHit[state.Name, netip.AddrPort](),
		),
	}
	t.pending.OnEviction(func(ctx context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[state.Name, ProbeHandlers]) {
		if reason == ttlcache.EvictionReasonExpired {
			item.Value().OnTimeout()
		}
	})
	go t.pending.Start()
	go t.replyTo.Start()
	go t.recvLoop()
	env.Log.Debug("transport listening", "bind", conn.LocalAddr())
	return t, nil
}

func (t *UDPTransport) SendProbe(ep netip.AddrPort, name state.Name, lifetime time.Duration, h ProbeHandlers) error {
	buf, err := (&protocol.Packet{
		Probe: &protocol.Probe{Name: string(name), LifetimeMs: uint64(lifetime.Milliseconds())},
	}).Marshal()
	if err != nil {
		return err
	}
	t.pending.Set(name, h, lifetime)
	_, err = t.conn.WriteToUDPAddrPort(buf, ep)
	if err != nil {
		t.pending.Delete(name)
		return fmt.Errorf("failed to send probe to %v: %w", ep, err)
	}
	return nil
}

func (t *UDPTransport) RegisterProbeListener(prefix state.Name, fn func(name state.Name)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, state.Pair[state.Name, func(name state.Name)]{V1: prefix, V2: fn})
}

func (t *UDPTransport) SendResponse(requestName state.Name, res Response) error {
	item, ok := t.replyTo.GetAndDelete(requestName)
	if !ok {
		return fmt.Errorf("no pending request named %q", requestName)
	}
	buf, err := (&protocol.Packet{
		Response: &protocol.Response{Name: string(res.Name), Payload: res.Payload, Sig: res.Sig},
	}).Marshal()
	if err != nil {
		return err
	}
	_, err = t.conn.WriteToUDPAddrPort(buf, item.Value())
	return err
}

func (t *UDPTransport) Close() error {
	t.pending.Stop()
	t.replyTo.Stop()
	return t.conn.Close()
}

func (t *UDPTransport) recvLoop() {
	buf := make([]byte, maxPacketSize)
	for {
		n, from, err := t.conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) || t.env.Context.Err() != nil {
				return
			}
			t.env.Log.Debug("transport read failed", "error", err)
			continue
		}
		pkt, err := protocol.Unmarshal(buf[:n])
		if err != nil {
			t.env.Log.Debug("dropping malformed packet", "from", from, "error", err)
			continue
		}
		switch {
		case pkt.Probe != nil:
			t.handleProbe(pkt.Probe, from)
		case pkt.Response != nil:
			t.handleResponse(pkt.Response)
		case pkt.Nack != nil:
			t.handleNack(pkt.Nack)
		}
	}
}

func (t *UDPTransport) handleProbe(p *protocol.Probe, from netip.AddrPort) {
	name := state.Name(p.Name)
	lifetime := time.Duration(p.LifetimeMs) * time.Millisecond

	t.mu.Lock()
	var fn func(name state.Name)
	for _, l := range t.listeners {
		if strings.HasPrefix(string(name), string(l.V1)) {
			fn = l.V2
			break
		}
	}
	t.mu.Unlock()

	if fn == nil {
		// not ours, tell the sender instead of leaving it to time out
		buf, err := (&protocol.Packet{
			Nack: &protocol.Nack{Name: p.Name, LifetimeMs: p.LifetimeMs},
		}).Marshal()
		if err == nil {
			_, _ = t.conn.WriteToUDPAddrPort(buf, from)
		}
		return
	}

	t.replyTo.Set(name, from, lifetime)
	fn(name)
}

func (t *UDPTransport) handleResponse(r *protocol.Response) {
	res := Response{Name: state.Name(r.Name), Payload: r.Payload, Sig: r.Sig}
	request, _, _, _, err := state.ParseHelloResponse(res.Name)
	if err != nil {
		t.env.Log.Debug("dropping response with malformed name", "name", res.Name, "error", err)
		return
	}
	item, ok := t.pending.GetAndDelete(request)
	if !ok {
		// late or duplicate, the probe already resolved
		return
	}
	item.Value().OnResponse(res)
}

func (t *UDPTransport) handleNack(n *protocol.Nack) {
	name := state.Name(n.Name)
	item, ok := t.pending.GetAndDelete(name)
	if !ok {
		return
	}
	item.Value().OnNack(time.Duration(n.LifetimeMs) * time.Millisecond)
}
