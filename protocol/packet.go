// Package protocol defines the wire format of the udp named-message
// transport. Packets are tiny and fixed in shape, so they are encoded by hand
// with protowire instead of generated code.
package protocol

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Probe requests a liveness response for Name.
type Probe struct {
	Name       string
	LifetimeMs uint64
}

// Response answers a probe. Name carries the request name plus a version
// component. FreshnessMs is zero, responses must not be cached.
type Response struct {
	Name        string
	Payload     []byte
	Sig         []byte
	FreshnessMs uint64
}

// Nack is an explicit negative acknowledgement for a probe the receiver
// cannot serve.
type Nack struct {
	Name       string
	LifetimeMs uint64
}

// Packet is the transport envelope. Exactly one field is set.
type Packet struct {
	Probe    *Probe
	Response *Response
	Nack     *Nack
}

const (
	fieldProbe    = 1
	fieldResponse = 2
	fieldNack     = 3
)

var ErrMalformedPacket = errors.New("malformed packet")

func (p *Probe) marshal(b []byte) []byte {
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, p.Name)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, p.LifetimeMs)
	return b
}

func (r *Response) marshal(b []byte) []byte {
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, r.Name)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, r.Payload)
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendBytes(b, r.Sig)
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, r.FreshnessMs)
	return b
}

func (n *Nack) marshal(b []byte) []byte {
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, n.Name)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, n.LifetimeMs)
	return b
}

func (p *Packet) Marshal() ([]byte, error) {
	b := make([]byte, 0, 128)
	switch {
	case p.Probe != nil:
		b = protowire.AppendTag(b, fieldProbe, protowire.BytesType)
		b = protowire.AppendBytes(b, p.Probe.marshal(nil))
	case p.Response != nil:
		b = protowire.AppendTag(b, fieldResponse, protowire.BytesType)
		b = protowire.AppendBytes(b, p.Response.marshal(nil))
	case p.Nack != nil:
		b = protowire.AppendTag(b, fieldNack, protowire.BytesType)
		b = protowire.AppendBytes(b, p.Nack.marshal(nil))
	default:
		return nil, fmt.Errorf("%w: empty packet", ErrMalformedPacket)
	}
	return b, nil
}

// fields iterates the top-level fields of a protowire message.
func fields(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch typ {
		case protowire.VarintType:
			_, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			_, n = protowire.ConsumeBytes(b)
		case protowire.Fixed32Type:
			_, n = protowire.ConsumeFixed32(b)
		case protowire.Fixed64Type:
			_, n = protowire.ConsumeFixed64(b)
		default:
			return fmt.Errorf("%w: unexpected wire type %v", ErrMalformedPacket, typ)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		if err := fn(num, typ, b[:n]); err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func consumeString(v []byte) (string, error) {
	s, n := protowire.ConsumeBytes(v)
	if n < 0 {
		return "", protowire.ParseError(n)
	}
	return string(s), nil
}

func consumeBytes(v []byte) ([]byte, error) {
	s, n := protowire.ConsumeBytes(v)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	out := make([]byte, len(s))
	copy(out, s)
	return out, nil
}

func consumeVarint(v []byte) (uint64, error) {
	x, n := protowire.ConsumeVarint(v)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return x, nil
}

func unmarshalProbe(b []byte) (*Probe, error) {
	p := &Probe{}
	err := fields(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		var err error
		switch num {
		case 1:
			p.Name, err = consumeString(v)
		case 2:
			p.LifetimeMs, err = consumeVarint(v)
		}
		return err
	})
	return p, err
}

func unmarshalResponse(b []byte) (*Response, error) {
	r := &Response{}
	err := fields(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		var err error
		switch num {
		case 1:
			r.Name, err = consumeString(v)
		case 2:
			r.Payload, err = consumeBytes(v)
		case 3:
			r.Sig, err = consumeBytes(v)
		case 4:
			r.FreshnessMs, err = consumeVarint(v)
		}
		return err
	})
	return r, err
}

func unmarshalNack(b []byte) (*Nack, error) {
	n := &Nack{}
	err := fields(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		var err error
		switch num {
		case 1:
			n.Name, err = consumeString(v)
		case 2:
			n.LifetimeMs, err = consumeVarint(v)
		}
		return err
	})
	return n, err
}

func Unmarshal(b []byte) (*Packet, error) {
	pkt := &Packet{}
	err := fields(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if typ != protowire.BytesType {
			return fmt.Errorf("%w: field %d is not length-delimited", ErrMalformedPacket, num)
		}
		body, n := protowire.ConsumeBytes(v)
		if n < 0 {
			return protowire.ParseError(n)
		}
		var err error
		switch num {
		case fieldProbe:
			pkt.Probe, err = unmarshalProbe(body)
		case fieldResponse:
			pkt.Response, err = unmarshalResponse(body)
		case fieldNack:
			pkt.Nack, err = unmarshalNack(body)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if pkt.Probe == nil && pkt.Response == nil && pkt.Nack == nil {
		return nil, fmt.Errorf("%w: no recognized payload", ErrMalformedPacket)
	}
	return pkt, nil
}
