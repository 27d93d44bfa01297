package protocol

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestPacket_Probe(t *testing.T) {
	pkt := &Packet{Probe: &Probe{Name: "/net/alpha/rayon/hello/net/beta", LifetimeMs: 4000}}
	buf, err := pkt.Marshal()
	assert.NoError(t, err)

	back, err := Unmarshal(buf)
	assert.NoError(t, err)
	if diff := cmp.Diff(pkt, back); diff != "" {
		t.Errorf("probe mismatch (-want +got):\n%s", diff)
	}
}

func TestPacket_Response(t *testing.T) {
	pkt := &Packet{Response: &Response{
		Name:    "/net/alpha/rayon/hello/net/beta/v=17",
		Payload: []byte("hello"),
		Sig:     []byte{0x01, 0x02, 0x03},
	}}
	buf, err := pkt.Marshal()
	assert.NoError(t, err)

	back, err := Unmarshal(buf)
	assert.NoError(t, err)
	if diff := cmp.Diff(pkt, back); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
	assert.EqualValues(t, 0, back.Response.FreshnessMs)
}

func TestPacket_Nack(t *testing.T) {
	pkt := &Packet{Nack: &Nack{Name: "/net/alpha/rayon/hello/net/beta", LifetimeMs: 4000}}
	buf, err := pkt.Marshal()
	assert.NoError(t, err)

	back, err := Unmarshal(buf)
	assert.NoError(t, err)
	assert.Equal(t, pkt.Nack.Name, back.Nack.Name)
	assert.Equal(t, pkt.Nack.LifetimeMs, back.Nack.LifetimeMs)
}

func TestPacket_Empty(t *testing.T) {
	_, err := (&Packet{}).Marshal()
	assert.ErrorIs(t, err, ErrMalformedPacket)
}

func TestUnmarshal_Garbage(t *testing.T) {
	_, err := Unmarshal([]byte{0xff, 0xff, 0xff})
	assert.Error(t, err)
}

func TestUnmarshal_UnknownFieldOnly(t *testing.T) {
	// a packet carrying only unknown fields has no payload
	buf, err := (&Packet{Probe: &Probe{Name: "/a/rayon/hello/b"}}).Marshal()
	assert.NoError(t, err)
	buf[0] = (9 << 3) | 2 // rewrite the tag to an unknown field number
	_, err = Unmarshal(buf)
	assert.ErrorIs(t, err, ErrMalformedPacket)
}

func TestUnmarshal_Truncated(t *testing.T) {
	buf, err := (&Packet{Probe: &Probe{Name: "/a/rayon/hello/b", LifetimeMs: 1000}}).Marshal()
	assert.NoError(t, err)
	_, err = Unmarshal(buf[:len(buf)-4])
	assert.Error(t, err)
}
