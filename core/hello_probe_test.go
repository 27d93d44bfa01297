package core

import (
	"net/netip"
	"testing"
	"time"

	"github.com/encodeous/rayon/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTransport captures outbound traffic without a network.
type recordingTransport struct {
	probes    []state.Name
	responses []Response
}

func (tr *recordingTransport) SendProbe(ep netip.AddrPort, name state.Name, lifetime time.Duration, h ProbeHandlers) error {
	tr.probes = append(tr.probes, name)
	return nil
}

func (tr *recordingTransport) RegisterProbeListener(prefix state.Name, fn func(name state.Name)) {}

func (tr *recordingTransport) SendResponse(requestName state.Name, res Response) error {
	tr.responses = append(tr.responses, res)
	return nil
}

func TestHello_ResponderAnswersNeighbourProbe(t *testing.T) {
	s := testState(t, false)
	s.Key = state.GenerateKey()
	tr := &recordingTransport{}
	hl := &Hello{Transport: tr, env: s.Env}

	request := state.HelloRequestName("/test/self", "/test/peer")
	hl.handleProbe(s, request)
	require.Len(t, tr.responses, 1)

	res := tr.responses[0]
	parsedReq, target, requester, version, err := state.ParseHelloResponse(res.Name)
	require.NoError(t, err)
	assert.Equal(t, request, parsedReq)
	assert.Equal(t, state.Name("/test/self"), target)
	assert.Equal(t, state.Name("/test/peer"), requester)
	assert.True(t, s.Key.Pubkey().Verify(signedResponseBytes(res.Name, res.Payload), res.Sig))

	// versions are assigned monotonically
	hl.handleProbe(s, request)
	require.Len(t, tr.responses, 2)
	_, _, _, version2, err := state.ParseHelloResponse(tr.responses[1].Name)
	require.NoError(t, err)
	assert.Greater(t, version2, version)
}

func TestHello_ResponderDropsForeignProbes(t *testing.T) {
	s := testState(t, false)
	s.Key = state.GenerateKey()
	tr := &recordingTransport{}
	hl := &Hello{Transport: tr, env: s.Env}

	// not a hello request at all
	hl.handleProbe(s, "/garbage")
	// names another router
	hl.handleProbe(s, state.HelloRequestName("/test/other", "/test/peer"))
	// requester is not a configured neighbour
	hl.handleProbe(s, state.HelloRequestName("/test/self", "/test/ghost"))

	assert.Empty(t, tr.responses)
	assert.Empty(t, tr.probes)
}
