package state

import (
	"fmt"
	"strconv"
	"strings"
)

// Name is an opaque hierarchical name, e.g. /net/alpha. Router names key all
// per-neighbour state and address probe/response exchanges.
type Name string

const (
	RoutingMarker  = "rayon"
	LivenessMarker = "hello"
)

// helloMarker sits between the target router's prefix and the requester's
// name in every probe exchange.
const helloMarker = "/" + RoutingMarker + "/" + LivenessMarker

func (n Name) Valid() bool {
	s := string(n)
	if len(s) < 2 || !strings.HasPrefix(s, "/") || strings.HasSuffix(s, "/") {
		return false
	}
	for _, comp := range strings.Split(s[1:], "/") {
		if comp == "" {
			return false
		}
	}
	return true
}

// HelloRequestName builds the probe name a requester sends towards a
// neighbour: <neighbour>/rayon/hello/<requester...>.
func HelloRequestName(neighbour, requester Name) Name {
	return neighbour + helloMarker + requester
}

// HelloFilter is the prefix a router listens on for inbound probes.
func HelloFilter(router Name) Name {
	return router + helloMarker
}

// ParseHelloRequest splits a probe name into the target router prefix and the
// requester's name. Names that do not contain the hello marker exactly once
// are rejected.
func ParseHelloRequest(n Name) (target Name, requester Name, err error) {
	s := string(n)
	idx := strings.Index(s, helloMarker+"/")
	if idx <= 0 || idx != strings.LastIndex(s, helloMarker+"/") {
		return "", "", fmt.Errorf("name %q does not match the hello pattern", s)
	}
	target = Name(s[:idx])
	requester = Name(s[idx+len(helloMarker):])
	if !target.Valid() || !requester.Valid() {
		return "", "", fmt.Errorf("name %q has a malformed prefix or requester", s)
	}
	return target, requester, nil
}

// ResponseName derives the response name for a probe by appending a version
// component.
func ResponseName(request Name, version uint64) Name {
	return request + Name("/v="+strconv.FormatUint(version, 10))
}

// ParseHelloResponse strips the version component and parses the embedded
// request name.
func ParseHelloResponse(n Name) (request Name, target Name, requester Name, version uint64, err error) {
	s := string(n)
	idx := strings.LastIndex(s, "/v=")
	if idx <= 0 {
		return "", "", "", 0, fmt.Errorf("response name %q has no version component", s)
	}
	version, err = strconv.ParseUint(s[idx+len("/v="):], 10, 64)
	if err != nil {
		return "", "", "", 0, fmt.Errorf("response name %q has a malformed version: %w", s, err)
	}
	request = Name(s[:idx])
	target, requester, err = ParseHelloRequest(request)
	if err != nil {
		return "", "", "", 0, err
	}
	return request, target, requester, version, nil
}
