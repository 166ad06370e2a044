// tracecollector/utility/endpoint.go
package utility

import (
	"net"
	"net/netip"
	"strconv"
	"strings"

	fwerrors "fwreach/errors"
)

// DefaultPort is used for connection attempts when the target carries no port.
const DefaultPort = 80

// Endpoints is a validated SOURCE_IP / TARGET_IP[:PORT] pair.
type Endpoints struct {
	Source     netip.Addr
	Target     netip.Addr
	Port       uint16 // 0 when the target was given without a port
	TargetSpec string // target exactly as given on the command line
}

// ParseEndpoints validates a source (bare IPv4) and a target (IPv4 with an
// optional port). Every failure is a validation error.
func ParseEndpoints(source, target string) (*Endpoints, error) {
	source = strings.TrimSpace(source)
	target = strings.TrimSpace(target)

	if strings.Contains(source, ":") {
		return nil, fwerrors.Errorf(fwerrors.KindValidation,
			"source %q must be a bare address without a port", source)
	}
	src, err := parseIPv4(source)
	if err != nil {
		return nil, fwerrors.Wrapf(err, fwerrors.KindValidation, "source IP %s is not a valid IPv4 address", source)
	}

	host, portStr, hasPort := strings.Cut(target, ":")
	dst, err := parseIPv4(host)
	if err != nil {
		return nil, fwerrors.Wrapf(err, fwerrors.KindValidation, "target IP %s is not a valid IPv4 address", host)
	}

	ep := &Endpoints{Source: src, Target: dst, TargetSpec: target}
	if hasPort {
		port, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil || port == 0 {
			return nil, fwerrors.Errorf(fwerrors.KindValidation, "invalid target port %q", portStr)
		}
		ep.Port = uint16(port)
	}
	return ep, nil
}

func parseIPv4(s string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, err
	}
	if !addr.Is4() {
		return netip.Addr{}, fwerrors.Errorf(fwerrors.KindValidation, "%s is not IPv4", s)
	}
	return addr, nil
}

// SourceText returns the source in the dotted-quad form decoded events use.
func (e *Endpoints) SourceText() string { return e.Source.String() }

// TargetText returns the bare destination address used for event matching.
func (e *Endpoints) TargetText() string { return e.Target.String() }

// DialAddress returns host:port for connection attempts.
func (e *Endpoints) DialAddress() string {
	port := e.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(e.Target.String(), strconv.Itoa(int(port)))
}

func (e *Endpoints) String() string {
	return e.SourceText() + " -> " + e.TargetSpec
}
