// Package netsim produces deterministic synthetic responses for the
// network-flavored commands. Every value a host exhibits (address,
// latency, ttl, ports) derives from an FNV-1a hash of its normalized
// name, so output is identical across runs without any real I/O.
// Adventure content may pin specific hosts to fixed addresses, page
// bodies, and login banners; hosts it does not mention still resolve.
//
// Transfers are the only operations with side effects, and those land
// exclusively in the virtual filesystem.
package netsim

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"strings"

	"golang.org/x/net/idna"
)

// ErrUnknownHost is returned when a name cannot be normalized into a
// resolvable hostname.
var ErrUnknownHost = errors.New("unknown host")

// Host pins simulator data for one named host.
type Host struct {
	Name    string
	Address string // fixed IPv4; derived from the name when empty
	Body    string // page served by curl/wget; generated when empty
	Banner  string // login banner shown by ssh
}

// Resolution is the address data a name resolves to.
type Resolution struct {
	Host    string // normalized name
	Address string
}

// Simulator holds the deterministic network model for one session.
type Simulator struct {
	local     string
	localSeed uint64
	hosts     map[string]Host
	order     []string
}

// New builds a simulator for a machine named local. Pinned hosts keep
// their declaration order in outputs that enumerate them.
func New(local string, hosts ...Host) *Simulator {
	s := &Simulator{
		local:     local,
		localSeed: seed(local),
		hosts:     make(map[string]Host),
	}
	for _, h := range hosts {
		name, err := normalize(h.Name)
		if err != nil {
			continue
		}
		if _, ok := s.hosts[name]; !ok {
			s.order = append(s.order, name)
		}
		h.Name = name
		s.hosts[name] = h
	}
	return s
}

// Resolve maps a name to its synthetic address. IP literals resolve to
// themselves; anything IDNA rejects is the unknown-host case.
func (s *Simulator) Resolve(name string) (Resolution, error) {
	if ip := net.ParseIP(name); ip != nil {
		return Resolution{Host: name, Address: name}, nil
	}
	norm, err := normalize(name)
	if err != nil {
		return Resolution{}, fmt.Errorf("%s: %w", name, ErrUnknownHost)
	}
	if norm == "localhost" {
		return Resolution{Host: norm, Address: "127.0.0.1"}, nil
	}
	if h, ok := s.hosts[norm]; ok && h.Address != "" {
		return Resolution{Host: norm, Address: h.Address}, nil
	}
	return Resolution{Host: norm, Address: derivedAddress(norm)}, nil
}

// LocalAddress is the address of the simulated machine itself.
func (s *Simulator) LocalAddress() string {
	return fmt.Sprintf("10.0.2.%d", 2+s.localSeed%250)
}

func (s *Simulator) pinned(name string) (Host, bool) {
	h, ok := s.hosts[name]
	return h, ok
}

func normalize(name string) (string, error) {
	name = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")
	if name == "" {
		return "", fmt.Errorf("empty name: %w", ErrUnknownHost)
	}
	norm, err := idna.Lookup.ToASCII(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, ErrUnknownHost)
	}
	return norm, nil
}

func seed(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

func derivedAddress(name string) string {
	return fmt.Sprintf("203.0.113.%d", 2+seed(name)%250)
}

// rttTenths returns the round-trip time for one probe in tenths of a
// millisecond.
func rttTenths(host string, probe int) int {
	base := 80 + int(seed(host)%400)
	jitter := int(seed(fmt.Sprintf("%s#%d", host, probe)) % 60)
	return base + jitter
}

func ttlFor(host string) int {
	return 64 - int(seed(host)%20)
}

func fmtTenths(t int) string {
	return fmt.Sprintf("%d.%d", t/10, t%10)
}
