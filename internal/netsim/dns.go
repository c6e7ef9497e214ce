package netsim

import (
	"fmt"
	"math"
)

// Ping reports count synthetic echo replies from name.
func (s *Simulator) Ping(name string, count int) ([]string, error) {
	res, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}
	if count < 1 {
		count = 1
	}

	lines := []string{fmt.Sprintf("PING %s (%s) 56(84) bytes of data.", res.Host, res.Address)}
	ttl := ttlFor(res.Host)
	tenths := make([]int, 0, count)
	for i := 1; i <= count; i++ {
		t := rttTenths(res.Host, i)
		tenths = append(tenths, t)
		lines = append(lines, fmt.Sprintf("64 bytes from %s (%s): icmp_seq=%d ttl=%d time=%s ms",
			res.Host, res.Address, i, ttl, fmtTenths(t)))
	}

	min, max, sum := tenths[0], tenths[0], 0
	for _, t := range tenths {
		if t < min {
			min = t
		}
		if t > max {
			max = t
		}
		sum += t
	}
	avg := float64(sum) / float64(count)
	var variance float64
	for _, t := range tenths {
		d := float64(t) - avg
		variance += d * d
	}
	mdev := math.Sqrt(variance / float64(count))
	elapsed := (count-1)*1000 + int(seed(res.Host)%200)

	lines = append(lines,
		"",
		fmt.Sprintf("--- %s ping statistics ---", res.Host),
		fmt.Sprintf("%d packets transmitted, %d received, 0%% packet loss, time %dms", count, count, elapsed),
		fmt.Sprintf("rtt min/avg/max/mdev = %s/%.1f/%s/%.1f ms", fmtTenths(min), avg/10, fmtTenths(max), mdev/10),
	)
	return lines, nil
}

// Dig renders a dig-style answer for name. Unresolvable names get an
// NXDOMAIN response rather than an error, matching the real tool.
func (s *Simulator) Dig(name string) []string {
	res, err := s.Resolve(name)
	if err != nil {
		id := seed(name) % 65536
		return []string{
			fmt.Sprintf("; <<>> DiG 9.18.24 <<>> %s", name),
			";; global options: +cmd",
			";; Got answer:",
			fmt.Sprintf(";; ->>HEADER<<- opcode: QUERY, status: NXDOMAIN, id: %d", id),
			";; flags: qr rd ra; QUERY: 1, ANSWER: 0, AUTHORITY: 0, ADDITIONAL: 0",
			"",
			";; QUESTION SECTION:",
			fmt.Sprintf(";%s.\t\t\tIN\tA", name),
			"",
			";; SERVER: 127.0.0.53#53(127.0.0.53)",
			fmt.Sprintf(";; MSG SIZE  rcvd: %d", 28+len(name)),
		}
	}

	id := seed(res.Host) % 65536
	return []string{
		fmt.Sprintf("; <<>> DiG 9.18.24 <<>> %s", res.Host),
		";; global options: +cmd",
		";; Got answer:",
		fmt.Sprintf(";; ->>HEADER<<- opcode: QUERY, status: NOERROR, id: %d", id),
		";; flags: qr rd ra; QUERY: 1, ANSWER: 1, AUTHORITY: 0, ADDITIONAL: 1",
		"",
		";; QUESTION SECTION:",
		fmt.Sprintf(";%s.\t\t\tIN\tA", res.Host),
		"",
		";; ANSWER SECTION:",
		fmt.Sprintf("%s.\t\t300\tIN\tA\t%s", res.Host, res.Address),
		"",
		fmt.Sprintf(";; Query time: %d msec", rttTenths(res.Host, 1)/10),
		";; SERVER: 127.0.0.53#53(127.0.0.53)",
		fmt.Sprintf(";; MSG SIZE  rcvd: %d", 56+len(res.Host)),
	}
}

// Nslookup renders an nslookup-style answer. On failure the returned
// lines carry the resolver's error text alongside a non-nil error so
// the caller can set the exit code.
func (s *Simulator) Nslookup(name string) ([]string, error) {
	header := []string{
		"Server:\t\t127.0.0.53",
		"Address:\t127.0.0.53#53",
		"",
	}
	res, err := s.Resolve(name)
	if err != nil {
		return append(header, fmt.Sprintf("** server can't find %s: NXDOMAIN", name)), err
	}
	return append(header,
		"Non-authoritative answer:",
		fmt.Sprintf("Name:\t%s", res.Host),
		fmt.Sprintf("Address: %s", res.Address),
	), nil
}
