package netsim

import "fmt"

// Ifconfig renders the interface table of the simulated machine.
func (s *Simulator) Ifconfig() []string {
	addr := s.LocalAddress()
	mac := s.macAddress()
	rx := 1200 + s.localSeed%9000
	tx := 800 + s.localSeed%7000
	return []string{
		"eth0: flags=4163<UP,BROADCAST,RUNNING,MULTICAST>  mtu 1500",
		fmt.Sprintf("        inet %s  netmask 255.255.255.0  broadcast 10.0.2.255", addr),
		fmt.Sprintf("        ether %s  txqueuelen 1000  (Ethernet)", mac),
		fmt.Sprintf("        RX packets %d  bytes %d (%d.%d KiB)", rx, rx*311, rx*311/1024, (rx*311%1024)/103),
		fmt.Sprintf("        TX packets %d  bytes %d (%d.%d KiB)", tx, tx*247, tx*247/1024, (tx*247%1024)/103),
		"",
		"lo: flags=73<UP,LOOPBACK,RUNNING>  mtu 65536",
		"        inet 127.0.0.1  netmask 255.0.0.0",
		"        loop  txqueuelen 1000  (Local Loopback)",
	}
}

// IPAddr renders `ip addr` output over the same interface data.
func (s *Simulator) IPAddr() []string {
	addr := s.LocalAddress()
	mac := s.macAddress()
	return []string{
		"1: lo: <LOOPBACK,UP,LOWER_UP> mtu 65536 qdisc noqueue state UNKNOWN group default qlen 1000",
		"    link/loopback 00:00:00:00:00:00 brd 00:00:00:00:00:00",
		"    inet 127.0.0.1/8 scope host lo",
		"       valid_lft forever preferred_lft forever",
		"2: eth0: <BROADCAST,MULTICAST,UP,LOWER_UP> mtu 1500 qdisc fq_codel state UP group default qlen 1000",
		fmt.Sprintf("    link/ether %s brd ff:ff:ff:ff:ff:ff", mac),
		fmt.Sprintf("    inet %s/24 brd 10.0.2.255 scope global eth0", addr),
		"       valid_lft forever preferred_lft forever",
	}
}

// Netstat renders the connection table. Every pinned host appears as
// one established connection so learners can cross-check addresses
// discovered elsewhere.
func (s *Simulator) Netstat() []string {
	lines := []string{
		"Active Internet connections (w/o servers)",
		"Proto Recv-Q Send-Q Local Address           Foreign Address         State",
	}
	local := s.LocalAddress()
	for _, name := range s.order {
		res, err := s.Resolve(name)
		if err != nil {
			continue
		}
		localPort := 49152 + seed(name)%16000
		remotePort := 443
		if h, ok := s.pinned(name); ok && h.Banner != "" {
			remotePort = 22
		}
		lines = append(lines, fmt.Sprintf("tcp        0      0 %-23s %-23s ESTABLISHED",
			fmt.Sprintf("%s:%d", local, localPort),
			fmt.Sprintf("%s:%d", res.Address, remotePort)))
	}
	return lines
}

func (s *Simulator) macAddress() string {
	return fmt.Sprintf("52:54:00:%02x:%02x:%02x",
		byte(s.localSeed>>16), byte(s.localSeed>>8), byte(s.localSeed))
}
