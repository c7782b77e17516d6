package topology

import (
	"fmt"
	"net"
	"time"
)

// =============================================================================
// Port Allocation
// =============================================================================

// PortFree reports whether a candidate host port is free. Injected so that
// planning stays deterministic in tests.
type PortFree func(port int) bool

// ProbeLocalPort is the production prober: a port is taken when something on
// the host accepts a TCP connection on it.
func ProbeLocalPort(port int) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("localhost:%d", port), 250*time.Millisecond)
	if err != nil {
		return true
	}
	conn.Close()
	return false
}

// AllocatePorts assigns count host ports as an increasing sequence starting
// at start, skipping ports the prober reports as taken instead of failing.
// Ports within one allocation are never duplicated.
func AllocatePorts(start, count int, free PortFree) ([]int, error) {
	if free == nil {
		free = ProbeLocalPort
	}
	ports := make([]int, 0, count)
	for candidate := start; len(ports) < count; candidate++ {
		if candidate > 65535 {
			return nil, fmt.Errorf("ran out of host ports allocating %d ports from %d", count, start)
		}
		if free(candidate) {
			ports = append(ports, candidate)
		}
	}
	return ports, nil
}
