package orchestrator

import (
	"net"
	"strconv"
)

func itoa(n int) string { return strconv.Itoa(n) }

// localAdvertiseHost returns the local IP address renderers on the LAN
// should use to reach this process's HTTP server. Dialing a UDP address
// never sends a packet; it only makes the OS pick the outbound interface,
// which is the standard library idiom for this (no third-party dependency
// in the pack addresses "what's my LAN-facing IP").
func localAdvertiseHost() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "127.0.0.1"
	}
	return addr.IP.String()
}
