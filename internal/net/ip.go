package net

import (
	"log/slog"
	"net"
)

// GetOutgoingIP returns the address other machines should use to reach
// this relay. It never fails; loopback is the last resort.
func GetOutgoingIP() (string, error) {
	// UDP "dial" sends nothing; it only asks the kernel for a route.
	if c, err := net.Dial("udp", "8.8.8.8:80"); err == nil {
		defer c.Close()
		if a, ok := c.LocalAddr().(*net.UDPAddr); ok && !a.IP.IsUnspecified() {
			return a.IP.String(), nil
		}
	}

	addrs, err := net.InterfaceAddrs()
	if err == nil {
		if ip, ok := pickLANAddr(addrs); ok {
			return ip, nil
		}
	}
	slog.Warn("no suitable local IP found, share link uses loopback", "err", err)
	return "127.0.0.1", nil
}

// pickLANAddr prefers a private IPv4 address, then any other non-loopback
// IPv4 address.
func pickLANAddr(addrs []net.Addr) (string, bool) {
	var other string
	for _, a := range addrs {
		n, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ip := n.IP.To4()
		if ip == nil || ip.IsLoopback() || ip.IsLinkLocalUnicast() {
			continue
		}
		if ip.IsPrivate() {
			return ip.String(), true
		}
		if other == "" {
			other = ip.String()
		}
	}
	return other, other != ""
}
