package net

import (
	"fmt"
	"net"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// GetOutgoingIP finds the preferred local IP address for the host to share.
func GetOutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// Offline networks still have a LAN address on some interface.
		return firstIPv4().String()
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// firstIPv4 returns the first address of an interface that is up and not a
// loopback, or 127.0.0.1.
func firstIPv4() net.IP {
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	log.WithField("component", "net").Warn("no suitable local IP found, share link uses loopback")
	return net.IPv4(127, 0, 0, 1)
}

// ListenPort extracts the port of a listen address such as ":8888".
func ListenPort(addr string) (int, error) {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return 0, fmt.Errorf("net: port %q: %w", port, err)
	}
	return p, nil
}

// ShareURL is the websocket address followers dial to watch this host.
func ShareURL(host string, port int) string {
	return fmt.Sprintf("ws://%s/ws", net.JoinHostPort(host, strconv.Itoa(port)))
}
