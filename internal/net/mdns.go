package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"net"
	"os"
	"time"

	"github.com/hashicorp/mdns"
	log "github.com/sirupsen/logrus"
)

// DefaultService is the mDNS service type of the document server.
const DefaultService = "_sceneboard._tcp"

// ErrNoPeers is returned by discovery when nothing answered.
var ErrNoPeers = errors.New("no sceneboard hosts found")

// Peer is one discovered document server.
type Peer struct {
	Name string
	Addr string
	Info []string
}

func (p Peer) ShareURL() string {
	return fmt.Sprintf("ws://%s/ws", p.Addr)
}

// Advertise announces a server listening on port. Shut the returned server
// down to withdraw the announcement.
func Advertise(service string, port int, info ...string) (*mdns.Server, error) {
	if service == "" {
		service = DefaultService
	}
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}
	if len(info) == 0 {
		info = []string{"SceneBoard"}
	}

	zone, err := mdns.NewMDNSService(host, service, "", "", port, []net.IP{firstIPv4()}, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: zone, Logger: quietLogger()})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	log.WithFields(log.Fields{"component": "mdns", "service": service, "port": port}).Info("advertising")
	return server, nil
}

// Browse queries the LAN for service until timeout or ctx ends, calling
// found for every IPv4 peer.
func Browse(ctx context.Context, service string, timeout time.Duration, found func(Peer)) error {
	if service == "" {
		service = DefaultService
	}
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			found(Peer{
				Name: e.Name,
				Addr: net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port)),
				Info: e.InfoFields,
			})
		}
	}()

	params := mdns.DefaultParams(service)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	params.Logger = quietLogger()
	err := mdns.QueryContext(ctx, params)
	close(entries)
	<-done
	if err != nil {
		return fmt.Errorf("mdns browse: %w", err)
	}
	return nil
}

// quietLogger keeps the library's chatter out of stderr; everything we care
// about is logged through logrus.
func quietLogger() *stdlog.Logger {
	return stdlog.New(io.Discard, "", 0)
}
