package net

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/mdns"
)

const ServiceType = "_sharedboard._tcp"

var ErrNoRelay = errors.New("net: no relay found on the local network")

// Advertise announces a relay listening on port. Call Shutdown on the
// returned server to withdraw it.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, []string{"SharedBoard"})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Discover browses for an advertised relay and returns the first IPv4
// host:port it finds.
func Discover(ctx context.Context, timeout time.Duration) (string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	errc := make(chan error, 1)
	go func() {
		err := mdns.Query(params)
		close(entries)
		errc <- err
	}()
	drain := func() {
		go func() {
			for range entries {
			}
		}()
	}

	for {
		select {
		case e, ok := <-entries:
			if !ok {
				if err := <-errc; err != nil {
					return "", fmt.Errorf("mdns query: %w", err)
				}
				return "", ErrNoRelay
			}
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			drain()
			return e.AddrV4.String() + ":" + strconv.Itoa(e.Port), nil
		case <-ctx.Done():
			drain()
			return "", ctx.Err()
		}
	}
}
