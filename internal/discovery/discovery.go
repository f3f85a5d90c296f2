// Package discovery advertises the web UI on the local network over mDNS.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/grandcat/zeroconf"
)

const (
	ServiceType = "_http._tcp"
	Domain      = "local."
)

// Registration is the part of *zeroconf.Server Advertise needs.
type Registration interface {
	Shutdown()
}

type registerFunc func(instance, service, domain string, port int, text []string, ifaces []net.Interface) (Registration, error)

var register registerFunc = func(instance, service, domain string, port int, text []string, ifaces []net.Interface) (Registration, error) {
	return zeroconf.Register(instance, service, domain, port, text, ifaces)
}

// Advertise registers instance for the HTTP server bound to listenAddr and keeps the
// record alive until ctx is cancelled.
func Advertise(ctx context.Context, instance string, listenAddr string, logger *slog.Logger) error {
	port, err := PortOf(listenAddr)
	if err != nil {
		return err
	}
	instance = strings.TrimSpace(instance)
	if instance == "" {
		return errors.New("discovery instance name is empty")
	}

	server, err := register(instance, ServiceType, Domain, port, TXT(), nil)
	if err != nil {
		return fmt.Errorf("register mdns service %q: %w", instance, err)
	}
	if logger != nil {
		logger.Info("mdns advertised", "instance", instance, "service", ServiceType, "port", port)
	}

	<-ctx.Done()
	server.Shutdown()
	return nil
}

// TXT returns the records published with the service.
func TXT() []string {
	return []string{"path=/"}
}

// PortOf extracts the numeric port of a listen address such as ":8080".
func PortOf(listenAddr string) (int, error) {
	_, portText, err := net.SplitHostPort(strings.TrimSpace(listenAddr))
	if err != nil {
		return 0, fmt.Errorf("parse listen address %q: %w", listenAddr, err)
	}
	port, err := strconv.Atoi(portText)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("listen address %q has no usable port", listenAddr)
	}
	return port, nil
}
