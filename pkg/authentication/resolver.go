package authentication

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// Resolver turns the remote host reported by the caller into an IPv4
// address string for the %i placeholder.
type Resolver interface {
	ResolveIPv4(ctx context.Context, host string) (string, error)
}

var errNoIPv4 = errors.New("no IPv4 address")

// NetResolver resolves through the system resolver.
type NetResolver struct {
	Resolver *net.Resolver
	Timeout  time.Duration
}

// ResolveIPv4 returns the first IPv4 address of host. Literal addresses are
// returned without a lookup.
func (r NetResolver) ResolveIPv4(ctx context.Context, host string) (string, error) {
	if host == "" {
		return "", errNoIPv4
	}
	if ip := net.ParseIP(host); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return v4.String(), nil
		}
		return "", fmt.Errorf("%w: %s", errNoIPv4, host)
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	res := r.Resolver
	if res == nil {
		res = net.DefaultResolver
	}
	addrs, err := res.LookupIPAddr(ctx, host)
	if err != nil {
		return "", err
	}
	for _, a := range addrs {
		if v4 := a.IP.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return "", fmt.Errorf("%w: %s", errNoIPv4, host)
}
