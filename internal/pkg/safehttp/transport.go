// Package safehttp builds the HTTP client the relay uses to talk upstream.
package safehttp

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const dialTimeout = 5 * time.Second

// Options configures NewClient.
type Options struct {
	// Timeout bounds each request end to end. Zero means no client timeout.
	Timeout time.Duration
	// BlockPrivateAddresses rejects connections to private, loopback and
	// link-local addresses. Leave it off when the upstream is a local stub.
	BlockPrivateAddresses bool
}

// NewClient returns an instrumented client. Redirect handling is left to the
// caller.
func NewClient(opts Options) *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if opts.BlockPrivateAddresses {
		base.DialContext = guardedDial
	}
	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: otelhttp.NewTransport(base),
	}
}

// guardedDial rejects connections to private or loopback IP ranges to reduce SSRF risk.
func guardedDial(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(conn.RemoteAddr().String())
	ip := net.ParseIP(host)
	if ip == nil {
		conn.Close()
		return nil, fmt.Errorf("failed to parse remote IP for %q", addr)
	}

	if IsBlocked(ip) {
		conn.Close()
		return nil, fmt.Errorf("access to private IP %s is denied", ip)
	}

	return conn, nil
}

// IsBlocked reports whether ip is in a range the guarded dialer refuses.
func IsBlocked(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
