package session

import (
	"context"
	"net"
	"time"
)

// Connectivity reports whether the remote API can be reached.
type Connectivity interface {
	Reachable(ctx context.Context) bool
}

// DialProbe opens a TCP connection to Address and closes it again.
type DialProbe struct {
	Address string
	Timeout time.Duration
}

func (p DialProbe) Reachable(ctx context.Context) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", p.Address)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
