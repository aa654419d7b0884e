//go:build !linux && !darwin

package cluster

import (
	"context"
	"net"
)

// Listen opens a plain TCP listener on platforms without SO_REUSEPORT
// support. Only one worker can bind the address, so clustering should be
// disabled here.
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, "tcp", addr)
}
