// Package transport provides the connectionless datagram session the
// query client runs on. A session is single-use: it is opened for one
// query, carries one send and one receive, and is closed exactly once.
package transport

import (
	"context"
	"net"
)

// Session is an asynchronous, single-use datagram session bound to one
// remote address. Each operation reports its outcome through a callback
// that fires exactly once. The zero or more callbacks of a session are
// delivered serially; implementations must never invoke two callbacks
// concurrently.
type Session interface {
	// Open binds the session to its remote address and invokes ready
	// exactly once, with a nil error when the session can accept a send.
	Open(ready func(err error))

	// Send transmits one datagram and invokes done exactly once when the
	// transmission has been handed to the network or has failed.
	Send(p []byte, done func(err error))

	// Receive waits for one datagram and invokes done exactly once.
	// complete is false when the payload may have been cut short, in
	// which case p holds whatever arrived.
	Receive(done func(p []byte, complete bool, err error))

	// Close tears the session down. Closing unblocks any pending
	// operation, which then reports an error. Close is idempotent.
	Close() error
}

// Factory creates a session bound to the given "host:port" address.
// The query client uses one factory invocation per query, so concurrent
// queries never share a session.
type Factory func(addr string) Session

// DialFunc establishes the underlying network connection. It matches
// net.Dialer.DialContext so tests can substitute fake connections.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)
