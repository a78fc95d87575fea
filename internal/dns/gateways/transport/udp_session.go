package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/dnsforge/dnsmgr/internal/dns/common/log"
)

// maxDatagramSize is the classic DNS-over-UDP payload limit (RFC 1035
// section 4.2.1). A read that fills the buffer completely may have been
// cut short by the kernel, so it is reported as incomplete.
const maxDatagramSize = 512

// UDPSession implements Session over a connected UDP socket. Blocking
// socket calls run on their own goroutine; completion callbacks are
// handed to an injectable executor so callers can serialize delivery
// onto a context of their choosing.
type UDPSession struct {
	addr   string
	dial   DialFunc
	exec   func(func())
	logger log.Logger

	mu     sync.Mutex
	conn   net.Conn
	closed bool

	deliverMu sync.Mutex
}

// Options configures UDP session construction. Zero values select the
// defaults: net.Dialer, inline callback delivery, and the global logger.
type Options struct {
	Dial   DialFunc
	Exec   func(func())
	Logger log.Logger
}

// NewUDPFactory returns a Factory producing UDP sessions with the given
// options.
func NewUDPFactory(opts Options) Factory {
	if opts.Dial == nil {
		opts.Dial = (&net.Dialer{}).DialContext
	}
	if opts.Exec == nil {
		opts.Exec = func(f func()) { f() }
	}
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	return func(addr string) Session {
		return &UDPSession{
			addr:   addr,
			dial:   opts.Dial,
			exec:   opts.Exec,
			logger: opts.Logger,
		}
	}
}

// Open dials the remote address and reports readiness once.
func (s *UDPSession) Open(ready func(err error)) {
	go func() {
		conn, err := s.dial(context.Background(), "udp", s.addr)
		if err != nil {
			s.deliver(func() { ready(fmt.Errorf("dial %s: %w", s.addr, err)) })
			return
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = conn.Close()
			s.deliver(func() { ready(net.ErrClosed) })
			return
		}
		s.conn = conn
		s.mu.Unlock()

		s.logger.Debug(map[string]any{"addr": s.addr}, "UDP session ready")
		s.deliver(func() { ready(nil) })
	}()
}

// Send writes one datagram and reports the outcome once.
func (s *UDPSession) Send(p []byte, done func(err error)) {
	conn := s.current()
	if conn == nil {
		s.deliver(func() { done(net.ErrClosed) })
		return
	}
	go func() {
		_, err := conn.Write(p)
		s.deliver(func() { done(err) })
	}()
}

// Receive reads one datagram and reports it once. A payload that fills
// the receive buffer exactly is flagged as possibly incomplete.
func (s *UDPSession) Receive(done func(p []byte, complete bool, err error)) {
	conn := s.current()
	if conn == nil {
		s.deliver(func() { done(nil, false, net.ErrClosed) })
		return
	}
	go func() {
		buf := make([]byte, maxDatagramSize)
		n, err := conn.Read(buf)
		if err != nil {
			s.deliver(func() { done(nil, false, err) })
			return
		}
		p := make([]byte, n)
		copy(p, buf[:n])
		s.deliver(func() { done(p, n < maxDatagramSize, nil) })
	}()
}

// Close shuts the session down. Pending reads and writes unblock with an
// error. Safe to call more than once.
func (s *UDPSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *UDPSession) current() net.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.conn
}

// deliver serializes callback delivery through the executor so no two
// callbacks of one session ever run concurrently.
func (s *UDPSession) deliver(f func()) {
	s.exec(func() {
		s.deliverMu.Lock()
		defer s.deliverMu.Unlock()
		f()
	})
}

var _ Session = (*UDPSession)(nil)
