package transport

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnsforge/dnsmgr/internal/dns/common/log"
)

// fakeConn is a scripted net.Conn.
type fakeConn struct {
	mu       sync.Mutex
	readData []byte
	readErr  error
	writeErr error
	written  [][]byte
	closed   int
	blockRd  chan struct{} // when set, Read blocks until Close
}

func (c *fakeConn) Read(b []byte) (int, error) {
	c.mu.Lock()
	block := c.blockRd
	c.mu.Unlock()
	if block != nil {
		<-block
		return 0, net.ErrClosed
	}
	if c.readErr != nil {
		return 0, c.readErr
	}
	n := copy(b, c.readData)
	return n, nil
}

func (c *fakeConn) Write(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	p := make([]byte, len(b))
	copy(p, b)
	c.written = append(c.written, p)
	return len(b), nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	if c.blockRd != nil {
		close(c.blockRd)
		c.blockRd = nil
	}
	return nil
}

func (c *fakeConn) LocalAddr() net.Addr                { return nil }
func (c *fakeConn) RemoteAddr() net.Addr               { return nil }
func (c *fakeConn) SetDeadline(t time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

func dialTo(conn net.Conn, err error) DialFunc {
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

func newSession(t *testing.T, conn *fakeConn, dialErr error) Session {
	t.Helper()
	factory := NewUDPFactory(Options{
		Dial:   dialTo(conn, dialErr),
		Logger: log.NewNoopLogger(),
	})
	return factory("192.0.2.53:53")
}

func open(t *testing.T, s Session) error {
	t.Helper()
	ch := make(chan error, 1)
	s.Open(func(err error) { ch <- err })
	select {
	case err := <-ch:
		return err
	case <-time.After(time.Second):
		t.Fatal("open callback never fired")
		return nil
	}
}

func TestUDPSession_OpenReportsDialError(t *testing.T) {
	dialErr := errors.New("network unreachable")
	s := newSession(t, nil, dialErr)
	defer s.Close()

	err := open(t, s)
	assert.ErrorIs(t, err, dialErr)
}

func TestUDPSession_SendWritesDatagram(t *testing.T) {
	conn := &fakeConn{}
	s := newSession(t, conn, nil)
	defer s.Close()
	require.NoError(t, open(t, s))

	ch := make(chan error, 1)
	s.Send([]byte{1, 2, 3}, func(err error) { ch <- err })
	require.NoError(t, <-ch)

	assert.Equal(t, [][]byte{{1, 2, 3}}, conn.written)
}

func TestUDPSession_ReceiveCompleteness(t *testing.T) {
	tests := []struct {
		name         string
		payloadLen   int
		wantComplete bool
	}{
		{"short datagram is complete", 40, true},
		{"buffer-filling datagram may be cut short", maxDatagramSize, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &fakeConn{readData: make([]byte, tt.payloadLen)}
			s := newSession(t, conn, nil)
			defer s.Close()
			require.NoError(t, open(t, s))

			type recv struct {
				p        []byte
				complete bool
				err      error
			}
			ch := make(chan recv, 1)
			s.Receive(func(p []byte, complete bool, err error) {
				ch <- recv{p, complete, err}
			})
			got := <-ch
			require.NoError(t, got.err)
			assert.Len(t, got.p, tt.payloadLen)
			assert.Equal(t, tt.wantComplete, got.complete)
		})
	}
}

func TestUDPSession_CloseUnblocksReceive(t *testing.T) {
	conn := &fakeConn{blockRd: make(chan struct{})}
	s := newSession(t, conn, nil)
	require.NoError(t, open(t, s))

	ch := make(chan error, 1)
	s.Receive(func(_ []byte, _ bool, err error) { ch <- err })

	require.NoError(t, s.Close())

	select {
	case err := <-ch:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("receive never unblocked after close")
	}
}

func TestUDPSession_CloseIsIdempotent(t *testing.T) {
	conn := &fakeConn{}
	s := newSession(t, conn, nil)
	require.NoError(t, open(t, s))

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
	assert.Equal(t, 1, conn.closed)
}

func TestUDPSession_OperationsAfterCloseFail(t *testing.T) {
	conn := &fakeConn{}
	s := newSession(t, conn, nil)
	require.NoError(t, open(t, s))
	require.NoError(t, s.Close())

	sendCh := make(chan error, 1)
	s.Send([]byte{1}, func(err error) { sendCh <- err })
	assert.ErrorIs(t, <-sendCh, net.ErrClosed)

	recvCh := make(chan error, 1)
	s.Receive(func(_ []byte, _ bool, err error) { recvCh <- err })
	assert.ErrorIs(t, <-recvCh, net.ErrClosed)
}
