// Package query implements a single-flight DNS query client: one
// request, one UDP session, one response, delivered exactly once.
//
// The core is a callback-driven state machine over a transport.Session;
// the blocking Query method is a thin adapter that waits for the single
// completion callback, so both entry points share one state machine.
package query

import (
	"context"
	"fmt"
	"sync"

	"github.com/dnsforge/dnsmgr/internal/dns/common/log"
	"github.com/dnsforge/dnsmgr/internal/dns/domain"
	"github.com/dnsforge/dnsmgr/internal/dns/gateways/transport"
	"github.com/dnsforge/dnsmgr/internal/dns/gateways/wire"
)

// DefaultServer is used when neither the client nor the request names a
// resolver address.
const DefaultServer = "8.8.8.8:53"

// State is the lifecycle position of one query flight.
type State uint8

const (
	StateIdle State = iota
	StateConnecting
	StateReady
	StateAwaitingResponse
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Request describes one DNS question to put on the wire. The caller
// supplies the transaction id; the client sets RD and class IN.
type Request struct {
	ID     uint16
	Name   domain.Name
	Type   domain.RRType
	Server string // optional "host:port" override for this request
}

// Client issues single-flight DNS queries. Concurrent calls are fully
// independent: every query gets its own transport session, and clients
// hold no per-query state.
type Client struct {
	codec    wire.Codec
	sessions transport.Factory
	server   string
	logger   log.Logger
}

// Options configures a Client. Zero values select the defaults: the UDP
// wire codec, real UDP sessions, DefaultServer, and the global logger.
type Options struct {
	Codec    wire.Codec
	Sessions transport.Factory
	Server   string
	Logger   log.Logger
}

// New creates a query client.
func New(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	if opts.Codec == nil {
		opts.Codec = wire.NewUDPCodec(opts.Logger)
	}
	if opts.Sessions == nil {
		opts.Sessions = transport.NewUDPFactory(transport.Options{Logger: opts.Logger})
	}
	if opts.Server == "" {
		opts.Server = DefaultServer
	}
	return &Client{
		codec:    opts.Codec,
		sessions: opts.Sessions,
		server:   opts.Server,
		logger:   opts.Logger,
	}
}

// Flight is one in-progress query. It owns its session exclusively and
// delivers its completion callback at most once, always after the
// session has been closed.
type Flight struct {
	session transport.Session
	logger  log.Logger

	mu        sync.Mutex
	state     State
	delivered bool
	done      func(domain.Message, error)
}

// State returns the flight's current lifecycle position.
func (f *Flight) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Abandon closes the flight's session without delivering a result to
// the abandoning caller. Any pending transport operation unblocks with
// an error and the flight fails through its normal terminal path. This
// is the only external cancellation mechanism; the client enforces no
// deadline of its own.
func (f *Flight) Abandon() {
	_ = f.session.Close()
}

// Start begins a query and returns immediately. done fires exactly once
// with either the decoded response or an error from the failure
// taxonomy; the session is torn down before done runs.
func (c *Client) Start(req Request, done func(domain.Message, error)) *Flight {
	server := req.Server
	if server == "" {
		server = c.server
	}

	f := &Flight{
		session: c.sessions(server),
		logger:  c.logger,
		state:   StateConnecting,
		done:    done,
	}

	msg, err := domain.NewQuery(req.ID, domain.Question{
		Name:  req.Name,
		Type:  req.Type,
		Class: domain.RRClassIN,
	})
	if err != nil {
		f.finish(domain.Message{}, err)
		return f
	}

	c.logger.Debug(map[string]any{
		"id":     req.ID,
		"name":   req.Name.String(),
		"type":   req.Type.String(),
		"server": server,
	}, "Starting DNS query")

	f.session.Open(func(err error) {
		if err != nil {
			f.finish(domain.Message{}, transportError("connect", err))
			return
		}
		if !f.advance(StateReady) {
			return
		}
		data, err := c.codec.Encode(msg)
		if err != nil {
			f.finish(domain.Message{}, err)
			return
		}
		f.session.Send(data, func(err error) {
			if err != nil {
				f.finish(domain.Message{}, transportError("send", err))
				return
			}
			if !f.advance(StateAwaitingResponse) {
				return
			}
			f.session.Receive(func(p []byte, complete bool, err error) {
				switch {
				case err != nil:
					f.finish(domain.Message{}, transportError("receive", err))
				case !complete:
					f.finish(domain.Message{}, fmt.Errorf("datagram cut short at %d bytes: %w", len(p), domain.ErrIncompleteDatagram))
				case len(p) == 0:
					f.finish(domain.Message{}, domain.ErrEmptyPayload)
				default:
					resp, derr := c.codec.Decode(p)
					f.finish(resp, derr)
				}
			})
		})
	})

	return f
}

// Query is the blocking face of Start. It suspends the caller until the
// single completion callback fires and translates a delivered error into
// a returned one. Context expiry abandons the flight (closing its
// session) and returns ctx.Err(); the internal delivery still happens
// exactly once, into a buffer nobody reads.
func (c *Client) Query(ctx context.Context, req Request) (domain.Message, error) {
	type outcome struct {
		msg domain.Message
		err error
	}
	ch := make(chan outcome, 1)

	f := c.Start(req, func(msg domain.Message, err error) {
		ch <- outcome{msg: msg, err: err}
	})

	select {
	case o := <-ch:
		return o.msg, o.err
	case <-ctx.Done():
		f.Abandon()
		return domain.Message{}, ctx.Err()
	}
}

// advance moves the flight to the next state unless it already reached
// a terminal one (an abandoned flight may see late callbacks).
func (f *Flight) advance(next State) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delivered {
		return false
	}
	f.state = next
	return true
}

// finish is the single terminal path: it marks the flight delivered,
// closes the session, and only then invokes the completion callback.
// Repeat calls are no-ops, so misbehaving transports cannot cause a
// second delivery.
func (f *Flight) finish(msg domain.Message, err error) {
	f.mu.Lock()
	if f.delivered {
		f.mu.Unlock()
		return
	}
	f.delivered = true
	if err != nil {
		f.state = StateFailed
	} else {
		f.state = StateCompleted
	}
	f.mu.Unlock()

	_ = f.session.Close()

	if err != nil {
		f.logger.Debug(map[string]any{"error": err.Error()}, "Query failed")
	}
	f.done(msg, err)
}

func transportError(stage string, err error) error {
	return fmt.Errorf("%s: %w: %w", stage, domain.ErrTransportFailure, err)
}
