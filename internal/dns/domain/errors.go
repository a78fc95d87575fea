package domain

import "errors"

// Decode and transport failures are classified into a small closed set of
// sentinel errors. Callers match them with errors.Is after any amount of
// fmt.Errorf("...: %w", ...) wrapping.
var (
	// ErrTruncated indicates the buffer ended before a declared field.
	ErrTruncated = errors.New("message truncated")

	// ErrMalformedName indicates an invalid domain name encoding: a label
	// over 63 bytes, a name over 255 encoded bytes, or a compression
	// pointer that does not point strictly backward.
	ErrMalformedName = errors.New("malformed domain name")

	// ErrMalformedRecord indicates a resource record whose RDLENGTH does
	// not match the bytes its rdata actually occupies on the wire.
	ErrMalformedRecord = errors.New("malformed resource record")

	// ErrTransportFailure indicates the underlying connect, send, or
	// receive operation reported an error.
	ErrTransportFailure = errors.New("transport failure")

	// ErrIncompleteDatagram indicates the transport delivered a datagram
	// it could not guarantee was received in full.
	ErrIncompleteDatagram = errors.New("incomplete datagram")

	// ErrEmptyPayload indicates the transport signaled success but
	// delivered zero bytes.
	ErrEmptyPayload = errors.New("empty payload")
)

var errNilRData = errors.New("resource record has no rdata")
