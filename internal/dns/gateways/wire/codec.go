package wire

import "github.com/dnsforge/dnsmgr/internal/dns/domain"

// Codec converts between domain.Message and the RFC 1035 wire format.
// Implementations are stateless and safe for concurrent use.
type Codec interface {
	// Encode serializes a message. It is deterministic and only fails if
	// a field exceeds its wire-format bounds.
	Encode(msg domain.Message) ([]byte, error)

	// Decode parses a complete DNS message. Malformed input yields one of
	// the domain sentinel errors, never a panic.
	Decode(data []byte) (domain.Message, error)
}
