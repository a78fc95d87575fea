package domain

import (
	"fmt"
	"strings"

	"golang.org/x/net/idna"
)

// Wire-format size limits for domain names per RFC 1035 section 2.3.4.
const (
	MaxLabelLength = 63  // bytes per label
	MaxNameLength  = 255 // bytes for the whole encoded name, terminator included
)

// Name is a domain name as an ordered sequence of labels, most specific
// first. The empty Name is the DNS root.
type Name []string

// ParseName converts a presentation-format domain name into a Name.
// Unicode input is mapped to its ASCII (punycode) form first, so callers
// can pass user input directly. A trailing dot is accepted and ignored.
func ParseName(s string) (Name, error) {
	ascii, err := idna.Lookup.ToASCII(strings.TrimSuffix(s, "."))
	if err != nil {
		return nil, fmt.Errorf("idna mapping failed for %q: %w: %w", s, ErrMalformedName, err)
	}
	if ascii == "" {
		return Name{}, nil
	}
	name := Name(strings.Split(ascii, "."))
	if err := name.Validate(); err != nil {
		return nil, err
	}
	return name, nil
}

// Validate checks the per-label and whole-name length limits.
func (n Name) Validate() error {
	for _, label := range n {
		if label == "" {
			return fmt.Errorf("empty label in %q: %w", n.String(), ErrMalformedName)
		}
		if len(label) > MaxLabelLength {
			return fmt.Errorf("label %q exceeds %d bytes: %w", label, MaxLabelLength, ErrMalformedName)
		}
	}
	if n.EncodedLen() > MaxNameLength {
		return fmt.Errorf("name %q exceeds %d encoded bytes: %w", n.String(), MaxNameLength, ErrMalformedName)
	}
	return nil
}

// EncodedLen returns the number of bytes the name occupies on the wire
// without compression: one length byte per label plus the label bytes,
// plus the terminating zero byte.
func (n Name) EncodedLen() int {
	total := 1
	for _, label := range n {
		total += 1 + len(label)
	}
	return total
}

// String renders the name in presentation format without a trailing dot.
// The root name renders as ".".
func (n Name) String() string {
	if len(n) == 0 {
		return "."
	}
	return strings.Join(n, ".")
}

// Equal reports whether two names have the same labels, compared
// case-insensitively as DNS requires.
func (n Name) Equal(other Name) bool {
	if len(n) != len(other) {
		return false
	}
	for i := range n {
		if !strings.EqualFold(n[i], other[i]) {
			return false
		}
	}
	return true
}
