package domain

import (
	"fmt"
	"net"
	"strings"
)

// RData is the type-dependent payload of a resource record. It is a
// closed tagged variant keyed by the record's numeric type: A records
// decode to AData, name-typed records (CNAME, NS, PTR) to NameData, TXT
// to TXTData, and everything else falls back to RawData with the wire
// bytes exposed verbatim. Unknown record types are never an error.
type RData interface {
	fmt.Stringer
	isRData()
}

// AData is a 4-byte IPv4 address payload.
type AData struct {
	Addr [4]byte
}

func (AData) isRData() {}

// String renders the address as dotted-decimal text.
func (d AData) String() string {
	return net.IP(d.Addr[:]).String()
}

// ParseAData parses dotted-decimal text into an AData payload.
func ParseAData(s string) (AData, error) {
	ip := net.ParseIP(s)
	if ip == nil || ip.To4() == nil {
		return AData{}, fmt.Errorf("invalid IPv4 address: %q", s)
	}
	var d AData
	copy(d.Addr[:], ip.To4())
	return d, nil
}

// NameData is a domain-name payload, used by CNAME, NS, and PTR records.
type NameData struct {
	Target Name
}

func (NameData) isRData() {}

func (d NameData) String() string {
	return d.Target.String()
}

// TXTData is one or more character strings, each at most 255 bytes on
// the wire.
type TXTData struct {
	Strings []string
}

func (TXTData) isRData() {}

func (d TXTData) String() string {
	return strings.Join(d.Strings, " ")
}

// RawData carries the rdata bytes of any record type the codec has no
// structured decoding for. The bytes are preserved verbatim so encoding
// reproduces the original wire form.
type RawData struct {
	Bytes []byte
}

func (RawData) isRData() {}

func (d RawData) String() string {
	return fmt.Sprintf("\\# %d %x", len(d.Bytes), d.Bytes)
}
