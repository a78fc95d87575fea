// Package wire implements encoding and decoding of DNS messages in the
// RFC 1035 wire format: a 12-byte big-endian header followed by the
// question, answer, authority, and additional sections. Name compression
// is handled on decode only; the encoder always writes names in full.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/dnsforge/dnsmgr/internal/dns/common/log"
	"github.com/dnsforge/dnsmgr/internal/dns/domain"
)

const (
	headerLen         = 12
	maxSectionEntries = 0xFFFF
	maxRDataLen       = 0xFFFF
	compressionMask   = 0xC0
)

// udpCodec implements Codec for standard DNS over UDP messages.
type udpCodec struct {
	logger log.Logger
}

// NewUDPCodec creates a codec instance using the provided logger.
func NewUDPCodec(logger log.Logger) *udpCodec {
	return &udpCodec{logger: logger}
}

// Encode serializes msg into wire format. The four section counts are
// derived from the actual section lengths, so a message that encodes
// successfully always carries consistent counts.
func (c *udpCodec) Encode(msg domain.Message) ([]byte, error) {
	sections := []struct {
		name string
		rrs  []domain.ResourceRecord
	}{
		{"answer", msg.Answers},
		{"authority", msg.Authority},
		{"additional", msg.Additional},
	}

	if len(msg.Questions) > maxSectionEntries {
		return nil, fmt.Errorf("too many questions: %d", len(msg.Questions))
	}
	for _, sec := range sections {
		if len(sec.rrs) > maxSectionEntries {
			return nil, fmt.Errorf("too many %s records: %d", sec.name, len(sec.rrs))
		}
	}

	var buf bytes.Buffer
	writeUint16(&buf, msg.ID)
	writeUint16(&buf, msg.Flags.Pack())
	writeUint16(&buf, uint16(len(msg.Questions)))
	writeUint16(&buf, uint16(len(msg.Answers)))
	writeUint16(&buf, uint16(len(msg.Authority)))
	writeUint16(&buf, uint16(len(msg.Additional)))

	for i, q := range msg.Questions {
		if err := encodeName(&buf, q.Name); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		writeUint16(&buf, uint16(q.Type))
		writeUint16(&buf, uint16(q.Class))
	}

	for _, sec := range sections {
		for i, rr := range sec.rrs {
			if err := encodeRecord(&buf, rr); err != nil {
				return nil, fmt.Errorf("%s record %d: %w", sec.name, i, err)
			}
		}
	}

	c.logger.Debug(map[string]any{
		"id":   msg.ID,
		"size": buf.Len(),
	}, "Encoded DNS message")

	return buf.Bytes(), nil
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	_ = binary.Write(buf, binary.BigEndian, v)
}

// encodeName writes a domain name as length-prefixed labels terminated
// by a zero byte. Compression pointers are never emitted.
func encodeName(buf *bytes.Buffer, n domain.Name) error {
	if err := n.Validate(); err != nil {
		return err
	}
	for _, label := range n {
		buf.WriteByte(byte(len(label)))
		buf.WriteString(label)
	}
	buf.WriteByte(0)
	return nil
}

func encodeRecord(buf *bytes.Buffer, rr domain.ResourceRecord) error {
	if err := encodeName(buf, rr.Name); err != nil {
		return err
	}
	writeUint16(buf, uint16(rr.Type))
	writeUint16(buf, uint16(rr.Class))
	_ = binary.Write(buf, binary.BigEndian, uint32(rr.TTL))

	rdata, err := encodeRData(rr.Data)
	if err != nil {
		return err
	}
	if len(rdata) > maxRDataLen {
		return fmt.Errorf("rdata too large: %d bytes", len(rdata))
	}
	writeUint16(buf, uint16(len(rdata)))
	buf.Write(rdata)
	return nil
}

func encodeRData(d domain.RData) ([]byte, error) {
	switch v := d.(type) {
	case domain.AData:
		return v.Addr[:], nil
	case domain.NameData:
		var b bytes.Buffer
		if err := encodeName(&b, v.Target); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	case domain.TXTData:
		var b bytes.Buffer
		for _, s := range v.Strings {
			if len(s) > 255 {
				return nil, fmt.Errorf("TXT string too long: %d bytes", len(s))
			}
			b.WriteByte(byte(len(s)))
			b.WriteString(s)
		}
		return b.Bytes(), nil
	case domain.RawData:
		return v.Bytes, nil
	case nil:
		return nil, fmt.Errorf("rdata must not be nil")
	default:
		return nil, fmt.Errorf("unsupported rdata variant %T", d)
	}
}

// Decode parses a complete DNS message. The section counts declared in
// the header are authoritative: exactly that many entries are read per
// section, and running out of buffer yields domain.ErrTruncated.
func (c *udpCodec) Decode(data []byte) (domain.Message, error) {
	if len(data) < headerLen {
		return domain.Message{}, fmt.Errorf("header needs %d bytes, have %d: %w", headerLen, len(data), domain.ErrTruncated)
	}

	msg := domain.Message{
		ID:    binary.BigEndian.Uint16(data[0:2]),
		Flags: domain.UnpackFlags(binary.BigEndian.Uint16(data[2:4])),
	}
	qdCount := int(binary.BigEndian.Uint16(data[4:6]))
	anCount := int(binary.BigEndian.Uint16(data[6:8]))
	nsCount := int(binary.BigEndian.Uint16(data[8:10]))
	arCount := int(binary.BigEndian.Uint16(data[10:12]))

	off := headerLen
	var err error

	for i := 0; i < qdCount; i++ {
		var q domain.Question
		q, off, err = decodeQuestion(data, off)
		if err != nil {
			return domain.Message{}, fmt.Errorf("question %d: %w", i, err)
		}
		msg.Questions = append(msg.Questions, q)
	}

	if msg.Answers, off, err = decodeSection(data, off, anCount, "answer"); err != nil {
		return domain.Message{}, err
	}
	if msg.Authority, off, err = decodeSection(data, off, nsCount, "authority"); err != nil {
		return domain.Message{}, err
	}
	if msg.Additional, _, err = decodeSection(data, off, arCount, "additional"); err != nil {
		return domain.Message{}, err
	}

	c.logger.Debug(map[string]any{
		"id":      msg.ID,
		"rcode":   msg.Flags.RCode.String(),
		"answers": len(msg.Answers),
		"size":    len(data),
	}, "Decoded DNS message")

	return msg, nil
}

func decodeQuestion(data []byte, off int) (domain.Question, int, error) {
	name, off, err := decodeName(data, off)
	if err != nil {
		return domain.Question{}, 0, err
	}
	if off+4 > len(data) {
		return domain.Question{}, 0, fmt.Errorf("qtype/qclass: %w", domain.ErrTruncated)
	}
	q := domain.Question{
		Name:  name,
		Type:  domain.RRType(binary.BigEndian.Uint16(data[off : off+2])),
		Class: domain.RRClass(binary.BigEndian.Uint16(data[off+2 : off+4])),
	}
	return q, off + 4, nil
}

func decodeSection(data []byte, off, count int, section string) ([]domain.ResourceRecord, int, error) {
	var rrs []domain.ResourceRecord
	for i := 0; i < count; i++ {
		rr, next, err := decodeRecord(data, off)
		if err != nil {
			return nil, 0, fmt.Errorf("%s record %d: %w", section, i, err)
		}
		rrs = append(rrs, rr)
		off = next
	}
	return rrs, off, nil
}

func decodeRecord(data []byte, off int) (domain.ResourceRecord, int, error) {
	name, off, err := decodeName(data, off)
	if err != nil {
		return domain.ResourceRecord{}, 0, err
	}
	if off+10 > len(data) {
		return domain.ResourceRecord{}, 0, fmt.Errorf("record fixed fields: %w", domain.ErrTruncated)
	}

	rr := domain.ResourceRecord{
		Name:  name,
		Type:  domain.RRType(binary.BigEndian.Uint16(data[off : off+2])),
		Class: domain.RRClass(binary.BigEndian.Uint16(data[off+2 : off+4])),
		TTL:   int32(binary.BigEndian.Uint32(data[off+4 : off+8])),
	}
	rdLen := int(binary.BigEndian.Uint16(data[off+8 : off+10]))
	off += 10

	if off+rdLen > len(data) {
		return domain.ResourceRecord{}, 0, fmt.Errorf("rdata needs %d bytes: %w", rdLen, domain.ErrTruncated)
	}
	rr.Data, err = decodeRData(data, off, rdLen, rr.Type)
	if err != nil {
		return domain.ResourceRecord{}, 0, err
	}
	return rr, off + rdLen, nil
}

// decodeRData interprets rdLen bytes at off according to the record
// type. Name-typed rdata is decompressed against the whole message;
// RDLENGTH is checked against the compressed on-wire size, not the
// expanded name.
func decodeRData(data []byte, off, rdLen int, t domain.RRType) (domain.RData, error) {
	switch t {
	case domain.RRTypeA:
		if rdLen != 4 {
			return nil, fmt.Errorf("A rdata is %d bytes, want 4: %w", rdLen, domain.ErrMalformedRecord)
		}
		var d domain.AData
		copy(d.Addr[:], data[off:off+4])
		return d, nil

	case domain.RRTypeCNAME, domain.RRTypeNS, domain.RRTypePTR:
		target, end, err := decodeName(data, off)
		if err != nil {
			return nil, err
		}
		if end-off != rdLen {
			return nil, fmt.Errorf("%s rdata consumed %d of %d declared bytes: %w", t, end-off, rdLen, domain.ErrMalformedRecord)
		}
		return domain.NameData{Target: target}, nil

	case domain.RRTypeTXT:
		var d domain.TXTData
		for i := off; i < off+rdLen; {
			l := int(data[i])
			if i+1+l > off+rdLen {
				return nil, fmt.Errorf("TXT string runs past rdata: %w", domain.ErrMalformedRecord)
			}
			d.Strings = append(d.Strings, string(data[i+1:i+1+l]))
			i += 1 + l
		}
		return d, nil

	default:
		raw := make([]byte, rdLen)
		copy(raw, data[off:off+rdLen])
		return domain.RawData{Bytes: raw}, nil
	}
}

// decodeName reads a possibly compressed domain name starting at off.
// It returns the expanded name and the offset just past the name in the
// original (non-expanded) byte stream.
//
// Termination is guaranteed without a visited-set: every compression
// pointer must target an offset strictly below the previous jump target
// (or the name's own start for the first pointer), so the chain of jump
// targets is strictly decreasing. The expanded name is additionally
// capped at MaxNameLength bytes.
func decodeName(data []byte, off int) (domain.Name, int, error) {
	var name domain.Name
	var encodedLen int

	pos := off
	end := -1    // offset past the name at the top level, set at first pointer
	limit := off // next pointer must target strictly below this

	for {
		if pos >= len(data) {
			return nil, 0, fmt.Errorf("name at offset %d: %w", off, domain.ErrTruncated)
		}
		b := int(data[pos])
		switch {
		case b == 0:
			if end < 0 {
				end = pos + 1
			}
			return name, end, nil

		case b&compressionMask == compressionMask:
			if pos+1 >= len(data) {
				return nil, 0, fmt.Errorf("compression pointer at offset %d: %w", pos, domain.ErrTruncated)
			}
			target := int(binary.BigEndian.Uint16(data[pos:pos+2]) & 0x3FFF)
			if target >= limit {
				return nil, 0, fmt.Errorf("compression pointer at offset %d targets %d (limit %d): %w", pos, target, limit, domain.ErrMalformedName)
			}
			if end < 0 {
				end = pos + 2
			}
			limit = target
			pos = target

		case b&compressionMask != 0:
			// 0x40 and 0x80 label type bits are reserved.
			return nil, 0, fmt.Errorf("reserved label type 0x%02x at offset %d: %w", b&compressionMask, pos, domain.ErrMalformedName)

		default:
			if pos+1+b > len(data) {
				return nil, 0, fmt.Errorf("label at offset %d: %w", pos, domain.ErrTruncated)
			}
			encodedLen += 1 + b
			if encodedLen+1 > domain.MaxNameLength {
				return nil, 0, fmt.Errorf("name at offset %d exceeds %d bytes: %w", off, domain.MaxNameLength, domain.ErrMalformedName)
			}
			name = append(name, string(data[pos+1:pos+1+b]))
			pos += 1 + b
		}
	}
}

var _ Codec = (*udpCodec)(nil)
