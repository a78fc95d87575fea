package domain

import "fmt"

// Message is a complete DNS message: header fields plus the four
// sections of RFC 1035 section 4.1. Section counts are not stored; the
// codec derives them from section lengths on encode and guarantees they
// match on decode. A Message is built once, per query or per response,
// and not mutated afterwards.
type Message struct {
	ID         uint16
	Flags      Flags
	Questions  []Question
	Answers    []ResourceRecord
	Authority  []ResourceRecord
	Additional []ResourceRecord
}

// NewQuery builds a recursive single-question query message with the
// caller-supplied transaction id.
func NewQuery(id uint16, q Question) (Message, error) {
	if err := q.Validate(); err != nil {
		return Message{}, fmt.Errorf("invalid question: %w", err)
	}
	return Message{
		ID:        id,
		Flags:     Flags{RD: true},
		Questions: []Question{q},
	}, nil
}

// Validate checks every section entry of the message.
func (m Message) Validate() error {
	for i, q := range m.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
	}
	for _, sec := range []struct {
		name string
		rrs  []ResourceRecord
	}{
		{"answer", m.Answers},
		{"authority", m.Authority},
		{"additional", m.Additional},
	} {
		for i, rr := range sec.rrs {
			if err := rr.Validate(); err != nil {
				return fmt.Errorf("%s record %d: %w", sec.name, i, err)
			}
		}
	}
	return nil
}

// RCode returns the response code carried in the message flags.
func (m Message) RCode() RCode {
	return m.Flags.RCode
}

// IsResponse reports whether the QR bit marks this message as a response.
func (m Message) IsResponse() bool {
	return m.Flags.QR
}
