package domain

// ResourceRecord is a typed, TTL-bearing entry of a DNS message's
// answer, authority, or additional section.
type ResourceRecord struct {
	Name  Name
	Type  RRType
	Class RRClass
	TTL   int32 // seconds, signed per RFC 1035 section 3.2.1
	Data  RData
}

// Validate checks the record's name limits and that a payload is set.
func (rr ResourceRecord) Validate() error {
	if err := rr.Name.Validate(); err != nil {
		return err
	}
	if rr.Data == nil {
		return errNilRData
	}
	return nil
}
