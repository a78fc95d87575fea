package domain

// Question is one entry of a DNS message's question section. The first
// question in a message is the active one for a single-flight query.
type Question struct {
	Name  Name
	Type  RRType
	Class RRClass
}

// Validate checks the question's name limits. Unknown numeric types and
// classes are deliberately allowed; the wire format carries them as-is.
func (q Question) Validate() error {
	return q.Name.Validate()
}
