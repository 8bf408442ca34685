package testutil

// DefaultSession is the session id used when a scenario names none.
const DefaultSession = "test-session-default"

// FixedSessionGenerator returns the same session id every time. It
// satisfies trace.IDGenerator; the same scenario recorded twice produces
// byte-identical journals.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator creates a generator for id, or for
// DefaultSession when id is empty.
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = DefaultSession
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed id.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}
