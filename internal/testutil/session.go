package testutil

// DefaultSession is used when a scenario does not name its session.
const DefaultSession = "test-session-default"

// FixedSessionGenerator returns the same session id every time, so a
// scenario recorded twice lands in the same session of the event log.
//
// Unlike engine.FixedGenerator it never runs out.
//
// Thread-safety: FixedSessionGenerator is stateless and safe for concurrent use.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator creates a generator for id.
// An empty id falls back to DefaultSession.
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = DefaultSession
	}
	return &FixedSessionGenerator{id: id}
}

// Generate implements engine.SessionGenerator.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}
