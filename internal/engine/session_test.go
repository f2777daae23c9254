package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator(t *testing.T) {
	g := UUIDv7Generator{}

	first := g.Generate()
	second := g.Generate()

	id, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.NotEqual(t, first, second)
	assert.Len(t, first, 36)
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("sess-1", "sess-2")

	assert.Equal(t, "sess-1", g.Generate())
	assert.Equal(t, "sess-2", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}
