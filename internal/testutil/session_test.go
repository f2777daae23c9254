package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedSessionGenerator(t *testing.T) {
	gen := NewFixedSessionGenerator("sess-1")

	assert.Equal(t, "sess-1", gen.Generate())
	assert.Equal(t, "sess-1", gen.Generate())
}

func TestFixedSessionGenerator_EmptyIDDefault(t *testing.T) {
	assert.Equal(t, DefaultSession, NewFixedSessionGenerator("").Generate())
}

func TestFixedSessionGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedSessionGenerator("shared")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "shared", gen.Generate())
			}
		}()
	}
	wg.Wait()
}

func TestMustKeymap(t *testing.T) {
	km := MustKeymap(t, "wasd.cue", WASDKeymap)

	assert.Equal(t, "wasd.cue", km.Name)
	assert.Len(t, km.Positions, 5)
	assert.Len(t, km.Behaviors, 3)
}
