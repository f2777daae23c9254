package hid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyboard_PressRelease(t *testing.T) {
	k := NewKeyboard()

	assert.True(t, k.Press(KeyA))
	assert.True(t, k.Press(KeyD))
	assert.Equal(t, []Usage{KeyA, KeyD}, k.Pressed())

	assert.True(t, k.Release(KeyA))
	assert.Equal(t, []Usage{KeyD}, k.Pressed())
	assert.False(t, k.IsPressed(KeyA))
	assert.True(t, k.IsPressed(KeyD))
}

func TestKeyboard_PressTwiceReportsNoChange(t *testing.T) {
	k := NewKeyboard()

	require.True(t, k.Press(KeyW))
	assert.False(t, k.Press(KeyW), "second press should not change the report")
	assert.Len(t, k.Pressed(), 1)
}

func TestKeyboard_ReleaseAbsentKey(t *testing.T) {
	k := NewKeyboard()
	assert.False(t, k.Release(KeyD))
}

func TestKeyboard_SixKeyRollover(t *testing.T) {
	k := NewKeyboard()

	for _, u := range []Usage{KeyA, KeyB, KeyC, KeyD, KeyE, KeyF} {
		require.True(t, k.Press(u))
	}
	assert.False(t, k.Press(KeyG), "seventh key should not fit")
	assert.False(t, k.IsPressed(KeyG))

	// Modifiers do not use key slots.
	assert.True(t, k.Press(KeyLeftShift))
}

func TestKeyboard_Modifiers(t *testing.T) {
	k := NewKeyboard()

	require.True(t, k.Press(KeyLeftShift))
	require.True(t, k.Press(KeyRightGUI))
	require.True(t, k.Press(KeyA))

	r := k.Report()
	assert.Equal(t, byte(0x82), r.Modifiers())
	assert.Equal(t, []Usage{KeyA}, r.Keys())
	assert.Equal(t, []Usage{KeyLeftShift, KeyRightGUI, KeyA}, k.Pressed())

	assert.True(t, k.Release(KeyLeftShift))
	assert.False(t, k.Release(KeyLeftShift))
	assert.Equal(t, byte(0x80), k.Report().Modifiers())
}

func TestKeyboard_ReportBytes(t *testing.T) {
	k := NewKeyboard()
	k.Press(KeyA)
	k.Press(KeyD)
	k.Release(KeyA)
	k.Press(KeyS)

	assert.Equal(t, Report{0, 0, 0x07, 0x16, 0, 0, 0, 0}, k.Report())
	assert.Equal(t, "00 00 07 16 00 00 00 00", k.Report().String())
}

func TestKeyboard_Reset(t *testing.T) {
	k := NewKeyboard()
	k.Press(KeyA)
	k.Press(KeyLeftCtrl)

	k.Reset()

	assert.Empty(t, k.Pressed())
	assert.Equal(t, Report{}, k.Report())
}

func TestKeyboard_RejectsOutOfRangeUsage(t *testing.T) {
	k := NewKeyboard()
	assert.False(t, k.Press(UsageNone))
	assert.False(t, k.Press(Usage(0x1FF)))
}

func TestKeyboard_ConcurrentAccess(t *testing.T) {
	k := NewKeyboard()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				k.Press(KeyA)
				_ = k.Report()
				k.Release(KeyA)
			}
		}()
	}
	wg.Wait()

	assert.False(t, k.IsPressed(KeyA))
}
