package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type smallStruct struct {
	A uint32
	B uint32
}

type withDestructor struct {
	closed *bool
}

func (w withDestructor) Close() {
	*w.closed = true
}

// TestRoundTrip covers scenario S4: pack/unpack across a unit type, a
// scalar, a short string, a small pointer-free struct, and a struct whose
// payload requires an explicit close (the Go stand-in for the Rust
// destructor case — Unpack is non-destructive with respect to Go's GC, so
// the "destructor ran exactly once" property is verified by the caller
// invoking Close after Unpack, not by Unpack itself).
func TestRoundTrip(t *testing.T) {
	t.Run("unit", func(t *testing.T) {
		type unit struct{}
		e := Pack(unit{})
		assert.Equal(t, unit{}, Unpack[unit](e))
	})

	t.Run("scalar", func(t *testing.T) {
		e := Pack(uint32(42))
		assert.Equal(t, uint32(42), Unpack[uint32](e))
	})

	t.Run("string", func(t *testing.T) {
		e := Pack("42 bars")
		assert.Equal(t, "42 bars", Unpack[string](e))
	})

	t.Run("small struct", func(t *testing.T) {
		want := smallStruct{A: 7, B: 9}
		e := Pack(want)
		assert.Equal(t, want, Unpack[smallStruct](e))
	})

	t.Run("struct with close", func(t *testing.T) {
		closed := false
		e := Pack(withDestructor{closed: &closed})
		got := Unpack[withDestructor](e)
		require.False(t, closed)
		got.Close()
		assert.True(t, closed)
	})
}

func TestPackInlinesSmallPointerFreeValues(t *testing.T) {
	e := Pack(smallStruct{A: 1, B: 2})
	assert.True(t, e.isInline)

	e = Pack("too big to ever inline a string header safely")
	assert.False(t, e.isInline)
}

func TestUnpackWrongTypePanics(t *testing.T) {
	e := Pack(uint32(1))
	assert.Panics(t, func() {
		Unpack[string](e)
	})

	defer func() {
		r := recover()
		require.NotNil(t, r)
		mismatch, ok := r.(*TypeMismatchError)
		require.True(t, ok)
		assert.Contains(t, mismatch.Error(), "type mismatch")
	}()
	Unpack[int64](e)
}

func TestDescribe(t *testing.T) {
	e := Pack(uint32(1))
	assert.Contains(t, e.String(), "inline")

	e = Pack(make([]byte, 4))
	assert.Contains(t, e.String(), "boxed")

	var empty Envelope
	assert.Equal(t, "envelope(empty)", empty.String())
}
