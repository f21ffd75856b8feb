// Package envelope implements the runtime's heterogeneous message carrier:
// a type-tagged payload that can hold any user-defined type without a
// registration step, with a small-value inline optimization for payloads
// that fit two machine words.
package envelope

import (
	"fmt"
	"reflect"
	"unsafe"
)

// inlineWords mirrors the Rust core's `type Payload = [usize; 2]`.
const inlineWords = 2

type inlineBuf [inlineWords]uintptr

// Envelope is a (type tag, payload) pair. The zero value is an empty
// envelope and must never be passed to Unpack.
type Envelope struct {
	typ      reflect.Type
	inline   inlineBuf
	boxed    any
	isInline bool
}

// TypeMismatchError is panicked by Unpack when the envelope's tag does not
// match the requested type. This is the Go analogue of the original's
// `assert_eq!(type_id, TypeId::of::<T>())` — a programmer error, not a
// recoverable condition (spec.md §4.6).
type TypeMismatchError struct {
	Want reflect.Type
	Got  reflect.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("envelope: type mismatch: want %s, got %s", e.Want, e.Got)
}

// Pack records the static type of v as the envelope's tag and stores v by
// value: inline in a fixed-size buffer when v fits in two machine words
// and holds no pointers, boxed in an interface otherwise. The inline
// branch uses unsafe.Pointer the same way the teacher's uapi.Marshal falls
// back to a direct memory copy for types it has no bespoke layout for
// (internal/uapi/marshal.go's directMarshal) — the difference here is that
// the inline buffer *is* the storage, not a wire encoding.
func Pack[T any](v T) Envelope {
	typ := reflect.TypeFor[T]()
	if canInline(typ) {
		var buf inlineBuf
		*(*T)(unsafe.Pointer(&buf)) = v
		return Envelope{typ: typ, inline: buf, isInline: true}
	}
	return Envelope{typ: typ, boxed: v}
}

// Unpack moves the payload out of e. It panics with *TypeMismatchError if
// e was not packed as type T.
func Unpack[T any](e Envelope) T {
	want := reflect.TypeFor[T]()
	if e.typ != want {
		panic(&TypeMismatchError{Want: want, Got: e.typ})
	}
	if e.isInline {
		return *(*T)(unsafe.Pointer(&e.inline))
	}
	return e.boxed.(T)
}

// Type reports the envelope's tag, or nil for the zero Envelope.
func (e Envelope) Type() reflect.Type { return e.typ }

// String renders a human-readable debug form (spec.md §4.1's `describe`).
func (e Envelope) String() string {
	if e.typ == nil {
		return "envelope(empty)"
	}
	storage := "boxed"
	if e.isInline {
		storage = "inline"
	}
	return fmt.Sprintf("envelope(%s, %s)", e.typ, storage)
}

// canInline decides whether a value of type t may be stored inline:
// it must fit in two machine words and must not need GC pointer tracking.
// Go has no destructors, so "no destructor" (the Rust criterion) is
// replaced by "no pointers" — inlining a pointer-containing value would
// hide it from the garbage collector's scan of Envelope, which only knows
// about the `boxed any` field and the raw `inline` bytes, not their
// interpretation.
func canInline(t reflect.Type) bool {
	var probe inlineBuf
	if t.Size() > unsafe.Sizeof(probe) {
		return false
	}
	return isPointerFree(t)
}

func isPointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return isPointerFree(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !isPointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		// Ptr, Slice, Map, Chan, Func, Interface, String, UnsafePointer,
		// and anything else either contains a pointer or we can't prove
		// it doesn't — box it.
		return false
	}
}
