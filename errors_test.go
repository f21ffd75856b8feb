package actor

import (
	"errors"
	"testing"
)

func TestStructuredError(t *testing.T) {
	err := NewError("Spawn", CodeTypeMismatch, "envelope carried the wrong type")

	if err.Op != "Spawn" {
		t.Errorf("expected Op=Spawn, got %s", err.Op)
	}
	if err.Code != CodeTypeMismatch {
		t.Errorf("expected Code=CodeTypeMismatch, got %s", err.Code)
	}

	expected := "actor: Spawn: envelope carried the wrong type"
	if err.Error() != expected {
		t.Errorf("expected error message %q, got %q", expected, err.Error())
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := NewError("Send", CodeAddressNotFound, "no live process")

	if !errors.Is(err, NewError("", CodeAddressNotFound, "")) {
		t.Error("expected errors.Is to match on Code")
	}
	if errors.Is(err, NewError("", CodeTypeMismatch, "")) {
		t.Error("expected errors.Is to not match a different Code")
	}
}

func TestWrapErrorPreservesCode(t *testing.T) {
	inner := NewError("Register", CodeRegistrationFailure, "epoll_ctl failed")
	wrapped := WrapError("New", inner)

	if wrapped.Code != CodeRegistrationFailure {
		t.Errorf("expected wrapped Code to survive, got %s", wrapped.Code)
	}
	if !errors.Is(wrapped, inner) {
		t.Error("expected errors.Is(wrapped, inner) to hold")
	}
	if !errors.As(wrapped, new(*Error)) {
		t.Error("expected errors.As to find the structured Error")
	}
}

func TestIsCode(t *testing.T) {
	err := NewError("Run", CodePollerFailure, "epoll_wait failed")
	if !IsCode(err, CodePollerFailure) {
		t.Error("expected IsCode to match")
	}
	if IsCode(err, CodeTerminate) {
		t.Error("expected IsCode to not match a different code")
	}
	if IsCode(nil, CodeTerminate) {
		t.Error("expected IsCode(nil, ...) to be false")
	}
}
