package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindMatching(t *testing.T) {
	err := fmt.Errorf("load route: %w", NotFound("station"))

	if !errors.Is(err, ErrNotFound) {
		t.Fatal("wrapped not-found should match ErrNotFound")
	}
	if errors.Is(err, ErrForbidden) {
		t.Fatal("not-found must not match ErrForbidden")
	}
	if KindOf(err) != KindNotFound {
		t.Fatalf("kind = %v", KindOf(err))
	}
	if KindOf(errors.New("boom")) != KindInternal {
		t.Fatal("plain errors are internal")
	}
}

func TestValidationMessage(t *testing.T) {
	err := InvalidFields(map[string]string{"seat": "out of range", "cargo": "required"})
	want := "invalid request (cargo: required; seat: out of range)"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}
