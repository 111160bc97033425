package coreerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Message(t *testing.T) {
	e := NewPath(IOFailure, "fileprovider.request", "/tmp/x.dat", errors.New("boom"))
	got := e.Error()
	want := "fileprovider.request: io-failure: /tmp/x.dat: boom"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	e := New(IOFailure, "op", cause)
	if !errors.Is(e, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestIs(t *testing.T) {
	e := New(Misuse, "arena.append", nil)
	wrapped := fmt.Errorf("context: %w", e)

	if !Is(e, Misuse) {
		t.Error("Is(e, Misuse) = false, want true")
	}
	if Is(e, Shutdown) {
		t.Error("Is(e, Shutdown) = true, want false")
	}
	if !Is(wrapped, Misuse) {
		t.Error("Is should see through fmt.Errorf(%w) wrapping")
	}
	if Is(nil, Misuse) {
		t.Error("Is(nil, ...) = true, want false")
	}
}

func TestKind_String(t *testing.T) {
	cases := []struct {
		k    Kind
		want string
	}{
		{BadArgument, "bad-argument"},
		{Shutdown, "shutdown"},
		{Unsupported, "unsupported"},
		{IOFailure, "io-failure"},
		{Misuse, "misuse"},
		{Kind(99), "unknown"},
	}
	for _, c := range cases {
		if got := c.k.String(); got != c.want {
			t.Errorf("Kind(%d).String() = %q, want %q", c.k, got, c.want)
		}
	}
}
