package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ErrNotFound, http.StatusNotFound},
		{ErrConflict, http.StatusConflict},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrUnauthorized, http.StatusUnauthorized},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := Status(c.err); got != c.want {
			t.Errorf("Status(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestStatusSeesWrappedKind(t *testing.T) {
	wrapped := fmt.Errorf("get note %q: %w", "01ABC", ErrNotFound)
	if got := Status(wrapped); got != http.StatusNotFound {
		t.Errorf("Status(wrapped) = %d, want 404", got)
	}
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("wrapped error should match ErrNotFound")
	}
}

func TestMessagesAreDistinct(t *testing.T) {
	notFound := Message(ErrNotFound)
	unauthorized := Message(ErrUnauthorized)
	generic := Message(errors.New("boom"))

	if notFound == unauthorized {
		t.Errorf("404 and 401 messages must differ, both %q", notFound)
	}
	if notFound == generic || unauthorized == generic {
		t.Errorf("kind messages must differ from generic fallback %q", generic)
	}
}
