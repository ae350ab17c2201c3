package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsAndCodeOf(t *testing.T) {
	err := fmt.Errorf("apply: %w", New(CodeConflict, "already applied"))
	if !Is(err, CodeConflict) {
		t.Fatal("expected conflict through wrapping")
	}
	if Is(err, CodeNotFound) {
		t.Fatal("unexpected not_found")
	}
	if got := CodeOf(errors.New("boom")); got != CodeInternal {
		t.Errorf("CodeOf(foreign) = %s", got)
	}
}

func TestMessageHidesInternalDetails(t *testing.T) {
	if got := Message(New(CodeValidation, "rating out of range")); got != "rating out of range" {
		t.Errorf("Message = %q", got)
	}
	if got := Message(Wrap(CodeInternal, "db exploded", errors.New("disk full"))); got == "db exploded" {
		t.Error("internal message leaked")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := map[Code]int{
		CodeValidation:  http.StatusBadRequest,
		CodeConflict:    http.StatusConflict,
		CodeTooLarge:    http.StatusRequestEntityTooLarge,
		CodeUnavailable: http.StatusServiceUnavailable,
		CodeUpstream:    http.StatusBadGateway,
		Code("weird"):   http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := HTTPStatus(code); got != want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", code, got, want)
		}
	}
}
