package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestErrorIncludesInternal(t *testing.T) {
	internal := stdErrors.New("boom")
	err := Wrap(internal, "failed")

	if err.Error() != "failed: boom" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
}

func TestWithInternalCopies(t *testing.T) {
	base := New("TEST", "test", 400)
	with := base.WithInternal(stdErrors.New("oops"))

	if with == base {
		t.Fatal("expected WithInternal to return a copy")
	}

	if base.Internal != nil {
		t.Fatal("expected original error to remain unchanged")
	}

	if with.Internal == nil {
		t.Fatal("expected internal error to be set")
	}
}

func TestFromError(t *testing.T) {
	appErr := ErrNotFound
	if out := FromError(appErr); out != appErr {
		t.Fatal("expected FromError to return the same AppError instance")
	}

	raw := stdErrors.New("raw")
	out := FromError(raw)
	if out.Code != ErrInternalServer.Code {
		t.Fatalf("expected internal server code, got %s", out.Code)
	}
	if out.Internal == nil {
		t.Fatal("expected internal error to be attached")
	}
}

func TestDependencyErrorNeverLeaksDetail(t *testing.T) {
	err := ErrDependencyUnavailable.WithInternal(stdErrors.New("dial tcp 10.0.0.5:5432: connection refused"))

	if err.Message != "Internal server error" {
		t.Fatalf("expected generic message, got %q", err.Message)
	}
	if err.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", err.StatusCode)
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("record not found")
	if err.Code != ErrNotFound.Code {
		t.Fatalf("expected %s, got %s", ErrNotFound.Code, err.Code)
	}
	if err.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", err.StatusCode)
	}
}
