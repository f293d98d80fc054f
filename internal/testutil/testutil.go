// Package testutil provides test helpers for the Ormer project:
// error assertions, file helpers and raw schema fixtures.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hlop3z/ormer/internal/alerr"
)

// -----------------------------------------------------------------------------
// Error Assertions
// -----------------------------------------------------------------------------

// AssertError checks that err carries code somewhere in its cause chain.
func AssertError(t *testing.T, err error, code alerr.Code) {
	t.Helper()

	if err == nil {
		t.Errorf("expected error with code %s, got nil", code)
		return
	}

	if !alerr.Is(err, code) {
		t.Errorf("expected error code %s, got %s\nerror: %v", code, alerr.GetErrorCode(err), err)
	}
}

// AssertKind checks the kind of the outermost coded error.
func AssertKind(t *testing.T, err error, kind alerr.Kind) {
	t.Helper()

	if got := alerr.KindOf(err); got != kind {
		t.Errorf("expected %s, got %s\nerror: %v", kind, got, err)
	}
}

// AssertNoError checks that an error is nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

// AssertErrorContains checks that an error message contains every substring.
func AssertErrorContains(t *testing.T, err error, substrs ...string) {
	t.Helper()

	if err == nil {
		t.Errorf("expected error containing %q, got nil", substrs)
		return
	}

	msg := err.Error()
	for _, s := range substrs {
		if !strings.Contains(msg, s) {
			t.Errorf("error message does not contain %q\ngot: %v", s, err)
		}
	}
}

// -----------------------------------------------------------------------------
// File Helpers
// -----------------------------------------------------------------------------

// WriteFile writes content to dir/name, creating parent directories as needed,
// and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create parent directories: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}

// AssertEqual is a generic equality check for testing.
func AssertEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()

	if got != want {
		t.Errorf("values not equal:\ngot:  %v\nwant: %v", got, want)
	}
}
