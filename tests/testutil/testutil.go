package testutil

import (
	"os"
	"testing"
)

// RequireTestEnvironment fails the test unless GO_ENV is set to "test". The
// database helpers refuse to run against anything that might be a real
// database, and this is the first line of that guard.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	if env := os.Getenv("GO_ENV"); env != "test" {
		t.Fatalf("tests must run with GO_ENV=test, got GO_ENV=%q", env)
	}
}

// MustSetTestEnvironment forces GO_ENV=test. Use in TestMain or suite setup
// before loading configuration.
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()

	if err := os.Setenv("GO_ENV", "test"); err != nil {
		t.Fatalf("failed to set GO_ENV=test: %v", err)
	}
}
