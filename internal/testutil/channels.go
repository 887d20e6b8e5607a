// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Timeouts for asynchronous assertions.
const (
	DefaultTestTimeout = 2 * time.Second
	ShortTestTimeout   = 100 * time.Millisecond
)

// WaitForChannel fails the test unless ch delivers a value or is closed
// within timeout.
func WaitForChannel[T any](t *testing.T, ch <-chan T, timeout time.Duration, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		require.Fail(t, msg)
	}
}

// RequireNoSignal fails the test if ch is ready right now.
func RequireNoSignal[T any](t *testing.T, ch <-chan T, msg string) {
	t.Helper()
	select {
	case <-ch:
		require.Fail(t, msg)
	default:
	}
}
