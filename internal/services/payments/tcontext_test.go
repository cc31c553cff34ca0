package payments

import (
	"context"
	"testing"
)

// testContext returns a context canceled when the test ends, matching the
// behavior of (*testing.T).Context introduced in Go 1.24.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
