//go:build integration

package container

import (
	"context"
	"testing"
	"time"
)

func TestGateway_ListAgainstRuntime(t *testing.T) {
	bin, err := ResolveBinary(RuntimeAuto)
	if err != nil {
		t.Fatalf("ResolveBinary: %v", err)
	}
	g := NewGateway(Options{Binary: bin, Timeout: 30 * time.Second})

	ctx := context.Background()
	if !g.Available(ctx) {
		t.Skipf("%s not available", bin)
	}

	entries, err := g.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	t.Logf("Found %d managed containers", len(entries))

	for _, e := range entries {
		if !g.IsManaged(ctx, e.Name) {
			t.Errorf("listed container %s failed the ownership check", e.Name)
		}
	}
}
