package bus

import (
	"io"
	"testing"

	"weave/internal/screen"
)

func TestClientRegistryAddRemoveForEach(t *testing.T) {
	r := NewClientRegistry()
	c1 := screen.NewClient("c1", io.Discard, 24, 80)
	c2 := screen.NewClient("c2", io.Discard, 24, 80)
	r.Add(c1)
	r.Add(c2)

	if r.Count() != 2 {
		t.Fatalf("expected 2 clients, got %d", r.Count())
	}
	if got, ok := r.Get("c1"); !ok || got != c1 {
		t.Fatalf("expected to find c1, got %+v ok=%v", got, ok)
	}

	seen := make(map[string]bool)
	r.ForEach(func(c *screen.Client) { seen[c.ID] = true })
	if !seen["c1"] || !seen["c2"] {
		t.Fatalf("expected ForEach to visit both clients, got %+v", seen)
	}

	r.Remove("c1")
	if r.Count() != 1 {
		t.Fatalf("expected 1 client after removal, got %d", r.Count())
	}
	if _, ok := r.Get("c1"); ok {
		t.Fatal("expected c1 to be gone after Remove")
	}
}
