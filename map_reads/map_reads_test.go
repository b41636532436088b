package main

import (
	"testing"
)

func TestTally(t *testing.T) {
	mapping := map[string]string{
		"r1": "mada1",
		"r2": "mada1",
		"r3": "mada2",
	}
	lookup := func(id string) (string, bool) {
		s, ok := mapping[id]
		return s, ok
	}

	counts := tally([]string{"r1", "r2", "r3", "r3", "rX"}, lookup)

	want := map[string]int{"mada1": 2, "mada2": 2, "unmapped": 1}
	if len(counts) != len(want) {
		t.Fatalf("counts = %v, want %v", counts, want)
	}
	for sample, n := range want {
		if counts[sample] != n {
			t.Errorf("counts[%q] = %d, want %d", sample, counts[sample], n)
		}
	}
}
