package idsplit

import (
	"fmt"
	"reflect"
	"testing"
)

func toSet(ids []string) map[string]bool {
	m := make(map[string]bool)
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func TestSplitSizes(t *testing.T) {
	ids := []string{"r1", "r2", "r3", "r4", "r5"}

	train, eval, err := Split(ids, 0.4, 88)
	if err != nil {
		t.Fatal(err)
	}
	if len(train) != 2 {
		t.Errorf("len(train) = %d, want 2", len(train))
	}
	if len(eval) != 3 {
		t.Errorf("len(eval) = %d, want 3", len(eval))
	}

	ts, es := toSet(train), toSet(eval)
	for id := range ts {
		if es[id] {
			t.Errorf("id %q in both train and eval", id)
		}
	}
	for _, id := range ids {
		if !ts[id] && !es[id] {
			t.Errorf("id %q in neither train nor eval", id)
		}
	}
}

func TestSplitSizeIsFloor(t *testing.T) {
	for _, tc := range []struct {
		n    int
		frac float64
		want int
	}{
		{5, 0.4, 2},
		{10, 0.5, 5},
		{7, 0.5, 3},
		{3, 0.99, 2},
		{1000, 0.1, 100},
	} {
		ids := make([]string, tc.n)
		for i := range ids {
			ids[i] = fmt.Sprintf("read%d", i)
		}
		train, eval, err := Split(ids, tc.frac, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(train) != tc.want {
			t.Errorf("n=%d frac=%g: len(train) = %d, want %d", tc.n, tc.frac, len(train), tc.want)
		}
		if len(train)+len(eval) != tc.n {
			t.Errorf("n=%d frac=%g: train+eval = %d, want %d", tc.n, tc.frac, len(train)+len(eval), tc.n)
		}
	}
}

func TestSplitReproducible(t *testing.T) {
	ids := make([]string, 200)
	for i := range ids {
		ids[i] = fmt.Sprintf("read%d", i)
	}

	train1, eval1, err := Split(ids, 0.3, 42)
	if err != nil {
		t.Fatal(err)
	}
	train2, eval2, err := Split(ids, 0.3, 42)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(train1, train2) {
		t.Error("training sets differ between identical runs")
	}
	if !reflect.DeepEqual(eval1, eval2) {
		t.Error("evaluation sets differ between identical runs")
	}
}

func TestSplitSeedSensitivity(t *testing.T) {
	ids := make([]string, 100)
	for i := range ids {
		ids[i] = fmt.Sprintf("read%d", i)
	}

	train1, _, err := Split(ids, 0.5, 1)
	if err != nil {
		t.Fatal(err)
	}
	train2, _, err := Split(ids, 0.5, 2)
	if err != nil {
		t.Fatal(err)
	}

	if reflect.DeepEqual(train1, train2) {
		t.Error("training sets identical under different seeds")
	}
}

func TestSplitEvalPreservesOrder(t *testing.T) {
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = fmt.Sprintf("read%02d", i)
	}

	_, eval, err := Split(ids, 0.4, 7)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i < len(eval); i++ {
		if eval[i-1] >= eval[i] {
			t.Fatalf("eval not in input order at %d: %q >= %q", i, eval[i-1], eval[i])
		}
	}
}

func TestSplitBoundaryRatios(t *testing.T) {
	ids := make([]string, 20)
	for i := range ids {
		ids[i] = fmt.Sprintf("read%d", i)
	}

	train, eval, err := Split(ids, 0.001, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(train) != 0 || len(eval) != 20 {
		t.Errorf("frac near 0: got %d/%d, want 0/20", len(train), len(eval))
	}

	train, eval, err = Split(ids, 0.999, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(train) != 19 || len(eval) != 1 {
		t.Errorf("frac near 1: got %d/%d, want 19/1", len(train), len(eval))
	}
}

func TestSplitDuplicatesAreIndependent(t *testing.T) {
	// Occurrences are drawn independently, so the counts must add
	// up over occurrences, not over distinct values.
	ids := []string{"a", "a", "b", "b", "c", "c", "d", "d", "e", "e"}

	train, eval, err := Split(ids, 0.5, 11)
	if err != nil {
		t.Fatal(err)
	}
	if len(train) != 5 {
		t.Errorf("len(train) = %d, want 5", len(train))
	}
	if len(train)+len(eval) != len(ids) {
		t.Errorf("train+eval = %d, want %d", len(train)+len(eval), len(ids))
	}
}

func TestSplitErrors(t *testing.T) {
	ids := []string{"r1", "r2"}

	for _, frac := range []float64{-0.5, 0, 1, 1.5} {
		if _, _, err := Split(ids, frac, 1); err != ErrInvalidRatio {
			t.Errorf("frac=%g: err = %v, want ErrInvalidRatio", frac, err)
		}
	}

	// The ratio check comes first, even for empty input.
	if _, _, err := Split(nil, 1.5, 1); err != ErrInvalidRatio {
		t.Errorf("empty input, frac=1.5: err = %v, want ErrInvalidRatio", err)
	}

	if _, _, err := Split(nil, 0.5, 1); err != ErrEmptyInput {
		t.Errorf("empty input: err = %v, want ErrEmptyInput", err)
	}
}

func TestDedup(t *testing.T) {
	ids := []string{"a", "b", "a", "c", "b", "a"}
	want := []string{"a", "b", "c"}
	if got := Dedup(ids); !reflect.DeepEqual(got, want) {
		t.Errorf("Dedup = %v, want %v", got, want)
	}
}
