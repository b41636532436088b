// Package idsplit deterministically partitions a list of read ids
// into a training set and an evaluation set.
//
// The draw is uniform without replacement and fully determined by
// the seed, so a split can be reproduced exactly by any later run.
// Duplicate ids in the input are treated as independent occurrences:
// each occurrence is drawn (or not) on its own, so a value appearing
// more than once can end up in both outputs.  Callers that want
// set semantics should pass the ids through Dedup first.
package idsplit

import (
	"errors"
	"math/rand"
)

var (
	// ErrInvalidRatio is returned when the training fraction is
	// not strictly between 0 and 1.
	ErrInvalidRatio = errors.New("idsplit: training fraction must be strictly between 0 and 1")

	// ErrEmptyInput is returned when there are no ids to split.
	ErrEmptyInput = errors.New("idsplit: no ids to split")
)

// Split partitions ids into a training set and an evaluation set.
// The training set holds floor(len(ids)*frac) ids drawn uniformly
// without replacement using a generator seeded with seed, in draw
// order.  The evaluation set holds every occurrence not drawn, in
// the original input order.  The same ids, frac and seed always
// produce the same result.
func Split(ids []string, frac float64, seed int64) (train, eval []string, err error) {
	if frac <= 0 || frac >= 1 {
		return nil, nil, ErrInvalidRatio
	}
	if len(ids) == 0 {
		return nil, nil, ErrEmptyInput
	}

	rng := rand.New(rand.NewSource(seed))
	k := int(float64(len(ids)) * frac)

	perm := rng.Perm(len(ids))
	chosen := make([]bool, len(ids))
	train = make([]string, 0, k)
	for _, j := range perm[:k] {
		chosen[j] = true
		train = append(train, ids[j])
	}

	eval = make([]string, 0, len(ids)-k)
	for i, id := range ids {
		if !chosen[i] {
			eval = append(eval, id)
		}
	}

	return train, eval, nil
}

// Dedup removes duplicate ids, keeping the first occurrence of each
// and preserving order.
func Dedup(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
