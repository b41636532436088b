// Package idset provides membership testing for read ids, with an
// optional Bloom prefilter for rejecting non-members cheaply.  The
// prefilter may produce false positives, but will not have any false
// negatives; a prefilter hit is always verified against the exact
// set, so Contains never lies.
package idset

import (
	"math/rand"

	"github.com/chmduquesne/rollinghash"
	"github.com/chmduquesne/rollinghash/buzhash32"
	"github.com/golang-collections/go-datastructures/bitarray"
)

// Fixed seed for the hash tables so that filters built in different
// processes agree.
const tableSeed int64 = 4030

// genTables produces numHash independent byte substitution tables
// for the buzhash family.
func genTables(numHash int) [][256]uint32 {
	rng := rand.New(rand.NewSource(tableSeed))
	tables := make([][256]uint32, numHash)
	for j := 0; j < numHash; j++ {
		mp := make(map[uint32]bool)
		for i := 0; i < 256; i++ {
			for {
				x := uint32(rng.Int63())
				if !mp[x] {
					tables[j][i] = x
					mp[x] = true
					break
				}
			}
		}
	}
	return tables
}

type bloom struct {
	size   uint64
	bits   bitarray.BitArray
	hashes []rollinghash.Hash32
}

func newBloom(size uint64, numHash int) *bloom {
	bl := &bloom{
		size: size,
		bits: bitarray.NewBitArray(size),
	}
	for _, tab := range genTables(numHash) {
		bl.hashes = append(bl.hashes, buzhash32.NewFromUint32Array(tab))
	}
	return bl
}

func (bl *bloom) positions(id string) []uint64 {
	pos := make([]uint64, len(bl.hashes))
	for j, ha := range bl.hashes {
		ha.Reset()
		ha.Write([]byte(id))
		pos[j] = uint64(ha.Sum32()) % bl.size
	}
	return pos
}

func (bl *bloom) add(id string) error {
	for _, p := range bl.positions(id) {
		if err := bl.bits.SetBit(p); err != nil {
			return err
		}
	}
	return nil
}

func (bl *bloom) mayContain(id string) (bool, error) {
	for _, p := range bl.positions(id) {
		f, err := bl.bits.GetBit(p)
		if err != nil {
			return false, err
		}
		if !f {
			return false, nil
		}
	}
	return true, nil
}

// Set is a set of read ids.
type Set struct {
	ids map[string]struct{}
	bl  *bloom
}

// New returns an empty set with no prefilter.
func New() *Set {
	return &Set{ids: make(map[string]struct{})}
}

// NewBloom returns an empty set backed by a Bloom prefilter with
// size bits and numHash hash functions.
func NewBloom(size uint64, numHash int) *Set {
	return &Set{
		ids: make(map[string]struct{}),
		bl:  newBloom(size, numHash),
	}
}

// Add inserts id into the set.
func (s *Set) Add(id string) error {
	s.ids[id] = struct{}{}
	if s.bl != nil {
		return s.bl.add(id)
	}
	return nil
}

// Contains reports whether id is in the set.
func (s *Set) Contains(id string) (bool, error) {
	if s.bl != nil {
		f, err := s.bl.mayContain(id)
		if err != nil || !f {
			return false, err
		}
	}
	_, ok := s.ids[id]
	return ok, nil
}

// Len returns the number of distinct ids in the set.
func (s *Set) Len() int {
	return len(s.ids)
}
