package label

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// IndexSet is an immutable set of strings with dense indices in insertion order.
//
// All strings share one contiguous backing string; lookups go through an open-addressing
// table keyed by the xxHash64 of the value. Encode never inserts, so unknown values report
// false.
type IndexSet struct {
	data    string   // all values concatenated
	offsets []uint32 // value i is data[offsets[i]:offsets[i+1]]
	table   []uint32 // 0 is empty, otherwise index+1
	mask    uint64
}

// NewIndexSet builds an IndexSet from values. Duplicate values are rejected.
func NewIndexSet(values ...string) (*IndexSet, error) {
	size := 0
	for _, v := range values {
		size += len(v)
	}
	if uint64(size) > uint64(^uint32(0)) {
		return nil, fmt.Errorf("%w: total size %d", ErrCardinalityOverflow, size)
	}

	var b strings.Builder
	b.Grow(size)
	offsets := make([]uint32, 0, len(values)+1)
	offsets = append(offsets, 0)
	for _, v := range values {
		b.WriteString(v)
		offsets = append(offsets, uint32(b.Len())) //nolint:gosec
	}

	// keep the load factor at or below one half
	slots := 1
	if len(values) > 0 {
		slots = 1 << bits.Len(uint(2*len(values)-1))
	}
	s := &IndexSet{
		data:    b.String(),
		offsets: offsets,
		table:   make([]uint32, slots),
		mask:    uint64(slots - 1),
	}

	for i := range values {
		v := s.at(i)
		slot := xxhash.Sum64String(v) & s.mask
		for {
			id := s.table[slot]
			if id == 0 {
				s.table[slot] = uint32(i + 1) //nolint:gosec
				break
			}
			if s.at(int(id-1)) == v {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateValue, v)
			}
			slot = (slot + 1) & s.mask
		}
	}

	return s, nil
}

// MustIndexSet is like NewIndexSet but panics on error.
func MustIndexSet(values ...string) *IndexSet {
	s, err := NewIndexSet(values...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *IndexSet) at(i int) string {
	return s.data[s.offsets[i]:s.offsets[i+1]]
}

// Len returns the number of values in the set.
func (s *IndexSet) Len() int { return len(s.offsets) - 1 }

func (s *IndexSet) Cardinality() (int, bool) { return s.Len(), true }

func (s *IndexSet) Encode(v string) (int, bool) {
	slot := xxhash.Sum64String(v) & s.mask
	for {
		id := s.table[slot]
		if id == 0 {
			return 0, false
		}
		if s.at(int(id-1)) == v {
			return int(id - 1), true
		}
		slot = (slot + 1) & s.mask
	}
}

func (s *IndexSet) Decode(i int) string {
	checkIndex(i, s.Len())
	return s.at(i)
}

// Values returns a copy of the values in index order.
func (s *IndexSet) Values() []string {
	out := make([]string, s.Len())
	for i := range out {
		out[i] = s.at(i)
	}
	return out
}
