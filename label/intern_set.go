package label

import (
	"sync"
)

// InternSet interns strings on first use and hands out gapless indices starting at 0.
//
// It is safe for concurrent use. A value keeps its index for the lifetime of the set and
// two different values never share an index. Lookups of known values do not lock; the
// first Encode of a new value takes a mutex.
type InternSet struct {
	ids sync.Map // map[string]int

	mu     sync.RWMutex // guards values; also serializes inserts
	values []string
}

// NewInternSet returns an empty InternSet.
func NewInternSet() *InternSet {
	return &InternSet{}
}

// Cardinality reports false: an InternSet grows without bound.
func (s *InternSet) Cardinality() (int, bool) { return 0, false }

// Encode returns the index of v, interning it if necessary. It always reports true.
func (s *InternSet) Encode(v string) (int, bool) {
	// fast path: already interned
	if id, ok := s.ids.Load(v); ok {
		return id.(int), true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// re-check: another goroutine may have interned v while we waited
	if id, ok := s.ids.Load(v); ok {
		return id.(int), true
	}

	id := len(s.values)
	s.values = append(s.values, v)
	// publish only after the value is decodable
	s.ids.Store(v, id)
	return id, true
}

// Lookup returns the index of v without interning it.
func (s *InternSet) Lookup(v string) (int, bool) {
	id, ok := s.ids.Load(v)
	if !ok {
		return 0, false
	}
	return id.(int), true
}

func (s *InternSet) Decode(i int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	checkIndex(i, len(s.values))
	return s.values[i]
}

// Len returns the number of interned values.
func (s *InternSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
