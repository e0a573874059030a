package metrics

import (
	"cmp"
	"encoding/binary"
	"math/bits"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/ygrebnov/metrics/v2/label"
)

// storage maps label keys to metric states. Implementations hand out stable
// pointers: a state returned for a key is the state for that key forever.
type storage[S any] interface {
	get(k label.Key) *S
	rangeStates(fn func(k label.Key, s *S) bool)
	len() int
	dense() bool
}

// denseStorage is a flat slice indexed by the dense encoding of a bounded label set.
// Every state exists from construction.
type denseStorage[S any] struct {
	states []S
	index  func(label.Key) int
	key    func(int) label.Key
}

func newDenseStorage[S any](states []S, index func(label.Key) int, key func(int) label.Key) *denseStorage[S] {
	return &denseStorage[S]{states: states, index: index, key: key}
}

func (d *denseStorage[S]) get(k label.Key) *S { return &d.states[d.index(k)] }

func (d *denseStorage[S]) rangeStates(fn func(k label.Key, s *S) bool) {
	for i := range d.states {
		if !fn(d.key(i), &d.states[i]) {
			return
		}
	}
}

func (d *denseStorage[S]) len() int    { return len(d.states) }
func (d *denseStorage[S]) dense() bool { return true }

// sparseStorage creates states on first use. Keys are spread over shards by hash;
// each shard is a map guarded by its own RWMutex. Entries are inserted fully
// initialised under the write lock and never removed.
type sparseStorage[S any] struct {
	shards   []sparseShard[S]
	mask     uint64
	newState func() *S
	// check panics on keys the label set cannot decode.
	check func(k label.Key)
	size  atomic.Int64
	// onGrow is called outside shard locks with the new series count.
	onGrow func(n int64)
}

type sparseShard[S any] struct {
	mu sync.RWMutex
	m  map[label.Key]*S
}

func defaultShards() int {
	return 4 * runtime.GOMAXPROCS(0)
}

func newSparseStorage[S any](shards int, newState func() *S, check func(label.Key), onGrow func(n int64)) *sparseStorage[S] {
	if shards <= 0 {
		shards = defaultShards()
	}
	n := 1 << bits.Len(uint(shards-1))
	s := &sparseStorage[S]{
		shards:   make([]sparseShard[S], n),
		mask:     uint64(n - 1),
		newState: newState,
		check:    check,
		onGrow:   onGrow,
	}
	for i := range s.shards {
		s.shards[i].m = make(map[label.Key]*S)
	}
	return s
}

func hashKey(k label.Key) uint64 {
	var buf [8 * (1 + label.MaxDynamic)]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(k.Index))
	for i, d := range k.Dynamic {
		binary.LittleEndian.PutUint64(buf[8*(i+1):], uint64(d))
	}
	return xxhash.Sum64(buf[:])
}

func (s *sparseStorage[S]) shard(k label.Key) *sparseShard[S] {
	return &s.shards[hashKey(k)&s.mask]
}

func (s *sparseStorage[S]) get(k label.Key) *S {
	sh := s.shard(k)
	sh.mu.RLock()
	v, ok := sh.m[k]
	sh.mu.RUnlock()
	if ok {
		return v
	}
	// reject foreign keys before they are stored for good
	if s.check != nil {
		s.check(k)
	}

	sh.mu.Lock()
	if v, ok = sh.m[k]; ok {
		sh.mu.Unlock()
		return v
	}
	v = s.newState()
	sh.m[k] = v
	sh.mu.Unlock()

	n := s.size.Add(1)
	if s.onGrow != nil {
		s.onGrow(n)
	}
	return v
}

// rangeStates visits a point-in-time copy of the shards in key order, so fn may
// call get.
func (s *sparseStorage[S]) rangeStates(fn func(k label.Key, s *S) bool) {
	type entry struct {
		k label.Key
		v *S
	}
	buf := make([]entry, 0, s.len())
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		for k, v := range sh.m {
			buf = append(buf, entry{k, v})
		}
		sh.mu.RUnlock()
	}
	slices.SortFunc(buf, func(a, b entry) int { return compareKeys(a.k, b.k) })
	for _, e := range buf {
		if !fn(e.k, e.v) {
			return
		}
	}
}

func compareKeys(a, b label.Key) int {
	if c := cmp.Compare(a.Index, b.Index); c != 0 {
		return c
	}
	for i := range a.Dynamic {
		if c := cmp.Compare(a.Dynamic[i], b.Dynamic[i]); c != 0 {
			return c
		}
	}
	return 0
}

func (s *sparseStorage[S]) len() int    { return int(s.size.Load()) }
func (s *sparseStorage[S]) dense() bool { return false }
