package label

import (
	"fmt"
	"math"
	"strings"

	"github.com/prometheus/common/model"
)

// MaxDynamic is the maximum number of dynamic dimensions a GroupSet may have.
const MaxDynamic = 4

// Key is the compact encoding of a label group.
//
// Index is the mixed-radix index of the fixed dimensions. Dynamic holds one set index per
// dynamic dimension in declaration order; unused trailing entries are zero. Key is
// comparable and can be used as a map key.
type Key struct {
	Index   int
	Dynamic [MaxDynamic]int
}

// Group is a decoded label group that can be walked name by name.
type Group interface {
	VisitLabels(v GroupVisitor)
}

// GroupVisitor receives label name/value pairs in declaration order.
type GroupVisitor interface {
	WriteLabel(name string, value Value)
}

// Dimension binds one field of the label group struct G to the Set its values belong to.
type Dimension[G any] struct {
	name   string
	card   int
	fixed  bool
	encode func(g G) (int, bool)
	decode func(i int, g *G)
	value  func(g G) Value
}

// Dim declares a dimension named name over set. get reads the field from a group and put
// writes a decoded value back.
//
// The dimension is fixed when set reports a bounded cardinality and dynamic otherwise.
func Dim[G, T any](name string, set Set[T], get func(g G) T, put func(g *G, v T)) Dimension[G] {
	n, fixed := set.Cardinality()
	return Dimension[G]{
		name:   name,
		card:   n,
		fixed:  fixed,
		encode: func(g G) (int, bool) { return set.Encode(get(g)) },
		decode: func(i int, g *G) { put(g, set.Decode(i)) },
		value:  func(g G) Value { return ValueOf(get(g)) },
	}
}

// Name returns the label name of the dimension.
func (d Dimension[G]) Name() string { return d.name }

// Fixed reports whether the dimension has a bounded cardinality.
func (d Dimension[G]) Fixed() bool { return d.fixed }

// GroupSet encodes label groups of type G into Keys and decodes them back.
type GroupSet[G any] struct {
	dims    []Dimension[G]
	fixed   []int // positions of fixed dimensions in dims, declaration order
	dynamic []int // positions of dynamic dimensions in dims, declaration order
	card    int   // product of fixed cardinalities
}

// NewGroupSet validates dims and builds a GroupSet.
//
// Label names must be valid Prometheus label names, unique and not start with "__". At most
// MaxDynamic dimensions may be dynamic and the product of the fixed cardinalities must fit
// in an int.
func NewGroupSet[G any](dims ...Dimension[G]) (*GroupSet[G], error) {
	s := &GroupSet[G]{
		dims: append([]Dimension[G](nil), dims...),
		card: 1,
	}

	seen := make(map[string]struct{}, len(dims))
	for i, d := range s.dims {
		if err := ValidateName(d.name); err != nil {
			return nil, err
		}
		if _, ok := seen[d.name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLabelName, d.name)
		}
		seen[d.name] = struct{}{}

		if !d.fixed {
			s.dynamic = append(s.dynamic, i)
			continue
		}
		s.fixed = append(s.fixed, i)
		if d.card > 0 && s.card > math.MaxInt/d.card {
			return nil, fmt.Errorf("%w: at dimension %q", ErrCardinalityOverflow, d.name)
		}
		s.card *= d.card
	}

	if len(s.dynamic) > MaxDynamic {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyDynamic, len(s.dynamic), MaxDynamic)
	}

	return s, nil
}

// MustGroupSet is like NewGroupSet but panics on error.
func MustGroupSet[G any](dims ...Dimension[G]) *GroupSet[G] {
	s, err := NewGroupSet(dims...)
	if err != nil {
		panic(err)
	}
	return s
}

// ValidateName reports whether name can be used as a label name.
func ValidateName(name string) error {
	if !model.LabelName(name).IsValidLegacy() || strings.HasPrefix(name, "__") {
		return fmt.Errorf("%w: %q", ErrInvalidLabelName, name)
	}
	return nil
}

// Cardinality returns the number of distinct keys. ok is false when any dimension is
// dynamic.
func (s *GroupSet[G]) Cardinality() (n int, ok bool) {
	if len(s.dynamic) > 0 {
		return 0, false
	}
	return s.card, true
}

// Dense reports whether every dimension is fixed.
func (s *GroupSet[G]) Dense() bool { return len(s.dynamic) == 0 }

// NumDynamic returns the number of dynamic dimensions.
func (s *GroupSet[G]) NumDynamic() int { return len(s.dynamic) }

// Names returns the label names in declaration order.
func (s *GroupSet[G]) Names() []string {
	out := make([]string, len(s.dims))
	for i, d := range s.dims {
		out[i] = d.name
	}
	return out
}

// Encode maps g to its key. It reports false when a dimension's set cannot represent the
// value, for example a route missing from an IndexSet.
func (s *GroupSet[G]) Encode(g G) (Key, bool) {
	var k Key
	mul := 1
	for i := len(s.fixed) - 1; i >= 0; i-- {
		d := &s.dims[s.fixed[i]]
		idx, ok := d.encode(g)
		if !ok {
			return Key{}, false
		}
		if idx < 0 || idx >= d.card {
			panic(fmt.Errorf("%w: dimension %q encoded %d, cardinality %d", ErrIndexOutOfRange, d.name, idx, d.card))
		}
		k.Index += idx * mul
		mul *= d.card
	}
	for j, p := range s.dynamic {
		idx, ok := s.dims[p].encode(g)
		if !ok {
			return Key{}, false
		}
		k.Dynamic[j] = idx
	}
	return k, true
}

// Decode maps k back to its label group. It panics if k was not produced by this set.
func (s *GroupSet[G]) Decode(k Key) G {
	var g G
	checkIndex(k.Index, s.card)
	idx := k.Index
	for i := len(s.fixed) - 1; i >= 0; i-- {
		d := &s.dims[s.fixed[i]]
		d.decode(idx%d.card, &g)
		idx /= d.card
	}
	for j, p := range s.dynamic {
		s.dims[p].decode(k.Dynamic[j], &g)
	}
	return g
}

// CheckKey panics with ErrIndexOutOfRange unless k could have been produced by Encode:
// the fixed index is within the cardinality, every dynamic index decodes and unused
// dynamic slots are zero.
func (s *GroupSet[G]) CheckKey(k Key) {
	checkIndex(k.Index, s.card)
	var g G
	for j, p := range s.dynamic {
		s.dims[p].decode(k.Dynamic[j], &g)
	}
	for j := len(s.dynamic); j < MaxDynamic; j++ {
		if k.Dynamic[j] != 0 {
			panic(fmt.Errorf("%w: dynamic slot %d is %d, set has %d dynamic dimensions",
				ErrIndexOutOfRange, j, k.Dynamic[j], len(s.dynamic)))
		}
	}
}

// EncodeDense returns the array position of k. It panics when the set has dynamic
// dimensions or k is out of range.
func (s *GroupSet[G]) EncodeDense(k Key) int {
	s.mustDense()
	checkIndex(k.Index, s.card)
	return k.Index
}

// DecodeDense returns the key stored at array position i. It panics when the set has
// dynamic dimensions or i is out of range.
func (s *GroupSet[G]) DecodeDense(i int) Key {
	s.mustDense()
	checkIndex(i, s.card)
	return Key{Index: i}
}

func (s *GroupSet[G]) mustDense() {
	if len(s.dynamic) > 0 {
		panic(fmt.Errorf("%w: %d dynamic dimensions %v", ErrNotDense, len(s.dynamic), s.Names()))
	}
}

// Labels returns g as a Group visiting its labels in declaration order.
func (s *GroupSet[G]) Labels(g G) Group {
	return boundGroup[G]{set: s, g: g}
}

type boundGroup[G any] struct {
	set *GroupSet[G]
	g   G
}

func (b boundGroup[G]) VisitLabels(v GroupVisitor) {
	for i := range b.set.dims {
		d := &b.set.dims[i]
		v.WriteLabel(d.name, d.value(b.g))
	}
}

// NoLabels is the label group of unlabeled families.
type NoLabels struct{}

var emptySet = &GroupSet[NoLabels]{card: 1}

// Empty returns the group set without dimensions. Its only key is the zero Key.
func Empty() *GroupSet[NoLabels] { return emptySet }
