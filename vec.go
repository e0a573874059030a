package metrics

import (
	"fmt"
	"sync/atomic"

	"github.com/ygrebnov/metrics/v2/exposition"
	"github.com/ygrebnov/metrics/v2/label"
)

// stateKind tells Vec how to allocate and render one metric type.
type stateKind[S any] struct {
	typ   exposition.Type
	many  func(n int) []S
	one   func() *S
	write func(enc exposition.Encoder, name string, labels label.Group, s *S) error
}

// Vec is a metric family: one state of type S per distinct label group G.
//
// Bounded label sets up to the dense limit get every state preallocated in a slice;
// all others are stored sparsely and states are created on first access.
type Vec[G any, S any] struct {
	set    *label.GroupSet[G]
	store  storage[S]
	kind   *stateKind[S]
	cfg    FamilyConfig
	consts []constLabel
	logger Logger
	name   string

	warnAt atomic.Int64
}

func newVec[G, S any](set *label.GroupSet[G], kind *stateKind[S], opts []Option) (*Vec[G, S], error) {
	o := applyOptions(opts)
	consts, err := constLabels(o.ConstLabels, set.Names())
	if err != nil {
		return nil, err
	}
	v := &Vec[G, S]{
		set:    set,
		kind:   kind,
		cfg:    copyConfig(o.FamilyConfig),
		consts: consts,
		logger: o.logger,
		name:   o.name,
	}
	v.warnAt.Store(o.warnAt)

	n, bounded := set.Cardinality()
	switch {
	case bounded && !o.sparse && n <= o.denseLimit:
		v.store = newDenseStorage(kind.many(n), set.EncodeDense, set.DecodeDense)
	default:
		if bounded && !o.sparse {
			v.logger.Debugf("family %s: cardinality %d exceeds dense limit %d, using sparse storage",
				v.describe(), n, o.denseLimit)
		}
		v.store = newSparseStorage(o.shards, kind.one, set.CheckKey, v.grown)
	}
	return v, nil
}

func (v *Vec[G, S]) describe() string {
	if v.name != "" {
		return v.name
	}
	return fmt.Sprint(v.set.Names())
}

// grown warns once each time a sparse family reaches the next warning threshold.
func (v *Vec[G, S]) grown(n int64) {
	at := v.warnAt.Load()
	if at <= 0 || n < at {
		return
	}
	if v.warnAt.CompareAndSwap(at, at*2) {
		v.logger.Warnf("family %s: %d series, label cardinality keeps growing", v.describe(), n)
	}
}

// LabelSet returns the label group set the family is keyed by.
func (v *Vec[G, S]) LabelSet() *label.GroupSet[G] { return v.set }

// Type implements Family.
func (v *Vec[G, S]) Type() exposition.Type { return v.kind.typ }

// Config implements Family. The returned value is a defensive copy.
func (v *Vec[G, S]) Config() FamilyConfig { return copyConfig(v.cfg) }

// Dense reports whether states are preallocated.
func (v *Vec[G, S]) Dense() bool { return v.store.dense() }

// Key encodes g. ok is false when a fixed label value is unknown to its set.
func (v *Vec[G, S]) Key(g G) (label.Key, bool) { return v.set.Encode(g) }

// Get returns the state for g, creating it if the family is sparse.
func (v *Vec[G, S]) Get(g G) (*S, error) {
	k, ok := v.set.Encode(g)
	if !ok {
		return nil, fmt.Errorf("%w: %+v", ErrUnknownLabelValue, g)
	}
	return v.store.get(k), nil
}

// With is like Get but panics when g cannot be encoded.
func (v *Vec[G, S]) With(g G) *S {
	s, err := v.Get(g)
	if err != nil {
		panic(err)
	}
	return s
}

// Metric returns the state for a key previously obtained from Key.
// Hot paths compute the key once and reuse it. A key this family's label set could
// not have produced panics with label.ErrIndexOutOfRange.
func (v *Vec[G, S]) Metric(k label.Key) *S { return v.store.get(k) }

// GetMetric applies f to the state for k and returns its result.
func GetMetric[G, S, R any](v *Vec[G, S], k label.Key, f func(*S) R) R {
	return f(v.store.get(k))
}

// Range calls fn for every series in the family until fn returns false.
// For dense families this includes series that were never touched.
func (v *Vec[G, S]) Range(fn func(g G, s *S) bool) {
	v.store.rangeStates(func(k label.Key, s *S) bool {
		return fn(v.set.Decode(k), s)
	})
}

// Len returns the number of series.
func (v *Vec[G, S]) Len() int { return v.store.len() }

// CollectInto implements Family. Families without series are skipped.
func (v *Vec[G, S]) CollectInto(name string, enc exposition.Encoder) error {
	if v.store.len() == 0 {
		return nil
	}
	desc := exposition.FamilyDesc{Name: name, Help: v.cfg.Help, Unit: v.cfg.Unit, Type: v.kind.typ}
	if err := enc.WriteFamily(desc); err != nil {
		return err
	}
	var err error
	v.store.rangeStates(func(k label.Key, s *S) bool {
		var labels label.Group = v.set.Labels(v.set.Decode(k))
		if len(v.consts) > 0 {
			labels = constGroup{consts: v.consts, inner: labels}
		}
		err = v.kind.write(enc, name, labels, s)
		return err == nil
	})
	return err
}
