package label

// Pair joins two label groups, for example namespace-level labels and per-call labels.
type Pair[A, B any] struct {
	A A
	B B
}

// Compose builds a group set over Pair[A, B] declaring a's dimensions followed by b's.
//
// The result encodes exactly like a single group set declaring the same dimensions in the
// same order: cardinalities multiply, the fixed index is iA*cardinality(b) + iB and the
// dynamic indices of a are followed by those of b.
func Compose[A, B any](a *GroupSet[A], b *GroupSet[B]) (*GroupSet[Pair[A, B]], error) {
	dims := make([]Dimension[Pair[A, B]], 0, len(a.dims)+len(b.dims))
	for _, d := range a.dims {
		dims = append(dims, lift(d,
			func(p Pair[A, B]) A { return p.A },
			func(p *Pair[A, B]) *A { return &p.A }))
	}
	for _, d := range b.dims {
		dims = append(dims, lift(d,
			func(p Pair[A, B]) B { return p.B },
			func(p *Pair[A, B]) *B { return &p.B }))
	}
	return NewGroupSet(dims...)
}

func lift[G, H any](d Dimension[G], get func(h H) G, ref func(h *H) *G) Dimension[H] {
	return Dimension[H]{
		name:   d.name,
		card:   d.card,
		fixed:  d.fixed,
		encode: func(h H) (int, bool) { return d.encode(get(h)) },
		decode: func(i int, h *H) { d.decode(i, ref(h)) },
		value:  func(h H) Value { return d.value(get(h)) },
	}
}
