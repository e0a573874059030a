package label

import "fmt"

// Set assigns dense integer indices to the values of one label dimension.
type Set[T any] interface {
	// Cardinality reports the number of values the set can represent.
	// ok is false for sets that grow without bound.
	Cardinality() (n int, ok bool)
	// Encode returns the index of v, or false when v cannot be represented.
	Encode(v T) (int, bool)
	// Decode returns the value stored at index i. It panics if i is not a valid index.
	Decode(i int) T
}

// FixedLabel is implemented by closed enumerations whose full value set is known at
// compile time. Encode and Decode must form a bijection over [0, Cardinality()).
//
// The methods are called on arbitrary values of T, including its zero value, so
// Cardinality and Decode must not depend on the receiver.
type FixedLabel[T any] interface {
	Cardinality() int
	Encode() int
	Decode(i int) T
}

// Enum adapts a FixedLabel type to a Set. The zero value is ready to use.
type Enum[T FixedLabel[T]] struct{}

func (Enum[T]) Cardinality() (int, bool) {
	var zero T
	return zero.Cardinality(), true
}

func (Enum[T]) Encode(v T) (int, bool) {
	return v.Encode(), true
}

func (Enum[T]) Decode(i int) T {
	var zero T
	if n := zero.Cardinality(); i < 0 || i >= n {
		panic(fmt.Errorf("%w: %d not in [0, %d) for %T", ErrIndexOutOfRange, i, n, zero))
	}
	return zero.Decode(i)
}

func checkIndex(i, n int) {
	if i < 0 || i >= n {
		panic(fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, n))
	}
}
