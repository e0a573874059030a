/*
Package label turns typed label groups into compact integer keys and back.

# Overview

A metric family varies over a fixed list of label dimensions. Each dimension is backed by a
Set that assigns dense integer indices to its values:

  - Enum adapts a closed enumeration (a type implementing FixedLabel) whose values are known at
    compile time.
  - IndexSet holds a finite list of strings known at startup (for example API route templates).
    It never changes after construction.
  - InternSet interns strings on first use. It is safe for concurrent use and its cardinality is
    unbounded.

A GroupSet composes the dimensions of a label group struct G into one encoder. Dimensions
whose set reports a bounded cardinality are combined with a mixed-radix positional encoding
into Key.Index; every other dimension keeps its own set index in Key.Dynamic:

	index, mul := 0, 1
	for each fixed dimension d, last declared first:
		index += d.encode(g) * mul
		mul *= d.cardinality

When every dimension is fixed the group set is dense: Cardinality reports the product of the
dimension cardinalities and Key.Index lies in [0, Cardinality()). Storage layers use this to
back a family with a plain slice.

# Defining a label group

There is no code generation; a group is a plain struct and its GroupSet lists one Dimension per
field:

	type ErrorLabels struct {
		Kind  ErrorKind // implements label.FixedLabel[ErrorKind]
		Route string
	}

	routes := label.MustIndexSet("/api/v1/users", "/api/v1/orders")
	set := label.MustGroupSet(
		label.Dim("kind", label.Enum[ErrorKind]{},
			func(g ErrorLabels) ErrorKind { return g.Kind },
			func(g *ErrorLabels, v ErrorKind) { g.Kind = v }),
		label.Dim("route", routes,
			func(g ErrorLabels) string { return g.Route },
			func(g *ErrorLabels, v string) { g.Route = v }),
	)

Sets are plain pointers and may be shared by several group sets. Families that must agree on
the index of a value (for example a request counter and a latency histogram keyed by the same
route interner) share the same *InternSet.

# Failure modes

Encoding a value a read-only set does not know is not an error of the set: Encode reports
false and the caller decides. Decoding an index outside a set's range, and using the dense
encoding of a group set that has dynamic dimensions, are programming errors and panic.
*/
package label
