package metrics

import "github.com/ygrebnov/metrics/v2/exposition"

// Inspector provides an optional capability of metadata inspection/snapshot.
// Implementations should return defensive copies of configs.
// FamilyWithMeta returns the family (if registered), a snapshot of its config,
// and a flag of whether it was found.
// Snapshot semantics: best-effort at call time.
// Methods must be safe for concurrent use.
type Inspector interface {
	FamilyWithMeta(name string) (Family, FamilyConfig, bool)

	// ListMetadata returns enumeration for admin/debug UIs, in registration order.
	ListMetadata() []FamilyEntry
}

type FamilyEntry struct {
	Type   exposition.Type
	Name   string
	Config FamilyConfig // defensive copy
}

var _ Inspector = (*Registry)(nil)
