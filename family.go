package metrics

import (
	"fmt"
	"maps"
	"slices"

	"github.com/ygrebnov/metrics/v2/exposition"
	"github.com/ygrebnov/metrics/v2/label"
)

// Family is a named collection of metrics of one type keyed by a label group.
// Implementations must be safe for concurrent use.
type Family interface {
	// CollectInto writes the family header and every populated series under name.
	CollectInto(name string, enc exposition.Encoder) error
	Type() exposition.Type
	Config() FamilyConfig
}

// Group is anything that can emit a set of families: a Registry, a user-defined struct
// of families, or a namespaced wrapper around either.
type Group interface {
	CollectGroupInto(enc exposition.Encoder) error
}

// GroupFunc adapts a function to Group.
type GroupFunc func(enc exposition.Encoder) error

func (f GroupFunc) CollectGroupInto(enc exposition.Encoder) error { return f(enc) }

// FamilyConfig carries family metadata. It is advisory except for ConstLabels,
// which are rendered ahead of the group labels on every series.
type FamilyConfig struct {
	Help string
	Unit string
	// ConstLabels are static label pairs attached to the family itself.
	ConstLabels map[string]string
}

// DefaultDenseLimit is the largest bounded cardinality stored densely unless
// overridden with WithDenseLimit.
const DefaultDenseLimit = 1 << 16

type familyOptions struct {
	FamilyConfig

	name       string
	sparse     bool
	shards     int
	denseLimit int
	warnAt     int64
	logger     Logger
}

// Option configures a family at construction time.
type Option func(*familyOptions)

// WithHelp sets the HELP text of the family.
func WithHelp(help string) Option {
	return func(o *familyOptions) { o.Help = help }
}

// WithUnit sets an advisory unit for the family (e.g., "seconds", "bytes").
func WithUnit(unit string) Option {
	return func(o *familyOptions) { o.Unit = unit }
}

// WithConstLabels attaches static labels to every series of the family.
func WithConstLabels(labels map[string]string) Option {
	return func(o *familyOptions) {
		if len(labels) == 0 {
			return
		}
		if o.ConstLabels == nil {
			o.ConstLabels = make(map[string]string, len(labels))
		}
		maps.Copy(o.ConstLabels, labels)
	}
}

// WithSparse forces sparse storage even when the label set is bounded.
func WithSparse() Option {
	return func(o *familyOptions) { o.sparse = true }
}

// WithShards sets the number of lock shards used by sparse storage.
// n is rounded up to a power of two.
func WithShards(n int) Option {
	return func(o *familyOptions) { o.shards = n }
}

// WithDenseLimit sets the largest bounded cardinality that is stored densely.
// Larger label sets fall back to sparse storage.
func WithDenseLimit(n int) Option {
	return func(o *familyOptions) { o.denseLimit = n }
}

// WithCardinalityWarning logs a warning when a sparse family reaches n series,
// and again every time the count doubles.
func WithCardinalityWarning(n int64) Option {
	return func(o *familyOptions) { o.warnAt = n }
}

// WithFamilyLogger sets the logger used by the family.
func WithFamilyLogger(l Logger) Option {
	return func(o *familyOptions) { o.logger = l }
}

// withName tags log lines of registered families.
func withName(name string) Option {
	return func(o *familyOptions) { o.name = name }
}

func applyOptions(opts []Option) familyOptions {
	cfg := familyOptions{denseLimit: DefaultDenseLimit}
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = newNoopLogger()
	}
	return cfg
}

// copyConfig makes a defensive copy of FamilyConfig (copies ConstLabels).
func copyConfig(in FamilyConfig) FamilyConfig {
	out := FamilyConfig{Help: in.Help, Unit: in.Unit}
	if len(in.ConstLabels) > 0 {
		out.ConstLabels = maps.Clone(in.ConstLabels)
	}
	return out
}

type constLabel struct {
	name  string
	value label.String
}

// constLabels validates and orders const labels. They must not collide with the
// group's own label names or with "le".
func constLabels(in map[string]string, groupNames []string) ([]constLabel, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]constLabel, 0, len(in))
	for _, name := range slices.Sorted(maps.Keys(in)) {
		if err := label.ValidateName(name); err != nil {
			return nil, err
		}
		if slices.Contains(groupNames, name) {
			return nil, fmt.Errorf("%w: const label %q", label.ErrDuplicateLabelName, name)
		}
		out = append(out, constLabel{name: name, value: label.String(in[name])})
	}
	return out, nil
}

// constGroup renders const labels followed by the inner group.
type constGroup struct {
	consts []constLabel
	inner  label.Group
}

func (c constGroup) VisitLabels(v label.GroupVisitor) {
	for _, l := range c.consts {
		v.WriteLabel(l.name, l.value)
	}
	c.inner.VisitLabels(v)
}
