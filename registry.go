package metrics

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ygrebnov/metrics/v2/exposition"
	"github.com/ygrebnov/metrics/v2/label"
)

// Registry is a named collection of families and nested groups.
// It is concurrency-safe; families are emitted in registration order.
type Registry struct {
	cfg    *registryConfig
	logger Logger

	families sync.Map // map[string]Family
	meta     sync.Map // map[string]FamilyConfig
	// per-name init mutexes: protect concurrent registration of the same name
	inits sync.Map // map[string]*sync.Mutex

	mu      sync.Mutex // guards order and groups
	order   []string
	groups  []Group
	reports atomic.Int32
}

// NewRegistry constructs a new Registry.
// It panics if the namespace set with WithNamespace is not a valid metric name.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := &registryConfig{}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	if cfg.namespace != "" {
		if err := ValidateName(cfg.namespace); err != nil {
			panic(err)
		}
	}
	l := cfg.logger
	if l == nil {
		l = newNoopLogger()
	}
	return &Registry{cfg: cfg, logger: l}
}

// keyMu returns a per-name mutex, creating one if necessary.
func (r *Registry) keyMu(name string) *sync.Mutex {
	m, _ := r.inits.LoadOrStore(name, &sync.Mutex{})
	return m.(*sync.Mutex)
}

// store records f under name. Callers hold the name's init mutex.
func (r *Registry) store(name string, f Family) {
	r.meta.Store(name, f.Config())
	r.families.Store(name, f)
	r.mu.Lock()
	r.order = append(r.order, name)
	r.mu.Unlock()
	r.logger.Debugf("registered %s family %q", f.Type(), name)
	// the mutex may be deleted while held; later callers get a fresh one
	// and find the family on their re-check
	if !r.cfg.doNotCleanupInits {
		r.inits.Delete(name)
	}
}

// Register adds a family constructed by the caller.
func (r *Registry) Register(name string, f Family) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	km := r.keyMu(name)
	km.Lock()
	defer km.Unlock()

	if _, ok := r.families.Load(name); ok {
		return fmt.Errorf("%w: %q", ErrDuplicateFamily, name)
	}
	r.store(name, f)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, f Family) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Include adds a nested group. Its families are emitted after the registry's own.
func (r *Registry) Include(g Group) {
	r.mu.Lock()
	r.groups = append(r.groups, g)
	r.mu.Unlock()
}

// familyOptions prepends registry defaults to opts.
func (r *Registry) familyOptions(name string, opts []Option) []Option {
	all := make([]Option, 0, len(r.cfg.familyOpts)+len(opts)+2)
	all = append(all, WithFamilyLogger(r.logger), withName(r.qualify(name)))
	all = append(all, r.cfg.familyOpts...)
	return append(all, opts...)
}

func (r *Registry) qualify(name string) string {
	if r.cfg.namespace == "" {
		return name
	}
	return r.cfg.namespace + "_" + name
}

// getOrCreate is a helper that implements a fast read path and uses a per-name
// mutex to deduplicate concurrent creations. Options only apply on creation; later
// calls get the existing family as long as its type matches F.
func getOrCreate[F Family](r *Registry, name string, create func(opts []Option) (F, error), opts []Option) (F, error) {
	// fast read path using sync.Map loads (safe without a global lock)
	if v, ok := r.families.Load(name); ok {
		return assertFamily[F](r, name, v)
	}
	var zero F
	if err := ValidateName(name); err != nil {
		return zero, err
	}

	km := r.keyMu(name)
	km.Lock()
	defer km.Unlock()

	// re-check after acquiring per-name mutex
	if v, ok := r.families.Load(name); ok {
		return assertFamily[F](r, name, v)
	}
	f, err := create(r.familyOptions(name, opts))
	if err != nil {
		return zero, fmt.Errorf("family %q: %w", name, err)
	}
	r.store(name, f)
	return f, nil
}

func assertFamily[F Family](r *Registry, name string, v interface{}) (F, error) {
	var zero F
	fam, ok := v.(Family)
	if !ok {
		r.reportInvariantViolation("family_type", name)
		return zero, fmt.Errorf("%w: %q", ErrFamilyTypeMismatch, name)
	}
	f, ok := fam.(F)
	if !ok {
		return zero, fmt.Errorf("%w: %q is a %s family of %T", ErrFamilyTypeMismatch, name, fam.Type(), fam)
	}
	return f, nil
}

// RegisterCounterVec returns the counter family registered under name, creating it
// over set on first use.
func RegisterCounterVec[G any](r *Registry, name string, set *label.GroupSet[G], opts ...Option) (*CounterVec[G], error) {
	return getOrCreate(r, name, func(opts []Option) (*CounterVec[G], error) {
		return NewCounterVec(set, opts...)
	}, opts)
}

// RegisterGaugeVec returns the gauge family registered under name, creating it
// over set on first use.
func RegisterGaugeVec[G any](r *Registry, name string, set *label.GroupSet[G], opts ...Option) (*GaugeVec[G], error) {
	return getOrCreate(r, name, func(opts []Option) (*GaugeVec[G], error) {
		return NewGaugeVec(set, opts...)
	}, opts)
}

// RegisterFloatGaugeVec returns the float gauge family registered under name,
// creating it over set on first use.
func RegisterFloatGaugeVec[G any](r *Registry, name string, set *label.GroupSet[G], opts ...Option) (*FloatGaugeVec[G], error) {
	return getOrCreate(r, name, func(opts []Option) (*FloatGaugeVec[G], error) {
		return NewFloatGaugeVec(set, opts...)
	}, opts)
}

// RegisterHistogramVec returns the histogram family registered under name, creating
// it over set and t on first use.
func RegisterHistogramVec[G any](r *Registry, name string, set *label.GroupSet[G], t *Thresholds, opts ...Option) (*HistogramVec[G], error) {
	return getOrCreate(r, name, func(opts []Option) (*HistogramVec[G], error) {
		return NewHistogramVec(set, t, opts...)
	}, opts)
}

// CollectGroupInto implements Group. Own families are written in registration
// order, then included groups in inclusion order. The first encoder error aborts
// collection and is returned unchanged.
func (r *Registry) CollectGroupInto(enc exposition.Encoder) error {
	r.mu.Lock()
	names := append([]string(nil), r.order...)
	groups := append([]Group(nil), r.groups...)
	r.mu.Unlock()

	if r.cfg.namespace != "" {
		enc = namespaced(enc, r.cfg.namespace)
	}
	for _, name := range names {
		v, ok := r.families.Load(name)
		if !ok {
			r.reportInvariantViolation("family_missing", name)
			continue
		}
		f, ok := v.(Family)
		if !ok {
			r.reportInvariantViolation("family_type", name)
			continue
		}
		if err := f.CollectInto(name, enc); err != nil {
			return err
		}
	}
	for _, g := range groups {
		if err := g.CollectGroupInto(enc); err != nil {
			return err
		}
	}
	return nil
}

// reportInvariantViolation reports unexpected internal states such as
// "family listed but missing". In release builds it logs up to 10 times per registry;
// in debug builds (or under race detector) it panics to catch bugs early.
func (r *Registry) reportInvariantViolation(kind string, name string) {
	// Avoid spamming logs
	const maxReports = 10
	if r.reports.Add(1) > maxReports {
		return
	}

	msg := "[metrics] invariant violation: " + kind + " for " + name

	// In debug builds, fail fast.
	if isDebugBuild() {
		panic(msg)
	}

	// In release builds, just log a warning.
	r.logger.Warnf("%s", msg)
}

// isDebugBuild reports whether we're in a "metricsdebug" or "race" build.
func isDebugBuild() bool {
	return raceBuild || debugBuild
}

// Collect writes every group into enc in order and flushes it.
func Collect(enc exposition.Encoder, groups ...Group) error {
	for _, g := range groups {
		if err := g.CollectGroupInto(enc); err != nil {
			return err
		}
	}
	return enc.Flush()
}
