package metrics

type registryConfig struct {
	// when false, remove per-key mutex entries from `inits` after registration to
	// allow GC of mutexes for many short-lived family names. Default: false.
	doNotCleanupInits bool
	logger            Logger
	namespace         string
	// applied ahead of caller options for families created by the registry
	familyOpts []Option
}

// RegistryOption configures a Registry constructed by NewRegistry.
type RegistryOption func(*registryConfig)

// WithInitCleanupDisabled controls whether per-key init mutex entries are removed from
// the registry's internal `inits` map after registration. When enabled the
// entries are deleted to allow GC of mutexes for short-lived family names.
// Init cleanup is enabled by default; this option disables it.
func WithInitCleanupDisabled() RegistryOption {
	return func(cfg *registryConfig) { cfg.doNotCleanupInits = true }
}

// WithLogger sets the registry logger. Families created through the registry
// inherit it unless they set WithFamilyLogger.
func WithLogger(l Logger) RegistryOption {
	return func(cfg *registryConfig) { cfg.logger = l }
}

// WithNamespace prefixes every family name emitted by the registry with ns + "_".
func WithNamespace(ns string) RegistryOption {
	return func(cfg *registryConfig) { cfg.namespace = ns }
}

// WithDefaultFamilyOptions applies opts to every family created by the registry,
// before the options passed at creation.
func WithDefaultFamilyOptions(opts ...Option) RegistryOption {
	return func(cfg *registryConfig) { cfg.familyOpts = append(cfg.familyOpts, opts...) }
}
