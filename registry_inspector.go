package metrics

func (r *Registry) getFamilyMeta(name string) (FamilyConfig, bool) {
	m, ok := r.meta.Load(name)
	if !ok {
		// invariant violation: family without meta
		r.reportInvariantViolation("meta_missing", name)
		return FamilyConfig{}, false
	}

	c, ok2 := m.(FamilyConfig)
	if !ok2 {
		// invariant violation: wrong meta type
		r.reportInvariantViolation("meta_type", name)
		return FamilyConfig{}, false
	}

	return copyConfig(c), true
}

// FamilyWithMeta implements Inspector.FamilyWithMeta for Registry.
// It acquires the per-name init mutex, then reads both the family
// and metadata before unlocking in order to provide a consistent snapshot.
// The third return value is true if and only if both the family and the meta were found and both valid.
// Invariant violations (e.g., family exists but meta missing) are reported via logger.
func (r *Registry) FamilyWithMeta(name string) (Family, FamilyConfig, bool) {
	km := r.keyMu(name)
	km.Lock()
	defer km.Unlock()

	v, ok := r.families.Load(name)
	if !ok {
		// not registered; the mutex stays, a creator may be waiting on it
		return nil, FamilyConfig{}, false
	}
	if !r.cfg.doNotCleanupInits {
		r.inits.Delete(name)
	}

	f, ok2 := v.(Family)
	if !ok2 {
		// invariant violation: wrong type in map
		r.reportInvariantViolation("family_type", name)
		return nil, FamilyConfig{}, false
	}

	c, okOverall := r.getFamilyMeta(name)

	return f, c, okOverall
}

// ListMetadata returns a best-effort snapshot of metadata entries in registration
// order. It does not acquire per-name init mutexes; callers should treat the result
// as a point-in-time snapshot that may race with concurrent registrations.
// Families of included groups are not listed.
func (r *Registry) ListMetadata() []FamilyEntry {
	r.mu.Lock()
	names := append([]string(nil), r.order...)
	r.mu.Unlock()

	out := make([]FamilyEntry, 0, len(names))
	for _, name := range names {
		v, ok := r.families.Load(name)
		m, ok2 := r.meta.Load(name)
		if !ok || !ok2 {
			continue
		}
		f, ok := v.(Family)
		cfg, ok2 := m.(FamilyConfig)
		if !ok || !ok2 {
			continue // skip invalid entries
		}
		out = append(out, FamilyEntry{Type: f.Type(), Name: name, Config: copyConfig(cfg)})
	}
	return out
}
