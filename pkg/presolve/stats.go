package presolve

// Stats is a rule-name to hit-count snapshot, surfaced when
// Options.LogInfo is set. It is a direct copy of the presolve
// context's internal counters (internal/core/context.Context.Stats),
// exported here so callers outside internal/core never need to import
// that package just to read them.
type Stats map[string]int
