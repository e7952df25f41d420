package presolve

// Options controls the external behavior of Run, spec §6's recognized
// option keys. The zero value is the conservative default: no
// enumeration, default probing effort, no logging, no deadline.
type Options struct {
	// EnumerateAllSolutions is accepted but has no effect: Run applies
	// the same rewrites (mapping collapse, bound-narrowing, singleton
	// elimination) whether it is set or not.
	EnumerateAllSolutions bool

	// CPModelProbingLevel loosely mirrors cp-sat's own knob of the same
	// name: 0 disables probing, higher is more thorough. Only
	// recognized, not yet load-bearing, since internal/core/fixpoint's
	// probeLevelZero step is still a documented no-op pending the
	// Boolean layer's full probing integration.
	CPModelProbingLevel int

	// LogInfo, when set, makes Run return per-rule hit counts in
	// Result.Stats (ctx.Stats()'s contents) instead of an empty map.
	LogInfo bool

	// TimeLimitSeconds is recognized per spec §6 but not yet
	// load-bearing: internal/core/fixpoint.Run has no cancellation
	// point to check a deadline against (it runs a single worklist
	// loop to quiescence, not a caller-visible iteration boundary).
	// Zero means unbounded, the only behavior currently implemented.
	TimeLimitSeconds float64
}

// DefaultOptions returns the zero-value Options, named for callers
// that want to be explicit about taking every default.
func DefaultOptions() Options {
	return Options{}
}
