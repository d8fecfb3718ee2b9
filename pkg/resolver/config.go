package resolver

import (
	"time"

	"github.com/devicelab-dev/locator-resolver/pkg/cache"
	"github.com/devicelab-dev/locator-resolver/pkg/strategy"
)

// Config controls resolver behavior. The strategy order is fixed at
// construction time and never mutable mid-run.
type Config struct {
	// StrategyOrder names the strategies to try, in order. Empty uses
	// strategy.DefaultOrder().
	StrategyOrder []string

	// CacheMaxEntries bounds the resolution cache (0 = default bound).
	CacheMaxEntries int

	// PerStrategyTimeout bounds each strategy attempt. A timed-out
	// attempt falls through to the next strategy.
	PerStrategyTimeout time.Duration

	// ResolveTimeout bounds a whole Resolve call (0 = sum of
	// per-strategy timeouts, when those are set).
	ResolveTimeout time.Duration

	// SemanticEnabled gates the semantic strategy. When false, the
	// "semantic" name is dropped from the order rather than rejected:
	// the chain must degrade gracefully without it.
	SemanticEnabled bool

	// OnFailure, when set, is invoked after a failed Resolve so the
	// surrounding framework can capture a screenshot or similar.
	OnFailure FailureHook
}

// DefaultConfig returns the recommended configuration.
func DefaultConfig() Config {
	return Config{
		StrategyOrder:      strategy.DefaultOrder(),
		CacheMaxEntries:    cache.DefaultMaxEntries,
		PerStrategyTimeout: 5 * time.Second,
		SemanticEnabled:    true,
	}
}

// resolveDeadline derives the whole-call bound: explicit when set,
// otherwise the per-strategy budget summed over the order.
func (c Config) resolveDeadline(strategyCount int) time.Duration {
	if c.ResolveTimeout > 0 {
		return c.ResolveTimeout
	}
	if c.PerStrategyTimeout > 0 && strategyCount > 0 {
		// One extra budget for cache verification.
		return c.PerStrategyTimeout * time.Duration(strategyCount+1)
	}
	return 0
}
