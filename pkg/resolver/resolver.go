// Package resolver is the facade page objects consume: it composes the
// cache, the verifier, and the strategy chain behind a single
// Resolve(pageContext, semanticId) entry point.
package resolver

import (
	"context"
	"io"
	"log"
	"sync"

	"github.com/devicelab-dev/locator-resolver/pkg/cache"
	"github.com/devicelab-dev/locator-resolver/pkg/core"
	"github.com/devicelab-dev/locator-resolver/pkg/strategy"
	"github.com/devicelab-dev/locator-resolver/pkg/verify"
)

// cacheStrategyName labels cache hits in attempt diagnostics. The cache
// is not a chain strategy - it short-circuits before the chain - but
// its outcome belongs in the same attempt log.
const cacheStrategyName = "cache"

// FailureHook is called after a failed Resolve, with the page still
// live, so the caller can capture diagnostics.
type FailureHook func(ctx context.Context, page core.PageContext, id core.SemanticID, err error)

// Resolver maps semantic ids to verified locators. It is safe for
// concurrent use by many sessions; the passed PageContext is never
// retained beyond the call.
type Resolver struct {
	cfg      Config
	cache    *cache.Cache
	verifier *verify.Verifier
	chain    *strategy.Chain
	logger   *log.Logger

	mu           sync.Mutex
	lastAttempts map[core.SemanticID][]core.Attempt
}

// New builds a Resolver from the available strategies. The order in
// cfg.StrategyOrder selects and sequences them; naming a strategy that
// was not provided is a configuration error. A nil cache gets a fresh
// one bounded by cfg.CacheMaxEntries, so tests can inject an isolated
// cache and production can share one across resolvers.
func New(cfg Config, c *cache.Cache, logger *log.Logger, available ...strategy.Strategy) (*Resolver, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if c == nil {
		c = cache.New(cfg.CacheMaxEntries)
	}

	order := cfg.StrategyOrder
	if len(order) == 0 {
		order = strategy.DefaultOrder()
	}

	byName := make(map[string]strategy.Strategy, len(available))
	for _, s := range available {
		byName[s.Name()] = s
	}

	ordered := make([]strategy.Strategy, 0, len(order))
	for _, name := range order {
		if name == strategy.NameSemantic && !cfg.SemanticEnabled {
			continue
		}
		s, ok := byName[name]
		if !ok {
			return nil, core.ErrUnknownStrategy.WithDetails(map[string]interface{}{"strategy": name})
		}
		ordered = append(ordered, s)
	}
	if len(ordered) == 0 {
		return nil, core.ErrInvalidConfig.WithMessage("strategy order is empty")
	}

	verifier := verify.New()
	return &Resolver{
		cfg:          cfg,
		cache:        c,
		verifier:     verifier,
		chain:        strategy.NewChain(verifier, cfg.PerStrategyTimeout, ordered...),
		logger:       logger,
		lastAttempts: make(map[core.SemanticID][]core.Attempt),
	}, nil
}

// Resolve maps a semantic id to a currently-valid, verified locator.
// It never returns a zero locator with a nil error; every failure is a
// classified *core.ResolutionError.
func (r *Resolver) Resolve(ctx context.Context, page core.PageContext, id core.SemanticID) (core.Locator, error) {
	if err := id.Validate(); err != nil {
		return core.Locator{}, err
	}

	if d := r.cfg.resolveDeadline(len(r.chain.Strategies())); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	pageKey := page.Key()
	attempts := make([]core.Attempt, 0, 4)

	loc, outcome, err := r.checkCache(ctx, page, pageKey, id, &attempts)
	if err != nil {
		r.finish(ctx, page, id, attempts, err)
		return core.Locator{}, err
	}
	if outcome == verify.Verified {
		r.finish(ctx, page, id, attempts, nil)
		return loc, nil
	}

	loc, chainAttempts, err := r.chain.Resolve(ctx, page, id)
	attempts = append(attempts, chainAttempts...)
	if err != nil {
		r.finish(ctx, page, id, attempts, err)
		return core.Locator{}, err
	}

	r.cache.Put(pageKey, id, loc)
	r.finish(ctx, page, id, attempts, nil)
	return loc, nil
}

// checkCache consults the cache and verifies any hit. A stale entry is
// invalidated synchronously, before the chain runs, so the same call
// cannot reuse it.
func (r *Resolver) checkCache(ctx context.Context, page core.PageContext, pageKey string, id core.SemanticID, attempts *[]core.Attempt) (core.Locator, verify.Outcome, error) {
	loc, ok := r.cache.Get(pageKey, id)
	if !ok {
		return core.Locator{}, verify.Absent, nil
	}

	outcome, err := r.verifier.Verify(ctx, page, loc)
	if err != nil {
		*attempts = append(*attempts, core.NewAttempt(id, cacheStrategyName, core.OutcomeFaulted, 0))
		return core.Locator{}, verify.Absent, err
	}

	switch outcome {
	case verify.Verified:
		r.cache.Touch(pageKey, id)
		*attempts = append(*attempts, core.NewAttempt(id, cacheStrategyName, core.OutcomeResolved, 0))
		return loc, verify.Verified, nil
	case verify.Ambiguous:
		*attempts = append(*attempts, core.NewAttempt(id, cacheStrategyName, core.OutcomeAmbiguous, 0))
	default:
		*attempts = append(*attempts, core.NewAttempt(id, cacheStrategyName, core.OutcomeAbsent, 0))
	}

	r.cache.Invalidate(pageKey, id)
	return core.Locator{}, outcome, nil
}

// finish records diagnostics and fires the failure hook.
func (r *Resolver) finish(ctx context.Context, page core.PageContext, id core.SemanticID, attempts []core.Attempt, err error) {
	r.mu.Lock()
	r.lastAttempts[id] = attempts
	r.mu.Unlock()

	if err != nil {
		r.logger.Printf("resolve %s failed after %d attempts: %v", id, len(attempts), err)
		if r.cfg.OnFailure != nil {
			r.cfg.OnFailure(ctx, page, id, err)
		}
		return
	}
	r.logger.Printf("resolve %s ok after %d attempts", id, len(attempts))
}

// LastAttempts returns the attempt log of the most recent Resolve for
// the id, for failure reporting by the surrounding test framework.
func (r *Resolver) LastAttempts(id core.SemanticID) []core.Attempt {
	r.mu.Lock()
	defer r.mu.Unlock()

	attempts := r.lastAttempts[id]
	out := make([]core.Attempt, len(attempts))
	copy(out, attempts)
	return out
}

// Cache exposes the resolution cache for diagnostics.
func (r *Resolver) Cache() *cache.Cache {
	return r.cache
}

// Strategies returns the effective strategy order.
func (r *Resolver) Strategies() []string {
	return r.chain.Strategies()
}
