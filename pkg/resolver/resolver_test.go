package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/devicelab-dev/locator-resolver/pkg/cache"
	"github.com/devicelab-dev/locator-resolver/pkg/core"
	"github.com/devicelab-dev/locator-resolver/pkg/pagetest"
	"github.com/devicelab-dev/locator-resolver/pkg/registry"
	"github.com/devicelab-dev/locator-resolver/pkg/strategy"
)

// countingStrategy wraps another strategy and counts invocations.
type countingStrategy struct {
	strategy.Strategy
	mu    sync.Mutex
	calls int
}

func (c *countingStrategy) Attempt(ctx context.Context, page core.PageContext, id core.SemanticID) (core.Locator, bool, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.Strategy.Attempt(ctx, page, id)
}

func (c *countingStrategy) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// slowStrategy blocks until its delay elapses or the context expires.
type slowStrategy struct {
	name  string
	delay time.Duration
}

func (s *slowStrategy) Name() string { return s.name }

func (s *slowStrategy) Attempt(ctx context.Context, _ core.PageContext, _ core.SemanticID) (core.Locator, bool, error) {
	select {
	case <-time.After(s.delay):
		return core.Locator{}, false, nil
	case <-ctx.Done():
		return core.Locator{}, false, ctx.Err()
	}
}

var loginLocator = core.Locator{Kind: core.KindTestID, Value: "login-btn", Confidence: 1.0}

func loginRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.Parse([]byte(`
elements:
  login.button:
    testId: login-btn
    text: "Log in"
    tag: button
`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return reg
}

func loginPage() *pagetest.Page {
	page := pagetest.New(pagetest.Config{PageKey: "auth/login"})
	page.SetElements(loginLocator, pagetest.VisibleElement("Log in"))
	return page
}

func newTestResolver(t *testing.T, cfg Config, reg *registry.Registry) (*Resolver, *countingStrategy) {
	t.Helper()
	// No matcher service in these tests.
	cfg.SemanticEnabled = false
	static := &countingStrategy{Strategy: strategy.NewStatic(reg)}
	r, err := New(cfg, nil, nil, static, strategy.NewStructural(reg))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return r, static
}

func TestResolver_StaticFirstSingleAttempt(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrategyOrder = []string{strategy.NameStatic, strategy.NameStructural}
	r, _ := newTestResolver(t, cfg, loginRegistry(t))

	loc, err := r.Resolve(context.Background(), loginPage(), "login.button")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if loc != loginLocator {
		t.Errorf("Resolve() = %v, want the registered testId locator", loc)
	}

	attempts := r.LastAttempts("login.button")
	if len(attempts) != 1 {
		t.Fatalf("attempts = %d, want exactly 1 for a first-strategy hit", len(attempts))
	}
	if attempts[0].Strategy != strategy.NameStatic || attempts[0].Outcome != core.OutcomeResolved {
		t.Errorf("attempt = %+v, want a resolved static attempt", attempts[0])
	}
}

func TestResolver_SecondResolveServedFromCache(t *testing.T) {
	r, static := newTestResolver(t, DefaultConfig(), loginRegistry(t))
	page := loginPage()

	first, err := r.Resolve(context.Background(), page, "login.button")
	if err != nil {
		t.Fatalf("first Resolve() error: %v", err)
	}
	second, err := r.Resolve(context.Background(), page, "login.button")
	if err != nil {
		t.Fatalf("second Resolve() error: %v", err)
	}
	if first != second {
		t.Errorf("locators differ across calls: %v vs %v", first, second)
	}
	if got := static.count(); got != 1 {
		t.Errorf("static strategy ran %d times, want 1; the second call must come from cache", got)
	}

	attempts := r.LastAttempts("login.button")
	if len(attempts) != 1 || attempts[0].Strategy != "cache" {
		t.Errorf("attempts = %+v, want a single cache attempt", attempts)
	}
}

func TestResolver_StaleCacheInvalidatedThenRecovered(t *testing.T) {
	reg := loginRegistry(t)
	r, _ := newTestResolver(t, DefaultConfig(), reg)
	page := loginPage()

	// 1: populate the cache via the static strategy.
	if _, err := r.Resolve(context.Background(), page, "login.button"); err != nil {
		t.Fatalf("first Resolve() error: %v", err)
	}

	// The UI changes: the testId element is gone, but the text locator
	// the structural strategy builds still matches.
	page.RemoveElements(loginLocator)
	textLoc := core.Locator{
		Kind:  core.KindXPath,
		Value: `//button[normalize-space(.)="Log in"]`,
	}
	page.SetElements(textLoc, pagetest.VisibleElement("Log in"))

	// 2: the cached locator fails verification and must not be returned.
	loc, err := r.Resolve(context.Background(), page, "login.button")
	if err != nil {
		t.Fatalf("second Resolve() error: %v", err)
	}
	if loc.Kind != core.KindXPath {
		t.Errorf("Resolve() after drift = %v, want the structural text locator", loc)
	}

	attempts := r.LastAttempts("login.button")
	if attempts[0].Strategy != "cache" || attempts[0].Outcome != core.OutcomeAbsent {
		t.Errorf("first attempt = %+v, want the stale cache probe recorded as absent", attempts[0])
	}

	// 3: the fresh locator was re-cached.
	if _, err := r.Resolve(context.Background(), page, "login.button"); err != nil {
		t.Fatalf("third Resolve() error: %v", err)
	}
	final := r.LastAttempts("login.button")
	if len(final) != 1 || final[0].Strategy != "cache" || final[0].Outcome != core.OutcomeResolved {
		t.Errorf("third-call attempts = %+v, want a cache hit on the re-cached locator", final)
	}
}

func TestResolver_ExhaustionLeavesNoCacheEntry(t *testing.T) {
	r, _ := newTestResolver(t, DefaultConfig(), registry.New(nil))
	page := pagetest.New(pagetest.Config{PageKey: "auth/login"})

	_, err := r.Resolve(context.Background(), page, "login.button")
	if !core.IsNotResolved(err) {
		t.Fatalf("Resolve() error = %v, want not-resolved", err)
	}
	if _, ok := r.Cache().Get("auth/login", "login.button"); ok {
		t.Error("a failed resolve left a cache entry behind")
	}

	attempts := r.LastAttempts("login.button")
	if len(attempts) != len(r.Strategies()) {
		t.Errorf("attempts = %d, want one per strategy (%d)", len(attempts), len(r.Strategies()))
	}
}

func TestResolver_SemanticDisabledDropsStrategy(t *testing.T) {
	reg := loginRegistry(t)
	cfg := DefaultConfig()
	cfg.StrategyOrder = []string{strategy.NameStatic, strategy.NameSemantic}
	cfg.SemanticEnabled = false

	// The semantic strategy is not even provided; disabled means dropped,
	// not rejected.
	r, err := New(cfg, nil, nil, strategy.NewStatic(reg))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if got := r.Strategies(); len(got) != 1 || got[0] != strategy.NameStatic {
		t.Errorf("Strategies() = %v, want [static]", got)
	}

	if _, err := r.Resolve(context.Background(), loginPage(), "login.button"); err != nil {
		t.Errorf("Resolve() error: %v, want degraded chain to still work", err)
	}
}

func TestResolver_UnknownStrategyNameRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrategyOrder = []string{"telepathy"}

	_, err := New(cfg, nil, nil, strategy.NewStatic(registry.New(nil)))
	if !errors.Is(err, core.ErrUnknownStrategy) {
		t.Errorf("New() error = %v, want unknown-strategy", err)
	}
}

func TestResolver_EmptyEffectiveOrderRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrategyOrder = []string{strategy.NameSemantic}
	cfg.SemanticEnabled = false

	_, err := New(cfg, nil, nil)
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("New() error = %v, want invalid-config for an empty order", err)
	}
}

func TestResolver_InvalidSemanticID(t *testing.T) {
	r, _ := newTestResolver(t, DefaultConfig(), registry.New(nil))

	_, err := r.Resolve(context.Background(), loginPage(), "has space")
	if !errors.Is(err, core.ErrInvalidSemanticID) {
		t.Errorf("Resolve() error = %v, want invalid-semantic-id", err)
	}
}

func TestResolver_WholeResolveDeadline(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrategyOrder = []string{"glacial-1", "glacial-2"}
	cfg.PerStrategyTimeout = 0
	cfg.ResolveTimeout = 40 * time.Millisecond

	r, err := New(cfg, nil, nil,
		&slowStrategy{name: "glacial-1", delay: time.Second},
		&slowStrategy{name: "glacial-2", delay: time.Second},
	)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	start := time.Now()
	_, rerr := r.Resolve(context.Background(), pagetest.New(pagetest.Config{}), "x.y")
	elapsed := time.Since(start)

	var re *core.ResolutionError
	if !errors.As(rerr, &re) || re.Category != core.ErrCategoryTimeout {
		t.Fatalf("Resolve() error = %v, want a timeout", rerr)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("Resolve() took %v; the 40ms deadline did not bound the call", elapsed)
	}
}

func TestResolver_FailureHookFires(t *testing.T) {
	var hookID core.SemanticID
	var hookErr error

	cfg := DefaultConfig()
	cfg.OnFailure = func(_ context.Context, _ core.PageContext, id core.SemanticID, err error) {
		hookID, hookErr = id, err
	}
	r, _ := newTestResolver(t, cfg, registry.New(nil))

	_, err := r.Resolve(context.Background(), pagetest.New(pagetest.Config{}), "missing.thing")
	if err == nil {
		t.Fatal("Resolve() succeeded for an unregistered id on an empty page")
	}
	if hookID != "missing.thing" || !errors.Is(hookErr, err) {
		t.Errorf("hook saw (%q, %v), want the failing id and error", hookID, hookErr)
	}
}

func TestResolver_SharedCacheAcrossResolvers(t *testing.T) {
	reg := loginRegistry(t)
	shared := cache.New(0)
	cfg := DefaultConfig()
	cfg.SemanticEnabled = false

	r1, err := New(cfg, shared, nil, strategy.NewStatic(reg), strategy.NewStructural(reg))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	static2 := &countingStrategy{Strategy: strategy.NewStatic(reg)}
	r2, err := New(cfg, shared, nil, static2, strategy.NewStructural(reg))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	page := loginPage()
	if _, err := r1.Resolve(context.Background(), page, "login.button"); err != nil {
		t.Fatalf("r1 Resolve() error: %v", err)
	}
	if _, err := r2.Resolve(context.Background(), page, "login.button"); err != nil {
		t.Fatalf("r2 Resolve() error: %v", err)
	}
	if static2.count() != 0 {
		t.Error("r2 ran its chain instead of using the shared cache")
	}
}

func TestResolver_ConcurrentResolves(t *testing.T) {
	reg, err := registry.Parse([]byte(`
elements:
  a.one: {testId: a-one}
  a.two: {testId: a-two}
  a.three: {testId: a-three}
`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	page := pagetest.New(pagetest.Config{PageKey: "grid"})
	ids := []core.SemanticID{"a.one", "a.two", "a.three"}
	for _, id := range ids {
		value := fmt.Sprintf("a-%s", id[2:])
		page.SetElements(
			core.Locator{Kind: core.KindTestID, Value: value, Confidence: 1.0},
			pagetest.VisibleElement(string(id)),
		)
	}

	r, _ := newTestResolver(t, DefaultConfig(), reg)

	var wg sync.WaitGroup
	errs := make(chan error, 60)
	for i := 0; i < 20; i++ {
		for _, id := range ids {
			wg.Add(1)
			go func(id core.SemanticID) {
				defer wg.Done()
				if _, err := r.Resolve(context.Background(), page, id); err != nil {
					errs <- fmt.Errorf("%s: %w", id, err)
				}
			}(id)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	if r.Cache().Len() != len(ids) {
		t.Errorf("cache holds %d entries, want %d", r.Cache().Len(), len(ids))
	}
}
