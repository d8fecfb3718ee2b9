package strategy

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/devicelab-dev/locator-resolver/pkg/core"
	"github.com/devicelab-dev/locator-resolver/pkg/verify"
)

// Chain tries strategies in a fixed order until one produces a verified
// locator or all are exhausted. The order is set at construction and
// never changes mid-run, so precedence is deterministic.
type Chain struct {
	strategies []Strategy
	verifier   *verify.Verifier
	perAttempt time.Duration
}

// NewChain creates a chain. perAttempt bounds each strategy attempt;
// zero disables the per-attempt time box.
func NewChain(verifier *verify.Verifier, perAttempt time.Duration, strategies ...Strategy) *Chain {
	return &Chain{
		strategies: strategies,
		verifier:   verifier,
		perAttempt: perAttempt,
	}
}

// Strategies returns the configured order (names only).
func (c *Chain) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Resolve runs the chain for one semantic id. It returns the verified
// locator, the full attempt log, and an error when nothing verified.
//
// A strategy timeout is recorded and the chain moves on; an
// infrastructure fault aborts immediately, because it means the
// environment is broken, not the UI.
func (c *Chain) Resolve(ctx context.Context, page core.PageContext, id core.SemanticID) (core.Locator, []core.Attempt, error) {
	attempts := make([]core.Attempt, 0, len(c.strategies))

	for _, strat := range c.strategies {
		if err := ctx.Err(); err != nil {
			// Whole-resolve deadline hit between attempts.
			return core.Locator{}, attempts, core.ErrResolveTimeout.
				WithDetails(map[string]interface{}{"semanticId": string(id)}).
				WithAttempts(attempts).
				WithCause(err)
		}

		res, outcome, err := c.attempt(ctx, strat, page, id)
		attempts = append(attempts, core.NewAttempt(id, strat.Name(), outcome, res.dur))

		switch outcome {
		case core.OutcomeResolved:
			return res.loc, attempts, nil
		case core.OutcomeTimedOut:
			if err != nil {
				// The whole-resolve deadline, not the per-attempt box,
				// was consumed mid-attempt.
				return core.Locator{}, attempts, core.ErrResolveTimeout.
					WithDetails(map[string]interface{}{"semanticId": string(id)}).
					WithAttempts(attempts).
					WithCause(err)
			}
		case core.OutcomeFaulted:
			return core.Locator{}, attempts, core.ErrInfrastructure.
				WithDetails(map[string]interface{}{
					"semanticId": string(id),
					"strategy":   strat.Name(),
				}).
				WithAttempts(attempts).
				WithCause(err)
		}
		// NotFound, Absent, Ambiguous, TimedOut: try the next strategy.
	}

	return core.Locator{}, attempts, core.NewNotResolved(id, attempts)
}

// timedLocator pairs an attempt's product with its duration.
type timedLocator struct {
	loc core.Locator
	dur time.Duration
}

// attempt runs one strategy plus verification under the per-attempt
// time box and classifies the outcome.
func (c *Chain) attempt(ctx context.Context, strat Strategy, page core.PageContext, id core.SemanticID) (timedLocator, core.AttemptOutcome, error) {
	attemptCtx := ctx
	cancel := func() {}
	if c.perAttempt > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, c.perAttempt)
	}
	defer cancel()

	start := time.Now()
	loc, ok, err := strat.Attempt(attemptCtx, page, id)
	if err != nil {
		if isTimeout(err) {
			if ctx.Err() != nil {
				return timedLocator{dur: time.Since(start)}, core.OutcomeTimedOut, ctx.Err()
			}
			// The attempt's own time box expired; the resolve as a
			// whole still has budget. Falls through, not a fault.
			return timedLocator{dur: time.Since(start)}, core.OutcomeTimedOut, nil
		}
		return timedLocator{dur: time.Since(start)}, core.OutcomeFaulted, err
	}
	if !ok {
		return timedLocator{dur: time.Since(start)}, core.OutcomeNotFound, nil
	}

	// Verify on the parent context: verification is cheap and should
	// not be starved by a slow strategy having used the attempt budget.
	vout, verr := c.verifier.Verify(ctx, page, loc)
	elapsed := time.Since(start)
	if verr != nil {
		return timedLocator{dur: elapsed}, core.OutcomeFaulted, verr
	}

	switch vout {
	case verify.Verified:
		return timedLocator{loc: loc, dur: elapsed}, core.OutcomeResolved, nil
	case verify.Ambiguous:
		return timedLocator{dur: elapsed}, core.OutcomeAmbiguous, nil
	default:
		return timedLocator{dur: elapsed}, core.OutcomeAbsent, nil
	}
}

// isTimeout reports whether the error is a context deadline or a
// network timeout, as opposed to a hard transport failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
