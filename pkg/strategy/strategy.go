// Package strategy implements the resolution strategies and the ordered
// chain that drives them. Strategies produce candidate locators; the
// chain verifies every candidate before accepting it.
package strategy

import (
	"context"

	"github.com/devicelab-dev/locator-resolver/pkg/core"
)

// Strategy is one algorithm attempting to produce a locator for a
// semantic id on a given page snapshot.
//
// Attempt returns ok=false for "no match" - a normal, expected outcome,
// never an error. A non-nil error means an infrastructure fault (page
// engine or external service unusable) and aborts the whole chain.
// Strategies must not mutate the page.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, page core.PageContext, id core.SemanticID) (core.Locator, bool, error)
}

// Canonical strategy names, cheapest first. This is also the default
// chain order.
const (
	NameStatic     = "static"
	NameStructural = "structural"
	NameScript     = "script"
	NameSemantic   = "semantic"
)

// DefaultOrder returns the recommended strategy order.
func DefaultOrder() []string {
	return []string{NameStatic, NameStructural, NameSemantic}
}
