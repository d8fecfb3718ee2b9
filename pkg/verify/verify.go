// Package verify confirms that a candidate locator currently resolves
// to exactly one visible, interactable element. Nothing is returned to
// a caller or written to the cache without passing through here.
package verify

import (
	"context"

	"github.com/devicelab-dev/locator-resolver/pkg/core"
)

// Outcome is the three-way verification result. "Matches many" and
// "matches none" call for different downstream behavior, so a boolean
// is not enough.
type Outcome int

const (
	Verified  Outcome = iota // exactly one visible, interactable element
	Ambiguous                // more than one element matched
	Absent                   // zero usable elements matched
)

// String returns the string representation of Outcome.
func (o Outcome) String() string {
	switch o {
	case Verified:
		return "verified"
	case Ambiguous:
		return "ambiguous"
	case Absent:
		return "absent"
	default:
		return "unknown"
	}
}

// Verifier checks candidate locators against a live page.
type Verifier struct{}

// New creates a Verifier.
func New() *Verifier {
	return &Verifier{}
}

// Verify resolves the locator on the page and classifies the match set.
// A non-nil error is an infrastructure fault from the page engine, not
// a verification outcome.
func (v *Verifier) Verify(ctx context.Context, page core.PageContext, loc core.Locator) (Outcome, error) {
	elements, err := page.Find(ctx, loc)
	if err != nil {
		return Absent, core.ErrInfrastructure.WithCause(err)
	}

	// Hidden elements never count as matches: a selector that matches
	// one visible and three hidden elements is still unambiguous.
	visible := elements[:0:0]
	for _, e := range elements {
		if e.Visible {
			visible = append(visible, e)
		}
	}

	switch {
	case len(visible) == 0:
		return Absent, nil
	case len(visible) > 1:
		return Ambiguous, nil
	case !visible[0].Interactable():
		// Present but disabled: not usable, try the next strategy.
		return Absent, nil
	default:
		return Verified, nil
	}
}
