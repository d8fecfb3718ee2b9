// Package core defines the shared types of the locator resolver:
// locators, semantic ids, page contexts, attempt records, and the
// error taxonomy. It has no dependencies on other resolver packages.
package core

import (
	"fmt"
	"strings"
)

// Kind identifies how a Locator's value should be interpreted.
type Kind string

// Kind values.
const (
	KindTestID    Kind = "testid"    // value is a test-id attribute value
	KindCSS       Kind = "css"       // value is a CSS selector
	KindXPath     Kind = "xpath"     // value is an XPath expression
	KindText      Kind = "text"      // value is visible text to match
	KindHeuristic Kind = "heuristic" // value is a CSS selector produced by a non-deterministic strategy
)

// Valid returns true for a recognized kind.
func (k Kind) Valid() bool {
	switch k {
	case KindTestID, KindCSS, KindXPath, KindText, KindHeuristic:
		return true
	default:
		return false
	}
}

// Locator is a concrete, engine-specific description of how to find an
// element on the current page. Treat it as immutable once produced.
type Locator struct {
	Kind  Kind   `json:"kind" yaml:"kind"`
	Value string `json:"value" yaml:"value"`

	// Confidence is diagnostic metadata: 1.0 for deterministic strategies,
	// lower for heuristic ones. It never gates caching.
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// IsZero returns true if the locator carries no selector.
func (l Locator) IsZero() bool {
	return l.Kind == "" && l.Value == ""
}

// Describe returns a short human-readable form like css="#login".
func (l Locator) Describe() string {
	return fmt.Sprintf("%s=%q", l.Kind, l.Value)
}

// SemanticID is a stable, markup-independent name for a UI element's
// role, e.g. "checkout.submit-button". Page objects define these; the
// resolver only looks them up.
type SemanticID string

// Validate checks that the id is usable as a lookup key.
func (id SemanticID) Validate() error {
	s := string(id)
	if s == "" {
		return ErrInvalidSemanticID.WithMessage("semantic id is empty")
	}
	if strings.ContainsAny(s, " \t\n") {
		return ErrInvalidSemanticID.WithDetails(map[string]interface{}{"id": s})
	}
	return nil
}

func (id SemanticID) String() string { return string(id) }
