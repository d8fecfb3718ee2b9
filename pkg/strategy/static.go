package strategy

import (
	"context"

	"github.com/devicelab-dev/locator-resolver/pkg/core"
	"github.com/devicelab-dev/locator-resolver/pkg/registry"
)

// Static resolves a semantic id to its pre-registered explicit selector.
// O(1), confidence 1.0, no page access at all.
type Static struct {
	reg *registry.Registry
}

// NewStatic creates the static-attribute strategy.
func NewStatic(reg *registry.Registry) *Static {
	return &Static{reg: reg}
}

// Name implements Strategy.
func (s *Static) Name() string { return NameStatic }

// Attempt implements Strategy. Test-id wins over CSS over XPath when an
// entry registers more than one explicit selector.
func (s *Static) Attempt(_ context.Context, _ core.PageContext, id core.SemanticID) (core.Locator, bool, error) {
	entry, ok := s.reg.Lookup(id)
	if !ok {
		return core.Locator{}, false, nil
	}

	switch {
	case entry.TestID != "":
		return core.Locator{Kind: core.KindTestID, Value: entry.TestID, Confidence: 1.0}, true, nil
	case entry.CSS != "":
		return core.Locator{Kind: core.KindCSS, Value: entry.CSS, Confidence: 1.0}, true, nil
	case entry.XPath != "":
		return core.Locator{Kind: core.KindXPath, Value: entry.XPath, Confidence: 1.0}, true, nil
	default:
		return core.Locator{}, false, nil
	}
}
