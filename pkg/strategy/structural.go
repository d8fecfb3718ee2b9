package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/devicelab-dev/locator-resolver/pkg/core"
	"github.com/devicelab-dev/locator-resolver/pkg/registry"
)

// Structural derives CSS/XPath candidates from the registered hints:
// structural anchors and visible text. It probes each candidate against
// the page and offers the first one that matches anything; the chain
// still verifies uniqueness afterwards.
type Structural struct {
	reg *registry.Registry
}

// NewStructural creates the structural fallback strategy.
func NewStructural(reg *registry.Registry) *Structural {
	return &Structural{reg: reg}
}

// Name implements Strategy.
func (s *Structural) Name() string { return NameStructural }

// candidate is one derived selector with its confidence.
type candidate struct {
	loc core.Locator
}

// Attempt implements Strategy.
func (s *Structural) Attempt(ctx context.Context, page core.PageContext, id core.SemanticID) (core.Locator, bool, error) {
	entry, ok := s.reg.Lookup(id)
	if !ok {
		return core.Locator{}, false, nil
	}

	for _, cand := range buildCandidates(entry) {
		elements, err := page.Find(ctx, cand.loc)
		if err != nil {
			return core.Locator{}, false, err
		}
		for _, e := range elements {
			if e.Visible {
				return cand.loc, true, nil
			}
		}
	}
	return core.Locator{}, false, nil
}

// buildCandidates derives selectors from an entry's hints, most
// specific first. Confidence reflects how much of the registered
// intent the candidate encodes.
func buildCandidates(entry registry.Entry) []candidate {
	tag := entry.Tag
	if tag == "" {
		tag = "*"
	}

	var cands []candidate

	// Anchor-relative candidates: the anchor is assumed stable even
	// when the target's own markup drifts.
	for _, a := range entry.Anchors {
		if a.Selector == "" {
			continue
		}
		switch a.Relation {
		case registry.RelationNear:
			cands = append(cands, candidate{core.Locator{
				Kind:       core.KindCSS,
				Value:      fmt.Sprintf("%s ~ %s", a.Selector, tag),
				Confidence: 0.7,
			}})
		default: // within
			conf := 0.8
			if tag == "*" {
				conf = 0.6
			}
			cands = append(cands, candidate{core.Locator{
				Kind:       core.KindCSS,
				Value:      fmt.Sprintf("%s %s", a.Selector, tag),
				Confidence: conf,
			}})
		}
	}

	// Text candidates.
	if entry.Text != "" {
		cands = append(cands, candidate{core.Locator{
			Kind:       core.KindXPath,
			Value:      textXPath(tag, entry.Text),
			Confidence: 0.9,
		}})
	}

	// Anchors combined with text: most specific, probe them first.
	if entry.Text != "" && len(entry.Anchors) > 0 {
		scoped := make([]candidate, 0, len(entry.Anchors)+len(cands))
		for _, a := range entry.Anchors {
			if a.Selector == "" || a.Relation == registry.RelationNear {
				continue
			}
			scoped = append(scoped, candidate{core.Locator{
				Kind:       core.KindXPath,
				Value:      anchoredTextXPath(a.Selector, tag, entry.Text),
				Confidence: 0.9,
			}})
		}
		cands = append(scoped, cands...)
	}

	return cands
}

// textXPath builds an XPath matching elements by exact visible text.
func textXPath(tag, text string) string {
	return fmt.Sprintf("//%s[normalize-space(.)=%s]", tag, xpathLiteral(text))
}

// anchoredTextXPath scopes a text match under a CSS-id or class anchor.
// Only simple #id and .class anchors translate; anything else falls
// back to an unanchored text match.
func anchoredTextXPath(anchor, tag, text string) string {
	switch {
	case strings.HasPrefix(anchor, "#"):
		return fmt.Sprintf("//*[@id=%s]//%s[normalize-space(.)=%s]",
			xpathLiteral(anchor[1:]), tag, xpathLiteral(text))
	case strings.HasPrefix(anchor, ".") && !strings.ContainsAny(anchor[1:], " .#["):
		return fmt.Sprintf("//*[contains(concat(' ',normalize-space(@class),' '),%s)]//%s[normalize-space(.)=%s]",
			xpathLiteral(" "+anchor[1:]+" "), tag, xpathLiteral(text))
	default:
		return textXPath(tag, text)
	}
}

// xpathLiteral quotes a string for use in an XPath expression,
// handling embedded quotes via concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		if p != "" {
			quoted = append(quoted, `"`+p+`"`)
		}
	}
	return "concat(" + strings.Join(quoted, ",") + ")"
}
