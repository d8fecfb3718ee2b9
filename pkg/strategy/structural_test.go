package strategy

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/devicelab-dev/locator-resolver/pkg/core"
	"github.com/devicelab-dev/locator-resolver/pkg/pagetest"
	"github.com/devicelab-dev/locator-resolver/pkg/registry"
)

func TestStructural_AnchorWithinCandidate(t *testing.T) {
	reg := registry.New(map[core.SemanticID]registry.Entry{
		"inventory.add-button": {
			Tag:     "button",
			Anchors: []registry.Anchor{{Selector: "#inventory_container", Relation: "within"}},
		},
	})
	page := pagetest.New(pagetest.Config{})
	page.SetElements(
		core.Locator{Kind: core.KindCSS, Value: "#inventory_container button"},
		pagetest.VisibleElement("Add to cart"),
	)

	loc, ok, err := NewStructural(reg).Attempt(context.Background(), page, "inventory.add-button")
	if err != nil {
		t.Fatalf("Attempt() error: %v", err)
	}
	if !ok {
		t.Fatal("Attempt() found nothing")
	}
	if loc.Value != "#inventory_container button" {
		t.Errorf("Attempt() = %q, want anchored candidate", loc.Value)
	}
	if loc.Confidence < 0.6 || loc.Confidence > 0.9 {
		t.Errorf("Confidence = %v, want within [0.6, 0.9]", loc.Confidence)
	}
}

func TestStructural_TextCandidate(t *testing.T) {
	reg := registry.New(map[core.SemanticID]registry.Entry{
		"login.submit": {Text: "Login", Tag: "button"},
	})
	page := pagetest.New(pagetest.Config{})
	page.SetElements(
		core.Locator{Kind: core.KindXPath, Value: `//button[normalize-space(.)="Login"]`},
		pagetest.VisibleElement("Login"),
	)

	loc, ok, err := NewStructural(reg).Attempt(context.Background(), page, "login.submit")
	if err != nil {
		t.Fatalf("Attempt() error: %v", err)
	}
	if !ok {
		t.Fatal("Attempt() found nothing")
	}
	if loc.Kind != core.KindXPath {
		t.Errorf("Kind = %v, want xpath", loc.Kind)
	}
}

func TestStructural_SkipsCandidatesWithOnlyHiddenMatches(t *testing.T) {
	reg := registry.New(map[core.SemanticID]registry.Entry{
		"menu.item": {
			Text:    "All Items",
			Tag:     "a",
			Anchors: []registry.Anchor{{Selector: "#menu", Relation: "within"}},
		},
	})
	page := pagetest.New(pagetest.Config{})
	// The anchored candidates match only a hidden element; the plain
	// text candidate matches a visible one.
	page.SetElements(
		core.Locator{Kind: core.KindCSS, Value: "#menu a"},
		pagetest.HiddenElement("All Items"),
	)
	page.SetElements(
		core.Locator{Kind: core.KindXPath, Value: `//a[normalize-space(.)="All Items"]`},
		pagetest.VisibleElement("All Items"),
	)

	loc, ok, err := NewStructural(reg).Attempt(context.Background(), page, "menu.item")
	if err != nil {
		t.Fatalf("Attempt() error: %v", err)
	}
	if !ok {
		t.Fatal("Attempt() found nothing")
	}
	if loc.Kind != core.KindXPath {
		t.Errorf("picked %v, want the visible text candidate", loc)
	}
}

func TestStructural_NoHintsNotFound(t *testing.T) {
	reg := registry.New(map[core.SemanticID]registry.Entry{
		"bare.entry": {TestID: "only-explicit"},
	})
	page := pagetest.New(pagetest.Config{})

	_, ok, err := NewStructural(reg).Attempt(context.Background(), page, "bare.entry")
	if err != nil {
		t.Fatalf("Attempt() error: %v", err)
	}
	if ok {
		t.Error("Attempt() = ok without structural hints")
	}
}

func TestStructural_PropagatesEngineFault(t *testing.T) {
	reg := registry.New(map[core.SemanticID]registry.Entry{
		"x.y": {Text: "X"},
	})
	page := pagetest.New(pagetest.Config{FindErr: errors.New("tab gone")})

	_, _, err := NewStructural(reg).Attempt(context.Background(), page, "x.y")
	if err == nil {
		t.Fatal("Attempt() swallowed an engine fault")
	}
}

func TestBuildCandidates_AnchoredTextFirst(t *testing.T) {
	entry := registry.Entry{
		Text:    "Checkout",
		Tag:     "button",
		Anchors: []registry.Anchor{{Selector: "#cart_contents", Relation: "within"}},
	}

	cands := buildCandidates(entry)
	if len(cands) < 3 {
		t.Fatalf("buildCandidates() = %d candidates, want at least 3", len(cands))
	}
	first := cands[0].loc
	if first.Kind != core.KindXPath || !strings.Contains(first.Value, "Checkout") || !strings.Contains(first.Value, "cart_contents") {
		t.Errorf("first candidate = %v, want anchored text xpath", first)
	}
}

func TestXPathLiteral(t *testing.T) {
	cases := map[string]string{
		"plain":      `"plain"`,
		`has "quote`: `concat("has ",'"',"quote")`,
		`it's`:       `"it's"`,
	}
	for in, want := range cases {
		if got := xpathLiteral(in); got != want {
			t.Errorf("xpathLiteral(%q) = %s, want %s", in, got, want)
		}
	}
}
