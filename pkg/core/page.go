package core

import "context"

// PageContext is a handle to a live page or frame snapshot, owned by the
// caller (a page object driving one browser session). A PageContext is
// never shared across concurrent callers and the resolver never retains
// one beyond a single call.
//
// Implementations: pkg/browser (go-rod), pkg/pagetest (fake).
type PageContext interface {
	// Key returns a stable identity for the page template (not the page
	// instance), so cached locators survive repeated navigations to
	// "the same" page.
	Key() string

	// Find returns every element currently matched by the locator.
	// Zero or many matches are data, not errors; a non-nil error means
	// the underlying engine is unusable (infrastructure fault).
	Find(ctx context.Context, loc Locator) ([]ElementInfo, error)
}

// ElementInfo describes one matched element as seen by the engine.
type ElementInfo struct {
	Text       string            `json:"text,omitempty"`
	Visible    bool              `json:"visible"`
	Enabled    bool              `json:"enabled"`
	Bounds     Bounds            `json:"bounds"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Interactable returns true if the element can receive input.
func (e ElementInfo) Interactable() bool {
	return e.Visible && e.Enabled
}

// Bounds represents element position and size.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the center point of the bounds.
func (b Bounds) Center() (int, int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Contains checks if a point is within the bounds.
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}
