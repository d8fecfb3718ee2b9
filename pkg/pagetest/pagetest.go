// Package pagetest provides a scripted fake PageContext for testing
// resolution without a real browser.
package pagetest

import (
	"context"
	"sync"
	"time"

	"github.com/devicelab-dev/locator-resolver/pkg/core"
)

// Config configures fake page behavior.
type Config struct {
	// PageKey is returned by Key(). Defaults to "fake-page".
	PageKey string
	// FindErr, when set, makes every Find fail (simulates a broken
	// engine).
	FindErr error
	// FindDelay adds artificial latency per Find.
	FindDelay time.Duration
}

// Page is a fake implementation of core.PageContext. Elements are
// scripted per locator; queries are counted for assertions.
type Page struct {
	// Configuration
	Config Config

	mu       sync.Mutex
	elements map[core.Locator][]core.ElementInfo
	finds    map[core.Locator]int
	total    int
}

// New creates a new fake page.
func New(cfg Config) *Page {
	if cfg.PageKey == "" {
		cfg.PageKey = "fake-page"
	}
	return &Page{
		Config:   cfg,
		elements: make(map[core.Locator][]core.ElementInfo),
		finds:    make(map[core.Locator]int),
	}
}

// Key implements core.PageContext.
func (p *Page) Key() string { return p.Config.PageKey }

// Find implements core.PageContext.
func (p *Page) Find(ctx context.Context, loc core.Locator) ([]core.ElementInfo, error) {
	if p.Config.FindDelay > 0 {
		select {
		case <-time.After(p.Config.FindDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Config.FindErr != nil {
		return nil, p.Config.FindErr
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.finds[keyOf(loc)]++
	p.total++

	els := p.elements[keyOf(loc)]
	out := make([]core.ElementInfo, len(els))
	copy(out, els)
	return out, nil
}

// SetElements scripts the match set for a locator. Confidence is
// ignored when matching, so a strategy's candidate finds the elements
// regardless of the score it attached.
func (p *Page) SetElements(loc core.Locator, els ...core.ElementInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elements[keyOf(loc)] = els
}

// RemoveElements clears the match set for a locator (simulates UI
// drift removing the element).
func (p *Page) RemoveElements(loc core.Locator) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.elements, keyOf(loc))
}

// FindCount returns how many times the locator was queried.
func (p *Page) FindCount(loc core.Locator) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finds[keyOf(loc)]
}

// TotalFinds returns the total number of Find calls.
func (p *Page) TotalFinds() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// keyOf normalizes a locator to its identity for matching: kind and
// value, never confidence.
func keyOf(loc core.Locator) core.Locator {
	return core.Locator{Kind: loc.Kind, Value: loc.Value}
}

// VisibleElement returns a visible, enabled element with the given text.
func VisibleElement(text string) core.ElementInfo {
	return core.ElementInfo{
		Text:    text,
		Visible: true,
		Enabled: true,
		Bounds:  core.Bounds{X: 10, Y: 10, Width: 100, Height: 30},
	}
}

// HiddenElement returns an invisible element with the given text.
func HiddenElement(text string) core.ElementInfo {
	return core.ElementInfo{Text: text, Visible: false, Enabled: true}
}

// DisabledElement returns a visible but non-interactable element.
func DisabledElement(text string) core.ElementInfo {
	return core.ElementInfo{
		Text:    text,
		Visible: true,
		Enabled: false,
		Bounds:  core.Bounds{X: 10, Y: 10, Width: 100, Height: 30},
	}
}
