package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-rod/rod"

	"github.com/devicelab-dev/locator-resolver/pkg/core"
)

// Page adapts a rod page to core.PageContext. It is owned by one test
// session; the resolver never retains it beyond a call.
type Page struct {
	page   *rod.Page
	key    string
	testID string
}

// NewPage wraps an existing rod page. testIDAttribute empty defaults
// to data-test.
func NewPage(page *rod.Page, pageKey, testIDAttribute string) *Page {
	if testIDAttribute == "" {
		testIDAttribute = "data-test"
	}
	return &Page{page: page, key: pageKey, testID: testIDAttribute}
}

// Key implements core.PageContext.
func (p *Page) Key() string { return p.key }

// Rod exposes the underlying rod page for callers that need to act on
// a resolved element.
func (p *Page) Rod() *rod.Page { return p.page }

// Find implements core.PageContext. Zero matches is a normal result;
// errors mean the engine itself failed.
func (p *Page) Find(ctx context.Context, loc core.Locator) ([]core.ElementInfo, error) {
	page := p.page.Context(ctx)

	var (
		elements rod.Elements
		err      error
	)
	switch loc.Kind {
	case core.KindTestID:
		elements, err = page.Elements(fmt.Sprintf("[%s=%q]", p.testID, loc.Value))
	case core.KindCSS, core.KindHeuristic:
		elements, err = page.Elements(loc.Value)
	case core.KindXPath:
		elements, err = page.ElementsX(loc.Value)
	case core.KindText:
		elements, err = page.ElementsX(fmt.Sprintf("//*[normalize-space(.)=%q]", loc.Value))
	default:
		return nil, fmt.Errorf("browser: unsupported locator kind %q", loc.Kind)
	}
	if err != nil {
		if isSelectorError(err) {
			// A malformed selector finds nothing; it does not mean the
			// engine is broken.
			return nil, nil
		}
		return nil, fmt.Errorf("browser: query %s: %w", loc.Describe(), err)
	}

	infos := make([]core.ElementInfo, 0, len(elements))
	for _, el := range elements {
		info, err := describeElement(el)
		if err != nil {
			return nil, fmt.Errorf("browser: inspect %s: %w", loc.Describe(), err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Screenshot captures the current viewport as PNG, for failure hooks.
func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	data, err := p.page.Context(ctx).Screenshot(false, nil)
	if err != nil {
		return nil, fmt.Errorf("browser: screenshot: %w", err)
	}
	return data, nil
}

// Close closes the underlying tab.
func (p *Page) Close() error {
	return p.page.Close()
}

// describeElement reads the element state the verifier cares about.
func describeElement(el *rod.Element) (core.ElementInfo, error) {
	visible, err := el.Visible()
	if err != nil {
		return core.ElementInfo{}, err
	}

	text, err := el.Text()
	if err != nil {
		return core.ElementInfo{}, err
	}

	disabled, err := el.Attribute("disabled")
	if err != nil {
		return core.ElementInfo{}, err
	}

	info := core.ElementInfo{
		Text:    strings.TrimSpace(text),
		Visible: visible,
		Enabled: disabled == nil,
	}

	if visible {
		shape, err := el.Shape()
		if err == nil && shape != nil {
			if box := shape.Box(); box != nil {
				info.Bounds = core.Bounds{
					X:      int(box.X),
					Y:      int(box.Y),
					Width:  int(box.Width),
					Height: int(box.Height),
				}
			}
		}
	}
	return info, nil
}

// isSelectorError detects rod/CDP complaints about the selector itself.
func isSelectorError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "not a valid selector") ||
		strings.Contains(msg, "invalid selector") ||
		strings.Contains(msg, "SyntaxError")
}
