// Package browser provides the go-rod backed PageContext: it connects
// to a Chrome instance and answers locator queries against live pages.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Config configures the browser connection.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local headless Chrome via launcher.
	RemoteURL string

	// NavigateTimeout bounds page navigation. Default: 30s.
	NavigateTimeout time.Duration

	// TestIDAttribute is the attribute queried for testid locators.
	// Default: data-test.
	TestIDAttribute string
}

func (c *Config) defaults() {
	if c.NavigateTimeout <= 0 {
		c.NavigateTimeout = 30 * time.Second
	}
	if c.TestIDAttribute == "" {
		c.TestIDAttribute = "data-test"
	}
}

// Browser wraps a rod browser connection.
type Browser struct {
	cfg Config
	rod *rod.Browser
}

// Connect launches or attaches to Chrome.
func Connect(ctx context.Context, cfg Config) (*Browser, error) {
	cfg.defaults()

	var wsURL string
	if cfg.RemoteURL != "" {
		wsURL = cfg.RemoteURL
	} else {
		u, err := launcher.New().Headless(true).Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch chrome: %w", err)
		}
		wsURL = u
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	return &Browser{cfg: cfg, rod: b}, nil
}

// Open navigates a fresh tab to the URL and returns it as a page
// context. The page key is derived from the URL template identity.
func (b *Browser) Open(ctx context.Context, pageURL string) (*Page, error) {
	page, err := b.rod.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, b.cfg.NavigateTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: wait load %s: %w", pageURL, err)
	}

	return &Page{
		page:   page,
		key:    KeyFromURL(pageURL),
		testID: b.cfg.TestIDAttribute,
	}, nil
}

// Close shuts down the browser connection.
func (b *Browser) Close() error {
	return b.rod.Close()
}
