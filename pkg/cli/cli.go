// Package cli provides the command-line interface for the locator
// resolver.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to resolver.yaml",
		EnvVars: []string{"RESOLVER_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "registry",
		Aliases: []string{"r"},
		Usage:   "Path to the semantic-id registry (elements.yaml)",
		EnvVars: []string{"RESOLVER_REGISTRY"},
	},
	&cli.StringFlag{
		Name:    "browser-url",
		Usage:   "WebSocket URL of a running Chrome (empty = launch one)",
		EnvVars: []string{"RESOLVER_BROWSER_URL"},
	},
	&cli.StringFlag{
		Name:    "log-file",
		Usage:   "Write resolver logs to this file",
		EnvVars: []string{"RESOLVER_LOG_FILE"},
	},
	&cli.BoolFlag{
		Name:  "verbose",
		Usage: "Log resolver internals to stderr",
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "locator-resolver",
		Usage:   "Resilient element-locator resolution for UI tests",
		Version: Version,
		Description: `locator-resolver maps stable semantic element ids to concrete,
currently-valid locators on a live page, falling back through
registered strategies when the UI drifts.

Examples:
  locator-resolver resolve --url https://shop.test/login login.submit-button
  locator-resolver resolve --url https://shop.test/cart cart.checkout cart.item-count
  locator-resolver registry validate elements.yaml`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			resolveCommand,
			registryCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
