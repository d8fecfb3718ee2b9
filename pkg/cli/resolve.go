package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/locator-resolver/pkg/browser"
	"github.com/devicelab-dev/locator-resolver/pkg/config"
	"github.com/devicelab-dev/locator-resolver/pkg/core"
	"github.com/devicelab-dev/locator-resolver/pkg/logger"
	"github.com/devicelab-dev/locator-resolver/pkg/registry"
	"github.com/devicelab-dev/locator-resolver/pkg/report"
	"github.com/devicelab-dev/locator-resolver/pkg/resolver"
	"github.com/devicelab-dev/locator-resolver/pkg/strategy"
)

var resolveCommand = &cli.Command{
	Name:      "resolve",
	Usage:     "Resolve semantic ids against a live page",
	ArgsUsage: "<semantic-id>...",
	Description: `Open the page and run the resolution pipeline for each semantic id,
printing the verified locator (or the attempt log on failure).

Examples:
  locator-resolver resolve --url https://shop.test/login login.submit-button
  locator-resolver -r elements.yaml resolve --url https://shop.test/cart cart.checkout
  locator-resolver resolve --url https://shop.test/login --output ./reports login.username`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "url",
			Usage:    "Page URL to resolve against",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "output",
			Usage: "Write a resolution report to this directory",
		},
	},
	Action: runResolve,
}

func runResolve(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("no semantic ids given")
	}

	if path := c.String("log-file"); path != "" {
		if err := logger.Init(path); err != nil {
			return err
		}
		defer logger.Close()
	}

	cfg, reg, err := loadConfigAndRegistry(c)
	if err != nil {
		return err
	}

	res, err := buildResolver(c, cfg, reg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	b, err := browser.Connect(ctx, browser.Config{
		RemoteURL:       c.String("browser-url"),
		TestIDAttribute: cfg.TestIDAttribute,
	})
	if err != nil {
		return err
	}
	defer b.Close()

	page, err := b.Open(ctx, c.String("url"))
	if err != nil {
		return err
	}
	defer page.Close()

	// Without a matcher or a user script, an unregistered id cannot
	// resolve; those strategies can still handle ids the registry has
	// never seen.
	heuristicsActive := (cfg.SemanticEnabled() && cfg.SemanticMatcherURL != "") || cfg.ScriptFile != ""

	recorder := report.NewRecorder()
	failed := 0
	for _, arg := range c.Args().Slice() {
		id := core.SemanticID(arg)

		if _, known := reg.Lookup(id); !known && !heuristicsActive {
			failed++
			rerr := core.ErrUnknownSemanticID.WithDetails(map[string]interface{}{"semanticId": arg})
			fmt.Printf("%s: FAILED (%v)\n", id, rerr)
			recorder.Record(report.Resolution{
				SemanticID: arg,
				PageKey:    page.Key(),
				Outcome:    report.Outcome(rerr),
				Timestamp:  time.Now(),
			})
			continue
		}

		start := time.Now()
		loc, rerr := res.Resolve(ctx, page, id)
		attempts := res.LastAttempts(id)

		rec := report.Resolution{
			SemanticID: string(id),
			PageKey:    page.Key(),
			Outcome:    report.Outcome(rerr),
			Attempts:   attempts,
			DurationMs: time.Since(start).Milliseconds(),
			Timestamp:  time.Now(),
		}
		if rerr == nil {
			rec.Locator = &loc
		}
		recorder.Record(rec)

		if rerr != nil {
			failed++
			fmt.Printf("%s: FAILED (%v)\n", id, rerr)
			for _, a := range attempts {
				fmt.Printf("  %-12s %-10s %v\n", a.Strategy, a.OutcomeStr, a.Duration.Round(time.Millisecond))
			}
			continue
		}
		out, _ := json.Marshal(loc)
		fmt.Printf("%s: %s\n", id, out)
	}

	if dir := c.String("output"); dir != "" {
		if err := recorder.Write(dir); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d ids failed to resolve", failed, c.NArg())
	}
	return nil
}

// loadConfigAndRegistry applies flag > config-file > default precedence.
func loadConfigAndRegistry(c *cli.Context) (*config.Config, *registry.Registry, error) {
	var cfg *config.Config
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	regPath := c.String("registry")
	if regPath == "" {
		regPath = cfg.Registry
	}

	var reg *registry.Registry
	if regPath != "" {
		reg, err = registry.Load(regPath)
	} else {
		reg, err = registry.LoadFromDir(".")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load registry: %w", err)
	}
	return cfg, reg, nil
}

// buildResolver assembles the strategy set the config asks for.
func buildResolver(c *cli.Context, cfg *config.Config, reg *registry.Registry) (*resolver.Resolver, error) {
	rc := cfg.ResolverConfig()

	strategies := []strategy.Strategy{
		strategy.NewStatic(reg),
		strategy.NewStructural(reg),
	}

	if rc.SemanticEnabled && cfg.SemanticMatcherURL != "" {
		client := strategy.NewMatcherClient(cfg.SemanticMatcherURL, rc.PerStrategyTimeout)
		strategies = append(strategies, strategy.NewSemantic(reg, client))
	} else {
		rc.SemanticEnabled = false
	}

	if cfg.ScriptFile != "" {
		script, err := strategy.LoadScript(reg, cfg.ScriptFile, logger.Std("script "))
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, script)
		if len(cfg.StrategyOrder) == 0 {
			// Scripts are the last resort unless the order says otherwise.
			rc.StrategyOrder = append(rc.StrategyOrder, strategy.NameScript)
		}
	}

	var resolveLog *log.Logger
	if c.Bool("verbose") {
		resolveLog = log.New(os.Stderr, "resolver ", log.Ltime)
	} else {
		resolveLog = log.New(io.Discard, "", 0)
	}

	return resolver.New(rc, nil, resolveLog, strategies...)
}
