package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/locator-resolver/pkg/registry"
)

var registryCommand = &cli.Command{
	Name:  "registry",
	Usage: "Inspect and validate semantic-id registries",
	Subcommands: []*cli.Command{
		{
			Name:      "validate",
			Usage:     "Check a registry file for unusable entries",
			ArgsUsage: "<elements.yaml>",
			Action:    runRegistryValidate,
		},
		{
			Name:      "list",
			Usage:     "List registered semantic ids",
			ArgsUsage: "<elements.yaml>",
			Action:    runRegistryList,
		},
	},
}

func runRegistryValidate(c *cli.Context) error {
	reg, err := loadRegistryArg(c)
	if err != nil {
		return err
	}

	errs := reg.Validate()
	if len(errs) == 0 {
		fmt.Printf("OK: %d semantic ids\n", reg.Len())
		return nil
	}

	for _, e := range errs {
		fmt.Printf("  %v\n", e)
	}
	return fmt.Errorf("%d problems in registry", len(errs))
}

func runRegistryList(c *cli.Context) error {
	reg, err := loadRegistryArg(c)
	if err != nil {
		return err
	}

	for _, id := range reg.IDs() {
		entry, _ := reg.Lookup(id)
		switch {
		case entry.TestID != "":
			fmt.Printf("%s\ttestid=%s\n", id, entry.TestID)
		case entry.CSS != "":
			fmt.Printf("%s\tcss=%s\n", id, entry.CSS)
		case entry.XPath != "":
			fmt.Printf("%s\txpath=%s\n", id, entry.XPath)
		default:
			fmt.Printf("%s\t(hints only)\n", id)
		}
	}
	return nil
}

func loadRegistryArg(c *cli.Context) (*registry.Registry, error) {
	path := c.Args().First()
	if path == "" {
		path = c.String("registry")
	}
	if path == "" {
		return registry.LoadFromDir(".")
	}
	return registry.Load(path)
}
