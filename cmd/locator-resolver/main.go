package main

import "github.com/devicelab-dev/locator-resolver/pkg/cli"

func main() {
	cli.Execute()
}
