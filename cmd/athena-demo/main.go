// Package main is the entry point for the athena-demo CLI binary.
package main

import (
	"os"

	cli "athena-demo/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
