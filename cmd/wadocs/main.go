// Package main is the wadocs command.
package main

import (
	"os"

	"github.com/leapstack-labs/wadocs/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
