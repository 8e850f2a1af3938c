// Package main provides the hybrid CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/hybrid/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
