// Package main is the entry point for pgedge-dwload.
package main

import (
	"os"

	"github.com/pgEdge/pgedge-dwload/internal/cli"
	"github.com/pgEdge/pgedge-dwload/internal/logging"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.Error().Err(err).Msg("pgedge-dwload failed")
		os.Exit(1)
	}
}
