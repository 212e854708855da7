package main

import (
	"os"

	"github.com/anime-shed/palette-inspector/internal/cli"
)

// Set by ldflags
var version = "dev"

func main() {
	cmd := cli.NewRootCommand(version)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
