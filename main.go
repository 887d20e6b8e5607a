package main

import (
	"context"
	"fmt"
	"os"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/cmd"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/conf"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	settings := &conf.Settings{}

	rootCmd := cmd.RootCommand(settings, version)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
