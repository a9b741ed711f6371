package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mrlokans/birdlearner/internal/cli"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	cmd := cli.NewRootCommand(Version+" ("+Commit+")", cli.DefaultAppFactory)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
