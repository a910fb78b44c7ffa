package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "finsight",
		Short:   "FinSight - reliability-first stock research agent",
		Version: version,
	}

	root.AddCommand(
		newServeCmd(),
		newResearchCmd(),
		newStatsCmd(),
		newBreakersCmd(),
		newCacheCmd(),
		newFeedbackCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
