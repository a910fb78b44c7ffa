package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finsight-ai/finsight/pkg/config"
)

func newResearchCmd() *cobra.Command {
	var (
		configPath string
		query      string
	)

	cmd := &cobra.Command{
		Use:   "research SYMBOL",
		Short: "Run a one-shot research query and print the report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			w, err := buildWiring(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = w.store.Close() }()

			symbol := args[0]
			if query == "" {
				query = fmt.Sprintf("Provide a research overview of %s.", strings.ToUpper(symbol))
			}

			report, err := w.svc.Research(context.Background(), symbol, query)
			if err != nil {
				return err
			}

			fmt.Printf("Report %s - %s via %s (%s)\n\n", report.ID, report.Symbol, report.Provider, report.Model)
			fmt.Println(report.Analysis)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "finsight.yaml", "path to config file")
	cmd.Flags().StringVarP(&query, "query", "q", "", "research question (default: general overview)")
	return cmd
}
