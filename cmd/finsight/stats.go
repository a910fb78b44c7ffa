package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/finsight-ai/finsight/pkg/config"
	"github.com/finsight-ai/finsight/pkg/store"
)

func newStatsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show model usage statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			st, err := store.New(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			summaries, err := st.UsageSummary(context.Background())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Println("No usage recorded yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tMODEL\tREQUESTS\tTOTAL TOKENS")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", s.Provider, s.Model, s.RequestCount, s.TotalTokens)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "finsight.yaml", "path to config file")
	return cmd
}
