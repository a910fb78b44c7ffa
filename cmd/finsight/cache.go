package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/finsight-ai/finsight/pkg/models"
)

func newCacheCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Show data cache statistics from a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := http.Get("http://" + addr + "/v1/health")
			if err != nil {
				return fmt.Errorf("fetch health: %w", err)
			}
			defer resp.Body.Close()

			var snap models.HealthSnapshot
			if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
				return fmt.Errorf("decode health: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CACHE\tENTRIES\tHITS\tMISSES")
			for name, s := range snap.Caches {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", name, s.Entries, s.Hits, s.Misses)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:7860", "address of the running server")
	return cmd
}
