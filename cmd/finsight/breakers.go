package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/finsight-ai/finsight/pkg/models"
)

// Breaker state is in-memory in the running server, so this command talks to
// its HTTP API rather than the database.
func newBreakersCmd() *cobra.Command {
	var (
		addr  string
		reset string
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "breakers",
		Short: "Show or reset circuit breakers on a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			base := "http://" + addr

			if all || reset != "" {
				body, _ := json.Marshal(map[string]string{"name": reset})
				resp, err := http.Post(base+"/v1/breakers/reset", "application/json", bytes.NewReader(body))
				if err != nil {
					return fmt.Errorf("reset breakers: %w", err)
				}
				resp.Body.Close()
			}

			resp, err := http.Get(base + "/v1/breakers")
			if err != nil {
				return fmt.Errorf("fetch breakers: %w", err)
			}
			defer resp.Body.Close()

			var statuses []models.BreakerStatus
			if err := json.NewDecoder(resp.Body).Decode(&statuses); err != nil {
				return fmt.Errorf("decode breakers: %w", err)
			}
			if len(statuses) == 0 {
				fmt.Println("No breakers created yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSTATE\tFAILURES\tCALLS\tSUCCESS RATE")
			for _, s := range statuses {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.1f%%\n", s.Name, s.State, s.TotalFailures, s.TotalCalls, s.SuccessRate*100)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:7860", "address of the running server")
	cmd.Flags().StringVar(&reset, "reset", "", "reset the named breaker before listing")
	cmd.Flags().BoolVar(&all, "reset-all", false, "reset every breaker before listing")
	return cmd
}
