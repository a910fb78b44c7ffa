package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/finsight-ai/finsight/pkg/config"
	"github.com/finsight-ai/finsight/pkg/models"
	"github.com/finsight-ai/finsight/pkg/store"
)

func newFeedbackCmd() *cobra.Command {
	var (
		configPath string
		reportID   string
		rating     int
		helpful    []string
		missing    []string
		comments   string
	)

	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Submit feedback for a report, or summarize all feedback",
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

			ctx := context.Background()

			// Submit mode when a report ID is given; summary otherwise.
			if reportID != "" {
				entry := models.FeedbackEntry{
					ReportID:       reportID,
					Rating:         rating,
					HelpfulAspects: helpful,
					MissingAspects: missing,
					Comments:       comments,
				}
				if err := st.SubmitFeedback(ctx, entry); err != nil {
					return err
				}
				fmt.Printf("Feedback recorded: %d stars for report %s\n", rating, reportID)
				return nil
			}

			summary, err := st.FeedbackSummary(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Total feedback: %d\n", summary.TotalFeedback)
			fmt.Printf("Average rating: %.2f\n", summary.AverageRating)

			if len(summary.HelpfulAspects) > 0 || len(summary.MissingAspects) > 0 {
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "\nKIND\tASPECT\tCOUNT")
				for a, n := range summary.HelpfulAspects {
					fmt.Fprintf(w, "helpful\t%s\t%d\n", a, n)
				}
				for a, n := range summary.MissingAspects {
					fmt.Fprintf(w, "missing\t%s\t%d\n", a, n)
				}
				return w.Flush()
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "finsight.yaml", "path to config file")
	cmd.Flags().StringVar(&reportID, "report", "", "report ID to rate")
	cmd.Flags().IntVar(&rating, "rating", 0, "star rating, 1-5")
	cmd.Flags().StringSliceVar(&helpful, "helpful", nil, "helpful aspects")
	cmd.Flags().StringSliceVar(&missing, "missing", nil, "missing aspects")
	cmd.Flags().StringVar(&comments, "comments", "", "free-form comments")
	return cmd
}
