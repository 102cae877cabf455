package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"rcsup/internal/history"
)

// newJobsCommand builds the submission history table from the audit store.
func newJobsCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Show recently submitted sync jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			store, err := history.Open(cfg.Paths.HistoryDB)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			rows, err := store.Recent(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No job submissions recorded.")
				return nil
			}

			tableRows := make([][]string, 0, len(rows))
			for _, row := range rows {
				tableRows = append(tableRows, []string{
					strconv.FormatInt(row.ID, 10),
					row.SubmittedAt.Local().Format(time.RFC3339),
					row.Command,
					row.SrcFs,
					row.DstFs,
					row.JobID,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Submitted", "Command", "Source", "Destination", "Job"},
				tableRows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 20, "Maximum number of submissions to show")
	return cmd
}
