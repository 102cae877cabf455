package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rcsup/internal/logging"
	"rcsup/internal/mounts"
)

// newMountsCommand builds the mount status table: every declared mount and
// whether the daemon currently serves it.
func newMountsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "mounts",
		Short: "Show declared mounts and their current state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			specs, err := mounts.LoadSpecs(cfg.Paths.MountList)
			if err != nil {
				return err
			}
			if len(specs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No mounts declared.")
				return nil
			}

			rc := ctx.rcClient(cfg)
			checker := mounts.NewChecker(rc, logging.NewNop())
			missing, err := checker.Missing(cmd.Context(), specs)
			if err != nil {
				return err
			}
			missingSet := make(map[string]struct{}, len(missing))
			for _, spec := range missing {
				missingSet[spec.MountPoint] = struct{}{}
			}

			rows := make([][]string, 0, len(specs))
			for _, spec := range specs {
				state := "mounted"
				if _, ok := missingSet[spec.MountPoint]; ok {
					state = "missing"
				}
				rows = append(rows, []string{spec.Fs, spec.MountPoint, state})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Remote", "Mount Point", "State"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
