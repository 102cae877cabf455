package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rcsup/internal/logging"
	"rcsup/internal/mounts"
)

// newHealthcheckCommand builds the container healthcheck probe: the daemon
// must answer the RC readiness probe and every declared mount must be
// active. Exit status 0 means healthy, anything else unhealthy.
func newHealthcheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe daemon readiness and mount health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			rc := ctx.rcClient(cfg)
			if !rc.ProbeReady(cmd.Context()) {
				return fmt.Errorf("daemon not ready at %s", cfg.RCBaseURL())
			}

			specs, err := mounts.LoadSpecs(cfg.Paths.MountList)
			if err != nil {
				return err
			}
			checker := mounts.NewChecker(rc, logging.NewNop())
			missing, err := checker.Missing(cmd.Context(), specs)
			if err != nil {
				return err
			}
			if len(missing) > 0 {
				for _, spec := range missing {
					fmt.Fprintf(cmd.OutOrStdout(), "missing mount: %s at %s\n", spec.Fs, spec.MountPoint)
				}
				return fmt.Errorf("%d of %d declared mounts missing", len(missing), len(specs))
			}

			fmt.Fprintln(cmd.OutOrStdout(), "healthy")
			return nil
		},
	}
}
