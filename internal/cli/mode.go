package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/biblio/internal/mode"
	"github.com/mesh-intelligence/biblio/pkg/types"
)

func newModeCmd(a *app) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "mode",
		Short: "Show which backend serves operations",
		Long: `Mode probes the remote API once and prints "remote" when it answers,
"local" otherwise. --watch keeps probing every probe_interval and prints
each change until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !watch {
				return a.withSession(cmd.Context(), func(s *session) error {
					return printMode(a, cmd, s.engine.Mode())
				})
			}

			if !a.settings.Remote {
				return usageError("--watch needs the remote API enabled")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			changed := mode.OnChange(func(from, to types.Mode) {
				fmt.Fprintf(out, "%s -> %s\n", from, to)
			})
			s, err := a.open(ctx, true, changed)
			if err != nil {
				return err
			}
			defer s.close()

			if err := printMode(a, cmd, s.engine.Mode()); err != nil {
				return err
			}
			if err := s.selector.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep probing and print mode changes")
	return cmd
}

func printMode(a *app, cmd *cobra.Command, m types.Mode) error {
	if a.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), map[string]any{"mode": m})
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), m)
	return err
}
