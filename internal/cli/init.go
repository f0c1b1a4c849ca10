package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/biblio/internal/config"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize biblio configuration and local storage",
		Long: `Create the configuration and data directories, write a default
config.yaml when none exists, then initialize the local snapshot.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wrote, err := config.WriteIfMissing(a.configDir, a.settings)
			if err != nil {
				return err
			}
			if wrote {
				a.log.Infow("config written", "path", config.Path(a.configDir))
			}

			if err := a.withLocalSession(cmd.Context(), func(*session) error { return nil }); err != nil {
				return fmt.Errorf("initialize storage: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config: %s\n", config.Path(a.configDir))
			fmt.Fprintf(out, "Data:   %s (%s)\n", a.settings.DataDir, a.settings.Store)
			_, err = fmt.Fprintln(out, "biblio initialized successfully")
			return err
		},
	}
}
