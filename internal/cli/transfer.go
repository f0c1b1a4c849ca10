package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the local state as a JSON document",
		Long: `Export writes every local collection as one indented JSON object keyed
by collection name. Without --out the document goes to standard output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLocalSession(cmd.Context(), func(s *session) error {
				if out == "" {
					return s.engine.Export(cmd.Context(), cmd.OutOrStdout())
				}
				var buf bytes.Buffer
				if err := s.engine.Export(cmd.Context(), &buf); err != nil {
					return err
				}
				if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				_, err := fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", out)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: standard output)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the local state with a JSON document",
		Long: `Import replaces every local collection with the content of an exported
document. Missing collections become empty; entries that are not objects
are dropped. A document that is not a JSON object leaves the state unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return usageError("open import file: %v", err)
			}
			defer f.Close()

			return a.withLocalSession(cmd.Context(), func(s *session) error {
				n, err := s.engine.Import(cmd.Context(), f)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), map[string]any{"ok": true, "records": n})
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d record(s)\n", n)
				return err
			})
		},
	}
}
