package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "List the records of an entity",
		Long: `List prints every record of an entity with references resolved to
display names. --search keeps the records whose displayed values contain
the query, case-insensitively.

Example:
  biblio list emprunts
  biblio list adherents --search dupont
  biblio list livres --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity := args[0]
			ent, err := schemaEntity(entity)
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), func(s *session) error {
				if a.flags.jsonMode {
					recs, err := s.engine.List(cmd.Context(), entity, search)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), recs)
				}
				rows, err := s.engine.Rows(cmd.Context(), entity, search)
				if err != nil {
					return err
				}
				return printRows(cmd.OutOrStdout(), ent, rows)
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by a case-insensitive substring of any displayed value")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <entity> <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ent, err := schemaEntity(args[0])
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), func(s *session) error {
				rec, err := s.engine.Get(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), rec)
				}
				return printRecord(cmd.OutOrStdout(), ent, rec)
			})
		},
	}
}

func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <entity> field=value...",
		Short: "Create a record",
		Long: `Create validates the fields against the entity schema and stores a new
record. Reference fields take the identifier of the referenced record.

Example:
  biblio create adherents nom=Dupont prenom=Jeanne email=jeanne@example.org
  biblio create emprunts id_adherent=<id> id_livre=<id> date_emprunt=2024-03-01`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), func(s *session) error {
				rec, err := s.engine.Create(cmd.Context(), args[0], fields)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), rec)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s\n", args[0], rec.ID())
				return err
			})
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update <entity> <id> field=value...",
		Short: "Update fields of a record",
		Long: `Update merges the given fields into the record and validates the result.
An empty value (field=) clears an optional field.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			partial, err := parseAssignments(args[2:])
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), func(s *session) error {
				rec, err := s.engine.Update(cmd.Context(), args[0], args[1], partial)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), rec)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s\n", args[0], rec.ID())
				return err
			})
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entity> <id>",
		Short: "Delete a record",
		Long: `Delete removes a record. In local mode, deleting a member or a book also
deletes the loans that reference it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), func(s *session) error {
				if err := s.engine.Delete(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), map[string]any{"ok": true})
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", args[0], args[1])
				return err
			})
		},
	}
}
