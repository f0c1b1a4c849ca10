package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/biblio/internal/schema"
)

// registry is the fixed entity catalogue.
var registry = schema.Standard()

// schemaEntity looks up an entity by name.
func schemaEntity(name string) (*schema.Entity, error) {
	return registry.Entity(name)
}

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [entity]",
		Short: "Describe the entities and their fields",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				names := registry.Names()
				if a.flags.jsonMode {
					return printJSON(out, names)
				}
				tw := newTable(out)
				fmt.Fprintln(tw, "ENTITY\tTITLE\tCOLUMNS")
				for _, name := range names {
					ent, _ := registry.Entity(name)
					fmt.Fprintf(tw, "%s\t%s\t%s\n", ent.Name, ent.Title, strings.Join(ent.Columns, ", "))
				}
				return tw.Flush()
			}

			ent, err := schemaEntity(args[0])
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(out, ent.Fields)
			}
			tw := newTable(out)
			fmt.Fprintln(tw, "FIELD\tLABEL\tKIND\tREQUIRED\tDETAIL")
			for _, f := range ent.Fields {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", f.Name, f.Label, f.Kind, f.Required, fieldDetail(f))
			}
			return tw.Flush()
		},
	}
}

// fieldDetail describes a field's options or reference target.
func fieldDetail(f schema.Field) string {
	if f.IsReference() {
		return "-> " + f.Ref
	}
	if len(f.Options) == 0 {
		return ""
	}
	values := make([]string, len(f.Options))
	for i, o := range f.Options {
		values[i] = o.Value
	}
	return strings.Join(values, "|")
}
