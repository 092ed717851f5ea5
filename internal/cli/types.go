package cli

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/woozymasta/umat"
	"github.com/woozymasta/umat/compiler"
	"github.com/woozymasta/umat/internal/config"
)

// typeInfo is one row of the types listing.
type typeInfo struct {
	Name     string `json:"name" yaml:"name"`
	Fields   int    `json:"fields" yaml:"fields"`
	Compiled bool   `json:"compiled" yaml:"compiled"`
}

// fieldInfo is one row of a type's field listing.
type fieldInfo struct {
	Name    string   `json:"name" yaml:"name"`
	Type    string   `json:"type" yaml:"type"`
	Default string   `json:"default" yaml:"default"`
	Members []string `json:"members,omitempty" yaml:"members,omitempty"`
}

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types [type]",
		Short: "List material record types and their fields",
		Long: `Without arguments, list every registered material record type.
With a type name, list its properties with their types and defaults.`,
		Example: `  umat types
  umat types Combiner`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return umat.MaterialTypes(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd)
			w := cmd.OutOrStdout()

			if len(args) == 0 {
				var rows []typeInfo
				for _, name := range umat.MaterialTypes() {
					rows = append(rows, typeInfo{
						Name:     name,
						Fields:   len(umat.LookupType(name).Fields),
						Compiled: compiler.Supported(name),
					})
				}
				if e.cfg.Output == config.OutputJSON {
					return writeDoc(w, e.cfg.Output, rows)
				}

				t := table.NewWriter()
				t.SetOutputMirror(w)
				t.SetStyle(table.StyleLight)
				t.AppendHeader(table.Row{"Type", "Fields", "Compiled"})
				for _, r := range rows {
					t.AppendRow(table.Row{r.Name, r.Fields, r.Compiled})
				}
				t.Render()
				return nil
			}

			s := umat.LookupType(args[0])
			if s == nil {
				return fmt.Errorf("%w: %q", umat.ErrUnknownMaterialType, args[0])
			}
			rows := make([]fieldInfo, 0, len(s.Fields))
			for _, f := range s.Fields {
				rows = append(rows, fieldInfo{
					Name:    f.Name,
					Type:    f.TypeString(),
					Default: formatDefault(f.Default),
					Members: f.Members,
				})
			}
			if e.cfg.Output == config.OutputJSON {
				return writeDoc(w, e.cfg.Output, rows)
			}

			t := table.NewWriter()
			t.SetOutputMirror(w)
			t.SetStyle(table.StyleLight)
			t.SetTitle(s.TypeName)
			t.AppendHeader(table.Row{"Property", "Type", "Default"})
			for _, r := range rows {
				t.AppendRow(table.Row{r.Name, r.Type, r.Default})
			}
			t.Render()
			return nil
		},
	}
}

// formatDefault renders a default value the way property files spell it.
func formatDefault(v any) string {
	if v == nil {
		return "None"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "None"
		}
		return fmt.Sprint(rv.Elem().Interface())
	case reflect.Slice:
		if rv.Len() == 0 {
			return "()"
		}
	case reflect.Bool:
		return strings.ToLower(fmt.Sprint(v))
	}
	return fmt.Sprint(v)
}
