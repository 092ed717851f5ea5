package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/woozymasta/umat/internal/config"
)

// resolved is one row of the resolve output.
type resolved struct {
	Ref     string `json:"ref" yaml:"ref"`
	Package string `json:"package,omitempty" yaml:"package,omitempty"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <ref>...",
		Short: "Print the export file of each reference",
		Long: `Resolve references such as Shader'TestPkg.Wall' to their property files.

Unknown packages are reported with an empty path. A table is printed unless
--output json is given.`,
		Example: `  umat resolve "Shader'TestPkg.Wall'" "Texture'TestPkg.Brick01'"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd)
			refs, err := parseRefs(args)
			if err != nil {
				return err
			}
			c, err := e.openCache()
			if err != nil {
				return err
			}

			rows := make([]resolved, 0, len(refs))
			for _, ref := range refs {
				row := resolved{Ref: ref.String()}
				row.Package, _ = c.PackagePath(ref.PackageName)
				row.Path, _ = c.ResolvePath(ref)
				rows = append(rows, row)
			}

			if e.cfg.Output == config.OutputJSON {
				return writeDoc(cmd.OutOrStdout(), e.cfg.Output, rows)
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Reference", "Package", "Path"})
			for _, r := range rows {
				t.AppendRow(table.Row{r.Ref, orDash(r.Package), orDash(r.Path)})
			}
			t.Render()
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
