package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/woozymasta/umat"
	"github.com/woozymasta/umat/internal/config"
)

func newReadCmd() *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "read <file>...",
		Short: "Read property files and print the typed records",
		Long: `Read one or more *.props.txt files and print the decoded records.

The record type and reference are taken from the file path
(<package>/<Type>/<Object>.props.txt). With --output props the records are
written back as property text; --defaults includes fields left at their
compiled-in default.`,
		Example: `  umat read exports/Textures/TestPkg/Shader/Wall.props.txt
  umat read -o props --defaults exports/Textures/TestPkg/Texture/*.props.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd)
			records := make([]umat.Material, 0, len(args))
			for _, path := range args {
				m, err := umat.ReadFile(path, &umat.ReadOptions{Logger: e.log})
				if err != nil {
					return err
				}
				records = append(records, m)
			}

			return printRecords(cmd.OutOrStdout(), e.cfg.Output, records, defaults)
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, "include fields equal to their default (props output)")

	return cmd
}

// printRecords writes records in the selected format. Several JSON records
// are printed as an array, several YAML records as a document stream.
func printRecords(w io.Writer, format string, records []umat.Material, defaults bool) error {
	switch format {
	case config.OutputProps:
		for _, m := range records {
			if _, err := fmt.Fprintf(w, "// %s\n", m.Ref()); err != nil {
				return err
			}
			if err := umat.Encode(w, m, &umat.FormatOptions{WriteDefaults: defaults}); err != nil {
				return fmt.Errorf("%s: %w", m.Ref(), err)
			}
		}
		return nil

	case config.OutputJSON:
		docs := make([]map[string]any, 0, len(records))
		for _, m := range records {
			n, err := typedRecordNode(m)
			if err != nil {
				return err
			}
			var v map[string]any
			if err := n.Decode(&v); err != nil {
				return err
			}
			docs = append(docs, v)
		}
		if len(docs) == 1 {
			return writeDoc(w, format, docs[0])
		}
		return writeDoc(w, format, docs)

	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, m := range records {
			n, err := typedRecordNode(m)
			if err != nil {
				return err
			}
			if err := enc.Encode(n); err != nil {
				return err
			}
		}
		return enc.Close()
	}
}

// typedRecordNode is recordNode with a leading type key.
func typedRecordNode(m umat.Material) (*yaml.Node, error) {
	body, err := recordNode(m)
	if err != nil {
		return nil, err
	}

	doc := &yaml.Node{Kind: yaml.MappingNode}
	doc.Content = append(doc.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "type"},
		&yaml.Node{Kind: yaml.ScalarNode, Value: m.TypeName()},
	)
	if body.Kind == yaml.MappingNode {
		doc.Content = append(doc.Content, body.Content...)
	}
	return doc, nil
}
