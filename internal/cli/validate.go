package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/woozymasta/umat"
	"github.com/woozymasta/umat/cache"
	"github.com/woozymasta/umat/internal/config"
)

// errValidation is returned when a validated record has error-level issues.
var errValidation = errors.New("validation failed")

// refIssue is an issue of one record.
type refIssue struct {
	Ref        string `json:"ref" yaml:"ref"`
	umat.Issue `yaml:",inline"`
}

func newValidateCmd() *cobra.Command {
	var (
		deep bool
		opts umat.ValidateOptions
	)

	cmd := &cobra.Command{
		Use:   "validate <ref|file>...",
		Short: "Check material records for suspicious values",
		Long: `Validate records given as references or *.props.txt files.

With --deep every record reachable through reference fields is validated too,
and references that cannot be loaded are reported. The command fails when any
error-level issue is found.`,
		Example: `  umat validate "MaterialSwitch'TestPkg.Lights'"
  umat validate --deep exports/Textures/TestPkg/Shader/Wall.props.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd)
			c, err := e.openCache()
			if err != nil {
				return err
			}

			v := &validator{ctx: cmd.Context(), cache: c, opts: &opts, deep: deep, seen: map[string]bool{}}
			for _, arg := range args {
				if err := v.arg(e, arg); err != nil {
					return err
				}
			}

			if err := printIssues(cmd, e.cfg.Output, v.issues); err != nil {
				return err
			}
			for _, is := range v.issues {
				if is.Level == umat.IssueError {
					return errValidation
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&deep, "deep", false, "also validate referenced records")
	f.BoolVar(&opts.DisableReferenceCheck, "no-reference-check", false, "skip warnings about unset references")
	f.BoolVar(&opts.DisableSizeCheck, "no-size-check", false, "skip warnings about textures without a size")

	return cmd
}

// validator collects issues over a set of records.
type validator struct {
	ctx    context.Context
	cache  *cache.Cache
	opts   *umat.ValidateOptions
	deep   bool
	seen   map[string]bool
	issues []refIssue
}

func (v *validator) arg(e *env, arg string) error {
	if strings.HasSuffix(arg, umat.PropsExt) {
		m, err := umat.ReadFile(arg, &umat.ReadOptions{Logger: e.log})
		if err != nil {
			return err
		}
		return v.record(m)
	}

	refs, err := parseRefs([]string{arg})
	if err != nil {
		return err
	}
	return v.ref(refs[0], "")
}

// ref loads and validates ref. from names the referencing field, if any.
func (v *validator) ref(ref umat.Reference, from string) error {
	key := ref.String()
	if v.seen[key] {
		return nil
	}
	v.seen[key] = true

	m, err := v.cache.Load(v.ctx, &ref)
	if err != nil {
		return err
	}
	if m == nil {
		v.issues = append(v.issues, refIssue{Ref: key, Issue: umat.Issue{
			Level:   umat.IssueError,
			Code:    "not_found",
			Message: "record cannot be loaded",
			Path:    from,
		}})
		return nil
	}
	return v.record(m)
}

func (v *validator) record(m umat.Material) error {
	key := m.Ref().String()
	v.seen[key] = true
	for _, is := range umat.Validate(m, v.opts) {
		v.issues = append(v.issues, refIssue{Ref: key, Issue: is})
	}
	if !v.deep {
		return nil
	}

	for path, ref := range umat.References(m) {
		if err := v.ref(ref, key+"."+path); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func printIssues(cmd *cobra.Command, format string, issues []refIssue) error {
	w := cmd.OutOrStdout()
	if format == config.OutputJSON {
		if issues == nil {
			issues = []refIssue{}
		}
		return writeDoc(w, format, issues)
	}
	if len(issues) == 0 {
		_, err := fmt.Fprintln(w, "no issues")
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Reference", "Level", "Code", "Path", "Message"})
	for _, is := range issues {
		t.AppendRow(table.Row{is.Ref, is.Level, is.Code, is.Path, is.Message})
	}
	t.Render()
	return nil
}
