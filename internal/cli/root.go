// Package cli implements the umat command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/woozymasta/umat"
	"github.com/woozymasta/umat/internal/config"
)

// Version information, set at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// envKey stores the command environment in the command context.
type envKey struct{}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "umat",
		Short: "Read and compile exported Unreal materials",
		Long: `umat reads material property dumps (*.props.txt) exported from Unreal Engine
packages and compiles them into shading graphs.

Exports are expected at <root>/exports/<package>/<Type>/<Object>.props.txt.
Package names are resolved through a manifest file or by scanning the root
for package files.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, used, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := cfg.NewLogger(cmd.ErrOrStderr())
			umat.SetLogger(log)
			if used != "" {
				log.Debug("using config file", "path", used)
			}

			cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, &env{cfg: cfg, log: log}))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./"+config.DefaultFile+")")
	pf.StringP("root", "r", ".", "repository root holding the exports directory")
	pf.StringP("manifest", "m", "", "YAML package manifest (default: scan the root for packages)")
	pf.String("log-level", "warn", "log level (debug|info|warn|error)")
	pf.String("log-format", "text", "log format (text|json)")
	pf.StringP("output", "o", config.OutputYAML, "output format (yaml|json|props)")
	pf.Int("max-depth", 0, "reference nesting limit (default 64)")
	pf.IntP("jobs", "j", 0, "parallel compile jobs (default: number of CPUs)")

	_ = root.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{config.OutputYAML, config.OutputJSON, config.OutputProps}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = root.RegisterFlagCompletionFunc("log-level", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newReadCmd(),
		newResolveCmd(),
		newCompileCmd(),
		newTypesCmd(),
		newValidateCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
