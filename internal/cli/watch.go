package cli

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/woozymasta/umat"
	"github.com/woozymasta/umat/internal/config"
)

// watchDebounce is how long the export tree must stay quiet before a rebuild.
const watchDebounce = 100 * time.Millisecond

func newWatchCmd() *cobra.Command {
	var opts compileOptions

	cmd := &cobra.Command{
		Use:   "watch <ref>...",
		Short: "Recompile materials whenever their exports change",
		Long: `Compile the given references, then watch <root>/exports and compile them
again with a fresh cache after property files or images change.

Stop with Ctrl+C.`,
		Example: `  umat watch -r ./repo "Shader'TestPkg.Wall'"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd)
			refs, err := parseRefs(args)
			if err != nil {
				return err
			}
			if e.cfg.Output == config.OutputProps {
				return errPropsOutput
			}

			rebuild := func(ctx context.Context) {
				c, err := e.openCache()
				if err != nil {
					e.log.Error("cannot open repository", "err", err)
					return
				}
				reports, err := compileAll(ctx, e, c, refs, opts)
				if err != nil {
					e.log.Error("compile failed", "err", err)
					return
				}
				if err := printReports(cmd.OutOrStdout(), e.cfg.Output, reports); err != nil {
					e.log.Error("cannot print reports", "err", err)
				}
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer func() { _ = watcher.Close() }()

			dir := filepath.Join(e.cfg.Root, umat.ExportsDir)
			if err := watchTree(watcher, dir); err != nil {
				return err
			}
			e.log.Info("watching exports", "dir", dir)

			rebuild(cmd.Context())
			watchLoop(cmd.Context(), e, watcher, rebuild)
			return nil
		},
	}
	opts.bind(cmd)

	return cmd
}

// watchTree adds dir and every directory below it.
func watchTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

// relevant reports whether a change to name can affect a compiled material.
func relevant(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, umat.PropsExt) {
		return true
	}
	return slices.Contains(umat.ImageExts, filepath.Ext(lower))
}

// watchLoop runs rebuild once changes settle, until ctx is done or the
// watcher closes.
func watchLoop(ctx context.Context, e *env, w *fsnotify.Watcher, rebuild func(context.Context)) {
	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := watchTree(w, ev.Name); err != nil {
						e.log.Warn("cannot watch directory", "dir", ev.Name, "err", err)
					}
					continue
				}
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !relevant(ev.Name) {
				continue
			}
			e.log.Debug("change detected", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(watchDebounce)

		case <-timer.C:
			rebuild(ctx)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			e.log.Warn("watcher error", "err", err)
		}
	}
}
