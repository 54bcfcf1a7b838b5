package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/Evge14n/tryzub/colors"
	"github.com/Evge14n/tryzub/internal/compiler"
	ustrings "github.com/Evge14n/tryzub/internal/utils/strings"
)

const watchDebounce = 100 * time.Millisecond

func newCheckCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Type check a program without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				return watchCheck(cmd.Context(), cmd, args[0])
			}
			return check(cmd, args[0])
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "check again whenever the file changes")
	return cmd
}

func check(cmd *cobra.Command, file string) error {
	r := compiler.Check(cmd.Context(), compilerOptions(cmd, file))
	if err := report(cmd, r); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	p := colors.NewPrinter(out, getConfig(cmd.Context()).UseColor(out))
	prog := r.Unit.Program
	p.Println(colors.GREEN, fmt.Sprintf("%s: ok (%s, %s)", file,
		ustrings.Count(len(prog.Funcs), "function", "functions"),
		ustrings.Count(len(prog.Structs), "struct", "structs")))
	return nil
}

// watchCheck checks file, then again after each write until ctx is done.
// The directory is watched rather than the file so editors that replace
// the file on save are still seen.
func watchCheck(ctx context.Context, cmd *cobra.Command, file string) error {
	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	log := getLogger(ctx)
	recheck := func() {
		if err := check(cmd, file); err != nil {
			log.Debug("check failed", "file", file, "err", err)
		}
	}
	recheck()

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || filepath.Clean(event.Name) != abs {
				continue
			}
			debounce = time.After(watchDebounce)
		case <-debounce:
			debounce = nil
			log.Debug("change detected", "file", file)
			recheck()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "err", err)
		}
	}
}
