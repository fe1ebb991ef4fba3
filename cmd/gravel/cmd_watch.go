package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/gravel/groovy/codebase"
	"github.com/dhamidi/gravel/index"
)

func newWatchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the index up to date while sources change",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := commonlog.GetLogger("gravel.watch")

			p, c, err := loadCodebase()
			if err != nil {
				return err
			}
			ix, err := index.Open(p.IndexPath)
			if err != nil {
				return err
			}
			defer ix.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			n, err := ix.IndexAll(ctx, c)
			if err != nil {
				return err
			}
			printSuccess("Indexed %d files, watching %s", n, p.RootDir)

			w := codebase.NewFileWatcher(c,
				codebase.WithPollInterval(interval),
				codebase.OnChange(func(path string, removed bool) {
					if err := reindex(ctx, ix, c, path, removed); err != nil {
						log.Errorf("index %s: %s", path, err)
						return
					}
					log.Infof("reindexed %s", path)
				}),
			)
			w.Start()
			<-ctx.Done()
			w.Stop()
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", time.Second, "how often to poll for changes")

	return cmd
}

func reindex(ctx context.Context, ix *index.Index, c *codebase.Codebase, path string, removed bool) error {
	if ctx.Err() != nil {
		return nil
	}
	if removed {
		return ix.RemoveFile(ctx, path)
	}
	return ix.IndexFile(ctx, c, path)
}
