package main

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"recipe_site/internal/cloudsync"
	"recipe_site/internal/mongo"
	"recipe_site/internal/server"
)

var (
	serveNoStatic bool
	serveToken    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site preview and the planner API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, st, closeStore, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := st.Watch(ctx, cfg.WatchDebounce); err != nil {
			sugar.Warnw("store watch unavailable, external edits won't be noticed", "error", err)
		}

		opts := server.Options{LinkPrefix: cfg.Site.LinkPrefix}
		if !serveNoStatic {
			opts.SiteDir = cfg.Site.OutputDir
		}
		srv := server.New(a, opts, logger)

		uid, err := resolveUser(serveToken, "")
		if err != nil {
			return err
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return srv.Run(ctx, cfg.Addr) })

		if uid != "" && cfg.Sync.MongoURI != "" {
			remote, err := mongo.New(ctx, cfg.Sync.MongoURI, cfg.Sync.MongoDB, cfg.Gallery.RedisAddr, sugar)
			if err != nil {
				sugar.Warnw("cloud store unavailable, continuing offline", "error", err)
			} else {
				defer remote.Close(context.Background())

				syncer := cloudsync.New(remote, st, sugar)
				if err := syncer.SignIn(ctx, uid); err != nil {
					sugar.Warnw("cloud sign-in failed, continuing offline", "error", err)
				} else {
					g.Go(func() error {
						syncer.Run(ctx)
						syncer.Wait()
						return nil
					})
				}
			}
		}

		sugar.Infow("serving", "addr", cfg.Addr, "recipes", len(a.Catalog()))
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoStatic, "no-static", false, "serve only the API")
	serveCmd.Flags().StringVar(&serveToken, "token", "", "identity token enabling cloud sync")
}
