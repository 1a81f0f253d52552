package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"recipe_site/internal/app"
	"recipe_site/internal/config"
	"recipe_site/internal/gallery"
	"recipe_site/internal/logging"
	"recipe_site/internal/recipes"
	"recipe_site/internal/site"
	"recipe_site/internal/store"
)

var (
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
	sugar  *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "recipe_site",
	Short: "Builds and serves a personal recipe website",
	Long: `recipe_site turns recipe JSON/YAML files into static pages and a gallery index,
and keeps a weekly meal plan, a shopping list and saved recipes in a local store
that can optionally sync to the cloud.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(config.New(), cfgFile)
		if err != nil {
			return err
		}
		logger, sugar, err = logging.InitLogger(cfg.Env, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./recipe_site.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(buildCmd, serveCmd, galleryCmd, planCmd, shopCmd, savedCmd, syncCmd, publishCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

func newBuilder() (*site.Builder, error) {
	return site.NewBuilder(site.Options{
		InputDir:      cfg.Site.InputDir,
		OutputDir:     cfg.Site.OutputDir,
		IndexPath:     cfg.Site.IndexPath,
		GalleryScript: cfg.Site.GalleryScript,
		LinkPrefix:    cfg.Site.LinkPrefix,
		TemplatePath:  cfg.Site.Template,
	}, sugar)
}

// loadCatalog reads the gallery index and every page it lists, over HTTP
// when gallery.base_url is set and from the built site otherwise.
func loadCatalog(ctx context.Context) (recipes.Catalog, error) {
	var (
		fetcher gallery.Fetcher
		links   []string
		err     error
	)
	if cfg.Gallery.BaseURL != "" {
		fetcher = gallery.NewHTTPFetcher(cfg.Gallery.BaseURL, cfg.Gallery.Timeout)
		links, err = gallery.LoadIndex(ctx, fetcher, path.Join(cfg.Site.LinkPrefix, "index.json"))
	} else {
		fetcher = gallery.DirFetcher{Dir: cfg.Site.OutputDir, LinkPrefix: cfg.Site.LinkPrefix}
		links, err = site.ReadIndex(cfg.Site.IndexPath)
	}
	if err != nil {
		return nil, err
	}

	var cache gallery.PageCache
	if cfg.Gallery.RedisAddr != "" {
		if rc := gallery.NewRedisCache(ctx, cfg.Gallery.RedisAddr, cfg.Gallery.CacheTTL, sugar); rc != nil {
			defer rc.Close()
			cache = rc
		}
	}

	return gallery.NewLoader(fetcher, cache, cfg.Gallery.Concurrency, sugar).Load(ctx, links)
}

// openApp opens the local store and loads the catalog. The returned close
// func releases the store.
func openApp(ctx context.Context) (*app.App, *store.Store, func(), error) {
	catalog, err := loadCatalog(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load catalog: %w", err)
	}

	st, err := store.Open(cfg.DBPath, sugar)
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() {
		if err := st.Close(); err != nil {
			sugar.Warnw("close store", "error", err)
		}
	}
	return app.New(st, catalog, sugar), st, closeFn, nil
}
