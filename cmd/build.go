package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"recipe_site/internal/site"
)

var buildWatch bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render recipe pages and the gallery index",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newBuilder()
		if err != nil {
			return err
		}

		if buildWatch {
			sugar.Infow("watching recipes", "dir", cfg.Site.InputDir)
			return b.Watch(cmd.Context(), cfg.WatchDebounce, func(res *site.Result, err error) {
				if err != nil {
					sugar.Errorw("rebuild failed", "error", err)
					return
				}
				printBuild(cmd, res)
			})
		}

		sources, err := b.Sources()
		if err != nil {
			return err
		}
		bar := newProgress(len(sources), "building")
		b.OnFile = func(string) { _ = bar.Add(1) }

		res, err := b.Build(cmd.Context())
		_ = bar.Finish()
		if err != nil {
			return err
		}
		printBuild(cmd, res)
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolVarP(&buildWatch, "watch", "w", false, "rebuild when recipe files change")
}

func printBuild(cmd *cobra.Command, res *site.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("built %d pages", len(res.Links))))
	for _, s := range res.Skipped {
		fmt.Fprintln(out, mutedStyle.Render("skipped "+s))
	}
}
