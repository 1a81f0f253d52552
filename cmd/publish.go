package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"recipe_site/internal/publish"
)

var publishBuild bool

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload the built site to the configured bucket",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if cfg.Publish.Bucket == "" {
			return errors.New("publish.bucket is not configured")
		}

		if publishBuild {
			b, err := newBuilder()
			if err != nil {
				return err
			}
			res, err := b.Build(ctx)
			if err != nil {
				return err
			}
			printBuild(cmd, res)
		}

		files, err := publish.Files(cfg.Site.OutputDir)
		if err != nil {
			return err
		}
		client, err := publish.NewS3Client(ctx, cfg.Publish.Region)
		if err != nil {
			return err
		}

		p := publish.New(client, cfg.Publish.Bucket, cfg.Publish.Prefix, sugar)
		bar := newProgress(len(files), "uploading")
		p.OnFile = func(string) { _ = bar.Add(1) }

		n, err := p.Publish(ctx, cfg.Site.OutputDir)
		_ = bar.Finish()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render(fmt.Sprintf("uploaded %d files to s3://%s", n, cfg.Publish.Bucket)))
		return nil
	},
}

func init() {
	publishCmd.Flags().BoolVar(&publishBuild, "build", false, "build the site first")
}
