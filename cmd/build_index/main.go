// Command build_index renders every recipe under data/recipes into
// recipes/ and writes the gallery index, using the site's fixed layout.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"recipe_site/internal/logging"
	"recipe_site/internal/site"
)

const (
	inputDir   = "data/recipes"
	outputDir  = "recipes"
	linkPrefix = "/food/recipes/"
	galleryJS  = "js/gallery.js"
)

func main() {
	logger, sugar, err := logging.InitLogger("", false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync()

	opts := site.Options{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		IndexPath:  filepath.Join(outputDir, "index.json"),
		LinkPrefix: linkPrefix,
	}
	if _, err := os.Stat(galleryJS); err == nil {
		opts.GalleryScript = galleryJS
	}

	b, err := site.NewBuilder(opts, sugar)
	if err != nil {
		sugar.Fatalw("failed to create builder", "error", err)
	}

	res, err := b.Build(context.Background())
	if err != nil {
		sugar.Fatalw("build failed", "error", err)
	}

	fmt.Printf("wrote %d pages and %s\n", len(res.Links), opts.IndexPath)
	if len(res.Skipped) > 0 {
		fmt.Printf("skipped %d files: %v\n", len(res.Skipped), res.Skipped)
	}
}
