package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "data/recipes", cfg.Site.InputDir)
	assert.Equal(t, filepath.Join("recipes", "index.json"), cfg.Site.IndexPath)
	assert.Equal(t, "/food/recipes/", cfg.Site.LinkPrefix)
	assert.Equal(t, 10*time.Second, cfg.Gallery.Timeout)
	assert.Equal(t, time.Hour, cfg.Gallery.CacheTTL)
	assert.Equal(t, 200*time.Millisecond, cfg.WatchDebounce)
	assert.Equal(t, 8, cfg.Gallery.Concurrency)
}

func TestFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: production
site:
  output_dir: public
  link_prefix: /r/
gallery:
  timeout: 3s
  concurrency: 0
publish:
  bucket: my-site
`), 0644))

	t.Setenv("RECIPE_SITE_PUBLISH_REGION", "eu-west-1")
	t.Setenv("RECIPE_SITE_SITE_LINK_PREFIX", "/food/")

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "public", cfg.Site.OutputDir)
	assert.Equal(t, filepath.Join("public", "index.json"), cfg.Site.IndexPath)
	assert.Equal(t, "/food/", cfg.Site.LinkPrefix, "env beats file")
	assert.Equal(t, 3*time.Second, cfg.Gallery.Timeout)
	assert.Equal(t, 1, cfg.Gallery.Concurrency)
	assert.Equal(t, "my-site", cfg.Publish.Bucket)
	assert.Equal(t, "eu-west-1", cfg.Publish.Region)
}

func TestMissingExplicitFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestOptionalFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "recipe_site.yaml"), []byte("addr: \":9000\"\n"), 0644))

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
}
