package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const EnvPrefix = "RECIPE_SITE"

type SiteConfig struct {
	InputDir      string `mapstructure:"input_dir"`
	OutputDir     string `mapstructure:"output_dir"`
	IndexPath     string `mapstructure:"index_path"`
	GalleryScript string `mapstructure:"gallery_script"`
	LinkPrefix    string `mapstructure:"link_prefix"`
	Template      string `mapstructure:"template"`
}

type GalleryConfig struct {
	// BaseURL fetches pages over HTTP; empty reads the site output directory.
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency"`
	RedisAddr   string        `mapstructure:"redis_addr"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

type SyncConfig struct {
	MongoURI       string `mapstructure:"mongo_uri"`
	MongoDB        string `mapstructure:"mongo_db"`
	IdentitySecret string `mapstructure:"identity_secret"`
}

type PublishConfig struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
	Region string `mapstructure:"region"`
}

type Config struct {
	Env           string        `mapstructure:"env"`
	DBPath        string        `mapstructure:"db_path"`
	Addr          string        `mapstructure:"addr"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`

	Site    SiteConfig    `mapstructure:"site"`
	Gallery GalleryConfig `mapstructure:"gallery"`
	Sync    SyncConfig    `mapstructure:"sync"`
	Publish PublishConfig `mapstructure:"publish"`
}

// New returns a viper instance with defaults and RECIPE_SITE_* env binding,
// e.g. RECIPE_SITE_SITE_OUTPUT_DIR for site.output_dir.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("env", "development")
	v.SetDefault("db_path", "recipe_site.db")
	v.SetDefault("addr", ":8080")
	v.SetDefault("watch_debounce", "200ms")

	v.SetDefault("site.input_dir", "data/recipes")
	v.SetDefault("site.output_dir", "recipes")
	v.SetDefault("site.index_path", "")
	v.SetDefault("site.gallery_script", "")
	v.SetDefault("site.link_prefix", "/food/recipes/")
	v.SetDefault("site.template", "")

	v.SetDefault("gallery.base_url", "")
	v.SetDefault("gallery.timeout", "10s")
	v.SetDefault("gallery.concurrency", 8)
	v.SetDefault("gallery.redis_addr", "")
	v.SetDefault("gallery.cache_ttl", "1h")

	v.SetDefault("sync.mongo_uri", "")
	v.SetDefault("sync.mongo_db", "recipe_site")
	v.SetDefault("sync.identity_secret", "")

	v.SetDefault("publish.bucket", "")
	v.SetDefault("publish.prefix", "")
	v.SetDefault("publish.region", "us-east-1")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads cfgFile when given, or an optional recipe_site.yaml in the
// working directory, and decodes everything into a Config.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("recipe_site")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	decoderConfigOption := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err := v.Unmarshal(&cfg, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if cfg.Site.IndexPath == "" {
		cfg.Site.IndexPath = filepath.Join(cfg.Site.OutputDir, "index.json")
	}
	if cfg.Gallery.Concurrency <= 0 {
		cfg.Gallery.Concurrency = 1
	}
	return &cfg, nil
}
