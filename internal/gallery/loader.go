package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"recipe_site/internal/recipes"
)

var ErrNoRecipeData = errors.New("page has no recipe-data script")

// Fetcher returns the raw HTML of a built recipe page.
type Fetcher interface {
	Fetch(ctx context.Context, link string) ([]byte, error)
}

// HTTPFetcher fetches pages from a running site.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, link string) ([]byte, error) {
	url := link
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		url = f.BaseURL + "/" + strings.TrimLeft(link, "/")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// DirFetcher reads pages straight from a build output directory. Links are
// mapped to files by stripping LinkPrefix.
type DirFetcher struct {
	Dir        string
	LinkPrefix string
}

func (f DirFetcher) Fetch(_ context.Context, link string) ([]byte, error) {
	name := strings.TrimPrefix(link, f.LinkPrefix)
	return os.ReadFile(filepath.Join(f.Dir, filepath.FromSlash(name)))
}

// Extract decodes the recipe embedded in a built page.
func Extract(page []byte) (recipes.Recipe, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return recipes.Recipe{}, fmt.Errorf("parse page: %w", err)
	}
	sel := doc.Find("script#recipe-data").First()
	if sel.Length() == 0 {
		return recipes.Recipe{}, ErrNoRecipeData
	}
	return recipes.Decode("recipe-data.json", []byte(sel.Text()))
}

// LoadIndex fetches a gallery index, a JSON list of page links.
func LoadIndex(ctx context.Context, fetcher Fetcher, link string) ([]string, error) {
	b, err := fetcher.Fetch(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("fetch gallery index: %w", err)
	}
	var links []string
	if err := json.Unmarshal(b, &links); err != nil {
		return nil, fmt.Errorf("decode gallery index: %w", err)
	}
	return links, nil
}

type Loader struct {
	fetcher Fetcher
	cache   PageCache
	limit   int
	log     *zap.SugaredLogger
}

// NewLoader creates a loader. cache may be nil; limit bounds concurrent fetches.
func NewLoader(fetcher Fetcher, cache PageCache, limit int, sugar *zap.SugaredLogger) *Loader {
	if limit <= 0 {
		limit = 8
	}
	return &Loader{fetcher: fetcher, cache: cache, limit: limit, log: sugar}
}

// Load fetches every page concurrently and returns the recipes in index
// order. Pages that cannot be fetched or decoded are logged and left out.
// A recipe without a link is keyed by its page path.
func (l *Loader) Load(ctx context.Context, links []string) (recipes.Catalog, error) {
	found := make([]*recipes.Recipe, len(links))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.limit)
	for i, link := range links {
		g.Go(func() error {
			rec, err := l.loadOne(gctx, link)
			if err != nil {
				if l.log != nil {
					l.log.Warnw("could not load recipe page", "link", link, "error", err)
				}
				return nil
			}
			if rec.Link == "" {
				rec.Link = link
			}
			found[i] = &rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(recipes.Catalog, 0, len(links))
	for _, r := range found {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (l *Loader) loadOne(ctx context.Context, link string) (recipes.Recipe, error) {
	if l.cache != nil {
		if page, ok := l.cache.Get(ctx, link); ok {
			if rec, err := Extract(page); err == nil {
				return rec, nil
			}
		}
	}

	page, err := l.fetcher.Fetch(ctx, link)
	if err != nil {
		return recipes.Recipe{}, err
	}
	rec, err := Extract(page)
	if err != nil {
		return recipes.Recipe{}, err
	}
	if l.cache != nil {
		l.cache.Set(ctx, link, page)
	}
	return rec, nil
}
