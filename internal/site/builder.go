package site

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"recipe_site/internal/ingredients"
	"recipe_site/internal/recipes"
)

//go:embed templates/recipe.html
var templatesFS embed.FS

// Options are the fixed directory conventions of a build.
type Options struct {
	InputDir      string
	OutputDir     string
	IndexPath     string // gallery index JSON; defaults to OutputDir/index.json
	GalleryScript string // optional script holding `const recipeFiles = [...]`
	LinkPrefix    string // e.g. "/food/recipes/"
	TemplatePath  string // optional override of the embedded page template
}

// Result lists the links of built pages, in build order, and the skipped sources.
type Result struct {
	Links   []string
	Skipped []string
}

type Builder struct {
	opts Options
	tmpl *template.Template
	log  *zap.SugaredLogger

	// OnFile, when set, is called once per source file after it is handled.
	OnFile func(name string)
}

type pageData struct {
	Recipe      recipes.Recipe
	Ingredients []ingredients.Line
	Data        template.JS
}

func NewBuilder(opts Options, sugar *zap.SugaredLogger) (*Builder, error) {
	if opts.IndexPath == "" {
		opts.IndexPath = filepath.Join(opts.OutputDir, "index.json")
	}

	var (
		tmpl *template.Template
		err  error
	)
	if opts.TemplatePath != "" {
		tmpl, err = template.ParseFiles(opts.TemplatePath)
	} else {
		tmpl, err = template.ParseFS(templatesFS, "templates/recipe.html")
	}
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}

	return &Builder{opts: opts, tmpl: tmpl, log: sugar}, nil
}

// Sources lists recipe source files in the input directory, sorted by name.
func (b *Builder) Sources() ([]string, error) {
	entries, err := os.ReadDir(b.opts.InputDir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isSource(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	return out, nil
}

func isSource(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Build renders every source into a page and rewrites the gallery index.
// A source that cannot be read, decoded or rendered is skipped with a warning.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	sources, err := b.Sources()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(b.opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	res := &Result{}
	for _, name := range sources {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		link, err := b.buildOne(name)
		if b.OnFile != nil {
			b.OnFile(name)
		}
		if err != nil {
			if b.log != nil {
				b.log.Warnw("skipping recipe source", "file", name, "error", err)
			}
			res.Skipped = append(res.Skipped, name)
			continue
		}
		if b.log != nil {
			b.log.Infow("built recipe page", "file", name, "link", link)
		}
		res.Links = append(res.Links, link)
	}

	if err := b.writeIndex(res.Links); err != nil {
		return res, err
	}
	if b.opts.GalleryScript != "" {
		if err := UpdateGalleryScript(b.opts.GalleryScript, res.Links); err != nil && b.log != nil {
			b.log.Warnw("could not update gallery script", "path", b.opts.GalleryScript, "error", err)
		}
	}
	return res, nil
}

// PageName is the output file name for a source file name.
func PageName(source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return "recipe-" + base + ".html"
}

func (b *Builder) buildOne(name string) (string, error) {
	rec, err := recipes.LoadFile(filepath.Join(b.opts.InputDir, name))
	if err != nil {
		return "", err
	}

	page := PageName(name)
	link := b.opts.LinkPrefix + page
	if rec.Link == "" {
		rec.Link = link
	}
	rec.Prepare()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal recipe data: %w", err)
	}

	f, err := os.Create(filepath.Join(b.opts.OutputDir, page))
	if err != nil {
		return "", fmt.Errorf("create page: %w", err)
	}
	defer f.Close()

	err = b.tmpl.Execute(f, pageData{
		Recipe:      rec,
		Ingredients: ingredients.DescribeAll(rec.Ingredients),
		Data:        template.JS(data),
	})
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return link, nil
}

func (b *Builder) writeIndex(links []string) error {
	if links == nil {
		links = []string{}
	}
	data, err := json.MarshalIndent(links, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal gallery index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(b.opts.IndexPath), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	if err := os.WriteFile(b.opts.IndexPath, data, 0644); err != nil {
		return fmt.Errorf("write gallery index: %w", err)
	}
	return nil
}

var recipeFilesRe = regexp.MustCompile(`const recipeFiles = \[[\s\S]*?\];`)

// UpdateGalleryScript replaces the recipeFiles array literal inside a gallery
// script with links.
func UpdateGalleryScript(path string, links []string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !recipeFilesRe.Match(b) {
		return fmt.Errorf("no recipeFiles array in %s", path)
	}

	quoted := make([]string, len(links))
	for i, l := range links {
		quoted[i] = fmt.Sprintf("%q", l)
	}
	repl := "const recipeFiles = [\n  " + strings.Join(quoted, ",\n  ") + "\n];"
	out := recipeFilesRe.ReplaceAllLiteral(b, []byte(repl))
	return os.WriteFile(path, out, 0644)
}

// ReadIndex loads a gallery index written by Build.
func ReadIndex(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gallery index: %w", err)
	}
	var links []string
	if err := json.Unmarshal(b, &links); err != nil {
		return nil, fmt.Errorf("decode gallery index: %w", err)
	}
	return links, nil
}
