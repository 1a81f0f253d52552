package recipes

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"recipe_site/internal/ingredients"
)

// LeftoverSafeTag marks recipes that keep well as leftovers.
const LeftoverSafeTag = "leftover-safe"

var ErrNoTitle = errors.New("recipe has no title")

// Instruction is one step: either text or an image.
type Instruction struct {
	Text  string `json:"-" yaml:"-"`
	Image string `json:"image,omitempty" yaml:"image,omitempty"`
}

type Recipe struct {
	Title        string        `json:"title" yaml:"title"`
	Image        string        `json:"image,omitempty" yaml:"image,omitempty"`
	Cover        string        `json:"cover,omitempty" yaml:"cover,omitempty"`
	Tags         []string      `json:"tags" yaml:"tags"`
	Ingredients  []string      `json:"ingredients" yaml:"ingredients"`
	Instructions []Instruction `json:"instructions" yaml:"instructions"`
	Time         string        `json:"time,omitempty" yaml:"time,omitempty"`
	Link         string        `json:"link" yaml:"link"`
	Video        string        `json:"video,omitempty" yaml:"video,omitempty"`
	Original     string        `json:"original,omitempty" yaml:"original,omitempty"`
	Cost         *float64      `json:"cost,omitempty" yaml:"cost,omitempty"`

	// Set by the page builder.
	ParsedIngredients  []ingredients.Ingredient `json:"parsedIngredients,omitempty" yaml:"-"`
	CleanedIngredients []string                 `json:"cleanedIngredients,omitempty" yaml:"-"`
}

func (in Instruction) MarshalJSON() ([]byte, error) {
	if in.Image != "" {
		return json.Marshal(struct {
			Image string `json:"image"`
		}{in.Image})
	}
	return json.Marshal(in.Text)
}

func (in *Instruction) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*in = Instruction{Text: s}
		return nil
	}
	var obj struct {
		Image string `json:"image"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("instruction must be a string or {image}: %w", err)
	}
	*in = Instruction{Image: obj.Image}
	return nil
}

func (in *Instruction) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*in = Instruction{Text: node.Value}
		return nil
	}
	var obj struct {
		Image string `yaml:"image"`
	}
	if err := node.Decode(&obj); err != nil {
		return fmt.Errorf("instruction must be a string or {image}: %w", err)
	}
	*in = Instruction{Image: obj.Image}
	return nil
}

// HeroImage returns the image, falling back to the cover.
func (r Recipe) HeroImage() string {
	if r.Image != "" {
		return r.Image
	}
	return r.Cover
}

// Prepare fills the derived ingredient fields.
func (r *Recipe) Prepare() {
	r.ParsedIngredients = ingredients.ParseAll(r.Ingredients)
	r.CleanedIngredients = ingredients.Names(r.ParsedIngredients)
}

// Parsed returns the parsed ingredients, parsing the raw lines when the
// recipe was not prepared.
func (r Recipe) Parsed() []ingredients.Ingredient {
	if len(r.ParsedIngredients) > 0 {
		return r.ParsedIngredients
	}
	return ingredients.ParseAll(r.Ingredients)
}

// Decode reads a recipe source. YAML is used for .yaml/.yml names, JSON otherwise.
func Decode(name string, b []byte) (Recipe, error) {
	var r Recipe
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &r); err != nil {
			return Recipe{}, fmt.Errorf("yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(b, &r); err != nil {
			return Recipe{}, fmt.Errorf("json: %w", err)
		}
	}
	if strings.TrimSpace(r.Title) == "" {
		return Recipe{}, ErrNoTitle
	}
	return r, nil
}

// LoadFile reads and decodes one recipe source file.
func LoadFile(path string) (Recipe, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Recipe{}, fmt.Errorf("read %s: %w", path, err)
	}
	r, err := Decode(path, b)
	if err != nil {
		return Recipe{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return r, nil
}

var (
	minutesRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*min`)
	hoursRe   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:hr|hour)`)
	priceRe   = regexp.MustCompile(`\$\s*(\d+(?:\.\d+)?)`)
)

// Minutes parses a time tag such as "30 min", "1 hr" or "1 hr 15 min".
func Minutes(tag string) (int, bool) {
	total := 0.0
	found := false
	if m := hoursRe.FindStringSubmatch(tag); m != nil {
		h, _ := strconv.ParseFloat(m[1], 64)
		total += h * 60
		found = true
	}
	if m := minutesRe.FindStringSubmatch(tag); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		total += v
		found = true
	}
	return int(math.Round(total)), found
}

// TimeMinutes returns the cooking time from the first time tag, then from
// the time field.
func (r Recipe) TimeMinutes() (int, bool) {
	for _, t := range r.Tags {
		if m, ok := Minutes(t); ok {
			return m, true
		}
	}
	if r.Time != "" {
		return Minutes(r.Time)
	}
	return 0, false
}

// Price returns the cost from the first "$n" tag, then from the cost field.
func (r Recipe) Price() (float64, bool) {
	for _, t := range r.Tags {
		if m := priceRe.FindStringSubmatch(t); m != nil {
			v, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				return v, true
			}
		}
	}
	if r.Cost != nil {
		return *r.Cost, true
	}
	return 0, false
}

// HasTag compares case-insensitively.
func (r Recipe) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// MatchesLink reports whether link addresses this recipe, either exactly or
// as a longer URL ending with the recipe link.
func (r Recipe) MatchesLink(link string) bool {
	if link == "" || r.Link == "" {
		return false
	}
	return link == r.Link || strings.HasSuffix(link, r.Link)
}
