package ingredients

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Ingredient
	}{
		{
			name: "mixed number with unit, descriptor and note",
			line: "2 1/2 cups chopped carrots, peeled",
			want: Ingredient{Amount: "2 1/2", Unit: "cups", Ingredient: "carrots", Descriptors: "chopped, peeled"},
		},
		{
			name: "no amount or unit",
			line: "salt to taste",
			want: Ingredient{Ingredient: "salt to taste"},
		},
		{
			name: "empty line",
			line: "",
			want: Ingredient{},
		},
		{
			name: "whitespace only",
			line: "   ",
			want: Ingredient{},
		},
		{
			name: "decimal amount without unit",
			line: "1.5 onions",
			want: Ingredient{Amount: "1.5", Ingredient: "onions"},
		},
		{
			name: "bare fraction",
			line: "1/2 tsp smoked paprika",
			want: Ingredient{Amount: "1/2", Unit: "tsp", Ingredient: "smoked paprika"},
		},
		{
			name: "unit is case-insensitive and kept as written",
			line: "3 Cloves garlic, minced",
			want: Ingredient{Amount: "3", Unit: "Cloves", Ingredient: "garlic", Descriptors: "minced"},
		},
		{
			name: "of is dropped anywhere",
			line: "1 pinch of salt",
			want: Ingredient{Amount: "1", Unit: "pinch", Ingredient: "salt", Descriptors: "of"},
		},
		{
			name: "only the first comma splits",
			line: "1 lb chicken breast, skin removed, cubed",
			want: Ingredient{Amount: "1", Unit: "lb", Ingredient: "chicken breast", Descriptors: "skin removed, cubed"},
		},
		{
			name: "unit word without amount is still a unit",
			line: "can tomatoes",
			want: Ingredient{Unit: "can", Ingredient: "tomatoes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.line)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestParseIsIdempotentOnName(t *testing.T) {
	lines := []string{
		"2 1/2 cups chopped carrots, peeled",
		"salt to taste",
		"1 lb fresh green beans",
		"4 large eggs",
		"olive oil",
	}
	for _, line := range lines {
		first := Parse(line).Ingredient
		assert.Equal(t, first, Parse(first).Ingredient, "line %q", line)
	}
}

func TestMeasurement(t *testing.T) {
	assert.Equal(t, "1 cup", Ingredient{Amount: "1", Unit: "cup"}.Measurement())
	assert.Equal(t, "2", Ingredient{Amount: "2"}.Measurement())
	assert.Equal(t, "pinch", Ingredient{Unit: "pinch"}.Measurement())
	assert.Equal(t, "", Ingredient{Ingredient: "salt"}.Measurement())
}

func TestStripDescriptors(t *testing.T) {
	assert.Equal(t, "tomatoes", StripDescriptors("Fresh Tomatoes, diced"))
	assert.Equal(t, "parmesan", StripDescriptors("grated parmesan (optional)"))
	assert.Equal(t, "salt to taste", StripDescriptors("salt to taste"))
	assert.Equal(t, "", StripDescriptors(""))
}

func TestParseAllAndNames(t *testing.T) {
	parsed := ParseAll([]string{"1 cup flour", "2 eggs"})
	assert.Len(t, parsed, 2)
	assert.Equal(t, []string{"flour", "eggs"}, Names(parsed))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		line string
		want Line
	}{
		{"2 1/2 cups chopped carrots, peeled", Line{Measurement: "2 1/2 cups", Name: "chopped carrots", Note: "peeled"}},
		{"1 pinch of salt", Line{Measurement: "1 pinch", Name: "of salt"}},
		{"salt to taste", Line{Name: "salt to taste"}},
		{"", Line{}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Describe(tt.line)); diff != "" {
			t.Errorf("Describe(%q) mismatch (-want +got):\n%s", tt.line, diff)
		}
	}
	assert.Len(t, DescribeAll([]string{"a", "b"}), 2)
}
