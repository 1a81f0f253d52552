package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"recipe_site/internal/gallery"
)

var (
	galleryFilter      gallery.Filter
	galleryIngredients bool
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "List recipes matching a filter",
	Example: `  recipe_site gallery --ingredient chicken --max-time 30
  recipe_site gallery --meal dinner --cuisine thai --leftover`,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if galleryIngredients {
			for _, name := range gallery.IngredientOptions(catalog) {
				fmt.Fprintln(out, name)
			}
			return nil
		}

		cards := gallery.Cards(gallery.Apply(catalog, galleryFilter))
		if len(cards) == 0 {
			fmt.Fprintln(out, mutedStyle.Render("no recipes match"))
			return nil
		}
		for _, c := range cards {
			body := lipgloss.JoinVertical(lipgloss.Left,
				titleStyle.Render(c.Title),
				tagLine(c.Tags),
				mutedStyle.Render(c.Link),
			)
			fmt.Fprintln(out, cardStyle.Render(strings.TrimRight(body, "\n")))
		}
		fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%d of %d recipes", len(cards), len(catalog))))
		return nil
	},
}

func init() {
	f := galleryCmd.Flags()
	f.StringVarP(&galleryFilter.TitleQuery, "query", "q", "", "title contains")
	f.StringSliceVar(&galleryFilter.Ingredients, "ingredient", nil, "required ingredient (repeatable)")
	f.IntVar(&galleryFilter.MaxTimeMinutes, "max-time", 0, "maximum total minutes")
	f.BoolVar(&galleryFilter.LeftoverOnly, "leftover", false, "only leftover-safe recipes")
	f.StringSliceVar(&galleryFilter.Meals, "meal", nil, "meal tag, any of")
	f.StringSliceVar(&galleryFilter.Types, "type", nil, "dish type tag, any of")
	f.StringSliceVar(&galleryFilter.Cuisines, "cuisine", nil, "cuisine tag, any of")
	f.Float64Var(&galleryFilter.MaxCost, "max-cost", 0, "maximum estimated cost")
	f.BoolVar(&galleryIngredients, "ingredients", false, "list known ingredient names instead")
}
