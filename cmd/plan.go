package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"recipe_site/internal/app"
	mealplan "recipe_site/internal/meal_plan"
)

var (
	planLink     string
	planSearch   string
	planPick     int
	planLeftover bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show and edit the weekly meal plan",
}

var planShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the meal plan",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		p := a.Plan(cmd.Context())
		out := cmd.OutOrStdout()
		for _, d := range p.Days {
			fmt.Fprintln(out, headingStyle.Render(d.Name))
			for _, s := range d.Slots {
				if len(s.Entries) == 0 {
					continue
				}
				fmt.Fprintf(out, "  %s\n", titleStyle.Render(s.Name))
				for i, e := range s.Entries {
					fmt.Fprintf(out, "    %d. %s%s %s\n", i, e.Title, entryNote(e), mutedStyle.Render(e.ID))
				}
			}
		}
		if total := p.TotalCost(); total > 0 {
			fmt.Fprintln(out, "estimated cost:", money(total))
		}
		return nil
	}),
}

func entryNote(e mealplan.Entry) string {
	var notes []string
	if e.Leftover {
		notes = append(notes, "leftover")
	}
	if e.Cost != nil {
		notes = append(notes, money(*e.Cost))
	}
	if len(notes) == 0 {
		return ""
	}
	return mutedStyle.Render(" (" + strings.Join(notes, ", ") + ")")
}

var planAddCmd = &cobra.Command{
	Use:   "add <day> <slot> [text...]",
	Short: "Plan a recipe (--link or --search) or a free-text item",
	Example: `  recipe_site plan add Monday dinner --link /food/recipes/recipe-soup.html
  recipe_site plan add Tuesday lunch --search curry --pick 1
  recipe_site plan add Friday dinner rotisserie chicken`,
	Args: cobra.MinimumNArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		ctx := cmd.Context()
		day, slot, text := args[0], args[1], strings.Join(args[2:], " ")

		var (
			e   mealplan.Entry
			err error
		)
		switch {
		case planLink != "":
			e, err = a.AddRecipe(ctx, day, slot, planLink, planLeftover)
		case planSearch != "":
			e, err = addFromSearch(cmd, a, day, slot)
		default:
			e, err = a.AddCustom(ctx, day, slot, text, planLeftover)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %s to %s %s %s\n", titleStyle.Render(e.Title), day, slot, mutedStyle.Render(e.ID))
		return nil
	}),
}

// addFromSearch drives a slot editor through search, choose and commit.
// A negative --pick lists the results without adding anything.
func addFromSearch(cmd *cobra.Command, a *app.App, day, slot string) (mealplan.Entry, error) {
	ed := mealplan.NewSlotEditor(day, slot)
	if err := ed.Open(); err != nil {
		return mealplan.Entry{}, err
	}
	results, err := ed.Search(a.Catalog(), planSearch)
	if err != nil {
		return mealplan.Entry{}, err
	}
	if planPick < 0 || len(results) == 0 {
		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, mutedStyle.Render("no recipes match "+strconv.Quote(planSearch)))
		}
		for i, r := range results {
			fmt.Fprintf(out, "%d. %s\n", i, r.Title)
		}
		ed.Cancel()
		return mealplan.Entry{}, errors.New("choose a result with --pick")
	}
	if _, err := ed.Choose(planPick); err != nil {
		return mealplan.Entry{}, err
	}
	if err := ed.SetLeftover(planLeftover); err != nil {
		return mealplan.Entry{}, err
	}
	return a.CommitEditor(cmd.Context(), ed)
}

var planRemoveCmd = &cobra.Command{
	Use:   "remove <day> <slot> <id>",
	Short: "Remove an entry",
	Args:  cobra.ExactArgs(3),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		return a.RemoveFromPlan(cmd.Context(), args[0], args[1], args[2])
	}),
}

var planMoveCmd = &cobra.Command{
	Use:   "move <day> <slot> <index> <to-day> <to-slot> [to-index]",
	Short: "Move an entry to another slot or position",
	Args:  cobra.RangeArgs(5, 6),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		from, err := position(args[0], args[1], args[2])
		if err != nil {
			return err
		}
		toIndex := "-1"
		if len(args) == 6 {
			toIndex = args[5]
		}
		to, err := position(args[3], args[4], toIndex)
		if err != nil {
			return err
		}
		if to.Index < 0 {
			to.Index = len(a.Plan(cmd.Context()).Entries(to.Day, to.Slot))
		}
		return a.MoveInPlan(cmd.Context(), from, to)
	}),
}

func position(day, slot, index string) (mealplan.Position, error) {
	i, err := strconv.Atoi(index)
	if err != nil {
		return mealplan.Position{}, fmt.Errorf("index %q: %w", index, err)
	}
	return mealplan.Position{Day: day, Slot: slot, Index: i}, nil
}

var planClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the meal plan",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		return a.ClearPlan(cmd.Context())
	}),
}

func init() {
	planAddCmd.Flags().StringVar(&planLink, "link", "", "recipe page link")
	planAddCmd.Flags().StringVar(&planSearch, "search", "", "search recipe titles")
	planAddCmd.Flags().IntVar(&planPick, "pick", -1, "search result to add")
	planAddCmd.Flags().BoolVar(&planLeftover, "leftover", false, "mark as leftovers")
	planAddCmd.MarkFlagsMutuallyExclusive("link", "search")

	planCmd.AddCommand(planShowCmd, planAddCmd, planRemoveCmd, planMoveCmd, planClearCmd)
}

type appRunE func(cmd *cobra.Command, a *app.App, args []string) error

// withApp opens the store and catalog around fn.
func withApp(fn appRunE) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, _, closeStore, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()
		return fn(cmd, a, args)
	}
}
