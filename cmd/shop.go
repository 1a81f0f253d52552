package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"recipe_site/internal/app"
	"recipe_site/internal/shopping"
)

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "Show and edit the shopping list",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		l, err := a.ShoppingList(cmd.Context())
		if err != nil {
			return err
		}
		printList(cmd, l)
		return nil
	}),
}

func printList(cmd *cobra.Command, l shopping.List) {
	out := cmd.OutOrStdout()
	if len(l.Items) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("nothing to buy"))
		return
	}
	for i, it := range l.Items {
		if it.Checked {
			fmt.Fprintf(out, "%2d [x] %s\n", i, checkedStyle.Render(it.Text))
			continue
		}
		fmt.Fprintf(out, "%2d [ ] %s\n", i, it.Text)
	}
	fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%d remaining", l.Remaining())))
}

// listOp parses an item index and applies op, then prints the list.
func listOp(op func(cmd *cobra.Command, a *app.App, i int, rest []string) (shopping.List, error)) func(*cobra.Command, []string) error {
	return withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		i, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("item %q: %w", args[0], err)
		}
		l, err := op(cmd, a, i, args[1:])
		if err != nil {
			return err
		}
		printList(cmd, l)
		return nil
	})
}

var shopUncheck bool

var shopCheckCmd = &cobra.Command{
	Use:   "check <item>",
	Short: "Check off an item (--undo to uncheck)",
	Args:  cobra.ExactArgs(1),
	RunE: listOp(func(cmd *cobra.Command, a *app.App, i int, _ []string) (shopping.List, error) {
		return a.CheckItem(cmd.Context(), i, !shopUncheck)
	}),
}

var shopUpCmd = &cobra.Command{
	Use:   "up <item>",
	Short: "Move an item up",
	Args:  cobra.ExactArgs(1),
	RunE: listOp(func(cmd *cobra.Command, a *app.App, i int, _ []string) (shopping.List, error) {
		return a.MoveItemUp(cmd.Context(), i)
	}),
}

var shopDownCmd = &cobra.Command{
	Use:   "down <item>",
	Short: "Move an item down",
	Args:  cobra.ExactArgs(1),
	RunE: listOp(func(cmd *cobra.Command, a *app.App, i int, _ []string) (shopping.List, error) {
		return a.MoveItemDown(cmd.Context(), i)
	}),
}

var shopEditCmd = &cobra.Command{
	Use:   "edit <item> [text...]",
	Short: "Replace an item's text; no text restores the computed line",
	Args:  cobra.MinimumNArgs(1),
	RunE: listOp(func(cmd *cobra.Command, a *app.App, i int, rest []string) (shopping.List, error) {
		return a.EditItem(cmd.Context(), i, strings.Join(rest, " "))
	}),
}

func init() {
	shopCheckCmd.Flags().BoolVar(&shopUncheck, "undo", false, "uncheck instead")
	shopCmd.AddCommand(shopCheckCmd, shopUpCmd, shopDownCmd, shopEditCmd)
}
