package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"recipe_site/internal/app"
)

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "List saved recipes",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		out := cmd.OutOrStdout()
		list := a.Saved(cmd.Context())
		if len(list) == 0 {
			fmt.Fprintln(out, mutedStyle.Render("no saved recipes"))
		}
		for _, r := range list {
			fmt.Fprintf(out, "%s %s\n", titleStyle.Render(r.Title), mutedStyle.Render(r.Link))
		}
		return nil
	}),
}

var savedAddCmd = &cobra.Command{
	Use:   "add <link>",
	Short: "Save a recipe from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		added, err := a.SaveLink(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !added {
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("already saved, refreshed"))
		}
		return nil
	}),
}

var savedRemoveCmd = &cobra.Command{
	Use:   "remove <link>",
	Short: "Forget a saved recipe",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		return a.Unsave(cmd.Context(), args[0])
	}),
}

func init() {
	savedCmd.AddCommand(savedAddCmd, savedRemoveCmd)
}
