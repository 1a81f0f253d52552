package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"recipe_site/internal/auth"
	"recipe_site/internal/cloudsync"
	"recipe_site/internal/mongo"
	"recipe_site/internal/store"
)

var (
	syncToken string
	syncUID   string
	syncTTL   time.Duration
)

// resolveUser returns the user id carried by token, or uid when no token is
// given. A token needs sync.identity_secret.
func resolveUser(token, uid string) (string, error) {
	if token == "" {
		return uid, nil
	}
	if cfg.Sync.IdentitySecret == "" {
		return "", auth.ErrNoSecret
	}
	return auth.NewVerifier(cfg.Sync.IdentitySecret).UserID(token)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sign in and reconcile the local store with the cloud",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		uid, err := resolveUser(syncToken, syncUID)
		if err != nil {
			return err
		}
		if uid == "" {
			return errors.New("sync needs --token or --uid")
		}
		if cfg.Sync.MongoURI == "" {
			return errors.New("sync.mongo_uri is not configured")
		}

		st, err := store.Open(cfg.DBPath, sugar)
		if err != nil {
			return err
		}
		defer st.Close()

		remote, err := mongo.New(ctx, cfg.Sync.MongoURI, cfg.Sync.MongoDB, cfg.Gallery.RedisAddr, sugar)
		if err != nil {
			return err
		}
		defer remote.Close(context.Background())

		if err := cloudsync.New(remote, st, sugar).SignIn(ctx, uid); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("synced "+uid))
		return nil
	},
}

var syncTokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue an identity token for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := auth.Issue(cfg.Sync.IdentitySecret, args[0], syncTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncToken, "token", os.Getenv("RECIPE_SITE_TOKEN"), "identity token")
	syncCmd.Flags().StringVar(&syncUID, "uid", "", "user id, when no token is given")
	syncTokenCmd.Flags().DurationVar(&syncTTL, "ttl", 30*24*time.Hour, "token lifetime")

	syncCmd.AddCommand(syncTokenCmd)
}
