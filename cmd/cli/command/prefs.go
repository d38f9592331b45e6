package command

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Gsus07/tichat-push/internal/push"
)

// prefsCmd represents the prefs command
var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Inspect and save notification preferences",
}

var prefsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the stored preference matrix",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		prefs, err := newStoreClient().Preferences(ctx)
		if err != nil {
			return fmt.Errorf("could not load preferences: %w", err)
		}
		printPrefs(prefs)
		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save the preference matrix",
	Long: `Loads the current matrix, applies the given flags and saves the whole
object back. Flags left unset keep their stored value.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		client := newStoreClient()
		prefs, err := client.Preferences(ctx)
		if err != nil {
			return fmt.Errorf("could not load preferences: %w", err)
		}

		applyFlag(cmd, "email", &prefs.EmailNotifications)
		applyFlag(cmd, "push", &prefs.PushNotifications)
		applyFlag(cmd, "new-posts", &prefs.NewPosts)
		applyFlag(cmd, "new-servers", &prefs.NewServers)
		applyFlag(cmd, "new-games", &prefs.NewGames)
		applyFlag(cmd, "follows", &prefs.Follows)

		if err := client.SavePreferences(ctx, prefs); err != nil {
			return fmt.Errorf("✗ saving preferences failed: %w", err)
		}

		fmt.Println("✓ Preferences saved")
		printPrefs(prefs)
		return nil
	},
}

func applyFlag(cmd *cobra.Command, name string, target *bool) {
	if cmd.Flags().Changed(name) {
		value, _ := cmd.Flags().GetBool(name)
		*target = value
	}
}

func printPrefs(prefs push.Preferences) {
	row := func(name string, enabled bool) {
		state := "off"
		if enabled {
			state = "on"
		}
		fmt.Printf("  %-20s %s\n", name, state)
	}
	row("email", prefs.EmailNotifications)
	row("push", prefs.PushNotifications)
	row("new posts", prefs.NewPosts)
	row("new servers", prefs.NewServers)
	row("new games", prefs.NewGames)
	row("follows", prefs.Follows)
}

func init() {
	prefsSetCmd.Flags().Bool("email", false, "email notifications")
	prefsSetCmd.Flags().Bool("push", false, "push notifications")
	prefsSetCmd.Flags().Bool("new-posts", false, "notify on new posts")
	prefsSetCmd.Flags().Bool("new-servers", false, "notify on new servers")
	prefsSetCmd.Flags().Bool("new-games", false, "notify on new games")
	prefsSetCmd.Flags().Bool("follows", false, "notify on new followers")

	prefsCmd.AddCommand(prefsGetCmd)
	prefsCmd.AddCommand(prefsSetCmd)
	rootCmd.AddCommand(prefsCmd)
}
