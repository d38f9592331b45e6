package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Gsus07/tichat-push/cmd/cli/authentication"
	"github.com/Gsus07/tichat-push/internal/push"
)

// pushCmd represents the push command
var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Manage the push subscription for this machine",
	Long: `Drive the push subscription lifecycle against the notification API
using a simulated browser platform. The created subscription is kept in the
OS keyring so a later invocation can unsubscribe it.`,
}

var pushSubscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Create a subscription and register it with the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager := newManager()
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		if !manager.RegisterAgent(ctx) {
			return fmt.Errorf("✗ could not register the delivery agent")
		}
		if !manager.RequestPermission(ctx) {
			return fmt.Errorf("✗ notification permission was not granted")
		}
		if !manager.Subscribe(ctx) {
			return fmt.Errorf("✗ subscribe failed: the API did not accept the token (are you logged in?)")
		}

		sub := cliPlatform.Subscription()
		if sub == nil {
			return fmt.Errorf("✗ platform lost the subscription")
		}
		if err := authentication.StoreSubscription(*sub); err != nil {
			fmt.Println("Warning: could not save subscription locally:", err)
		}

		fmt.Println("✓ Subscribed")
		fmt.Println("  endpoint:", sub.Endpoint)
		return nil
	},
}

var pushUnsubscribeCmd = &cobra.Command{
	Use:   "unsubscribe",
	Short: "Delete the subscription stored by a previous subscribe",
	RunE: func(cmd *cobra.Command, args []string) error {
		sub, err := authentication.GetSubscription()
		if err != nil {
			return fmt.Errorf("no saved subscription on this machine: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		if err := newStoreClient().RemoveToken(ctx, *sub); err != nil {
			return fmt.Errorf("✗ unsubscribe failed: %w", err)
		}
		if err := authentication.DeleteSubscription(); err != nil {
			fmt.Println("Warning: could not remove saved subscription:", err)
		}

		fmt.Println("✓ Unsubscribed")
		return nil
	},
}

var pushStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the local subscription state",
	RunE: func(cmd *cobra.Command, args []string) error {
		if sub, err := authentication.GetSubscription(); err == nil {
			fmt.Println("Subscription: registered")
			fmt.Println("  endpoint:", sub.Endpoint)
		} else {
			fmt.Println("Subscription: none")
		}
		return nil
	},
}

var pushTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Render a local test notification",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager := newManager()
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		if !manager.RegisterAgent(ctx) || !manager.RequestPermission(ctx) {
			return fmt.Errorf("✗ test notification unavailable")
		}
		if !manager.TestNotification(ctx) {
			return fmt.Errorf("✗ test notification failed")
		}

		for _, shown := range cliPlatform.Shown() {
			fmt.Printf("🔔 %s — %s\n", shown.Title, shown.Body)
		}
		return nil
	},
}

// cliPlatform lives for one invocation; the keyring carries state between
// invocations.
var cliPlatform *push.LocalPlatform

func newManager() *push.Manager {
	cliPlatform = push.NewLocalPlatform()
	appKey, _ := pushCmd.PersistentFlags().GetString("app-server-key")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return push.NewManager(cliPlatform, newStoreClient(), appKey, logger)
}

func init() {
	pushCmd.PersistentFlags().String("app-server-key", "tichat-dev-application-server-key", "application server key used for subscribe calls")

	pushCmd.AddCommand(pushSubscribeCmd)
	pushCmd.AddCommand(pushUnsubscribeCmd)
	pushCmd.AddCommand(pushStatusCmd)
	pushCmd.AddCommand(pushTestCmd)
	rootCmd.AddCommand(pushCmd)
}
