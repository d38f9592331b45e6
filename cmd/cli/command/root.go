package command

// root.go defines the root command for the tichatctl application.
// set up the global flags and configuration here.

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Gsus07/tichat-push/cmd/cli/authentication"
	"github.com/Gsus07/tichat-push/internal/push/store"
)

var (
	apiURL string // Global flag for API server URL
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tichatctl",
	Short: "tichatctl - TiChat notification API command line interface",
	Long: `tichatctl exercises the TiChat push notification subsystem from the
terminal. It drives the same subscription lifecycle the web client uses:
- Register a push subscription against the notification API
- Inspect and save notification preferences
- Fire a local test notification

Use "tichatctl command -h" to see all available commands.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err) // Print error to standard error
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8080", "notification API server URL")
}

// newStoreClient builds a store client carrying the saved bearer token.
func newStoreClient() *store.Client {
	client := store.NewClient(apiURL)
	if token, err := authentication.GetToken(); err == nil {
		client.SetToken(token)
	}
	return client
}
