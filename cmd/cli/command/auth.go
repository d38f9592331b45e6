package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Gsus07/tichat-push/cmd/cli/authentication"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the bearer token used against the notification API",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			return fmt.Errorf("--token is required")
		}
		if err := authentication.StoreToken(token); err != nil {
			return fmt.Errorf("could not store token: %w", err)
		}
		fmt.Println("Token stored.")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored bearer token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authentication.DeleteToken(); err != nil {
			return fmt.Errorf("no stored token: %w", err)
		}
		fmt.Println("Token removed.")
		return nil
	},
}

func init() {
	loginCmd.Flags().String("token", "", "JWT issued by the TiChat platform")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
