package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskhub/pkg/auth"
	"github.com/harrisonrobin/taskhub/pkg/google"
)

func newAuthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Calendar",
		Long: `Discards any saved token and runs the OAuth flow again. credentials.json must be
present in ~/.config/taskhub.`,
		Annotations: map[string]string{skipValidation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			xdgConfigBase, err := auth.GetXdgHome()
			if err != nil {
				return fmt.Errorf("could not find configuration directory: %w", err)
			}

			tokenFile := filepath.Join(xdgConfigBase, auth.TokenFile)
			if err := os.Remove(tokenFile); err == nil {
				a.logger.Info("removed existing token", "path", tokenFile)
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("could not delete token file '%s': %w. Please delete it manually", tokenFile, err)
			}

			if _, err := auth.GetClient(cmd.Context(), google.Scopes, a.logger); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Authentication successful! Token saved to %s\n", tokenFile)
			return nil
		},
	}
}
