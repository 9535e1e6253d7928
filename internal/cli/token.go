package cli

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/jwt"
	"github.com/spf13/cobra"
)

var (
	tokenUser string
	tokenRole string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token for an operator",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "User ID recorded as corrected_by (required)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(jwt.RoleOperator), "Role: admin, operator, viewer")
	_ = tokenCmd.MarkFlagRequired("user")
}

func runToken(cmd *cobra.Command, args []string) error {
	role, err := jwt.ParseRole(tokenRole)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).GenerateAccessToken(tokenUser, role)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}

	return printJSON(cmd.OutOrStdout(), map[string]any{
		"access_token": token,
		"role":         role,
		"expires_at":   time.Unix(expiresAt, 0).UTC().Format(time.RFC3339),
	})
}
