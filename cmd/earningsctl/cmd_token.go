package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tourbook/service-earnings/internal/common/auth"
	"github.com/tourbook/service-earnings/internal/config"
)

var (
	tokenUserID  string
	tokenRole    string
	tokenRefresh bool
)

// tokenCmd signs a bearer token with the service's JWT settings.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for local testing",
	Long: `Issue a token signed with JWT_SECRET for the given user and role.

Access tokens live for JWT_ACCESS_TTL, refresh tokens (--refresh) for
JWT_REFRESH_TTL.`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user", "", "user ID carried in the token")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(auth.RoleGuide), "role carried in the token")
	tokenCmd.Flags().BoolVar(&tokenRefresh, "refresh", false, "issue a refresh token")
	_ = tokenCmd.MarkFlagRequired("user")
}

type issuedToken struct {
	Token     string    `json:"token"`
	Kind      string    `json:"kind"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if cfg.JWTConfig.Secret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}

	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.AccessTokenTTL, cfg.JWTConfig.RefreshTokenTTL)
	role := auth.Role(tokenRole)

	kind, ttl := "access", cfg.JWTConfig.AccessTokenTTL
	issue := jwtManager.GenerateAccessToken
	if tokenRefresh {
		kind, ttl = "refresh", cfg.JWTConfig.RefreshTokenTTL
		issue = jwtManager.GenerateRefreshToken
	}

	token, err := issue(tokenUserID, role)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), issuedToken{
		Token:     token,
		Kind:      kind,
		UserID:    tokenUserID,
		Role:      tokenRole,
		ExpiresAt: time.Now().UTC().Add(ttl).Truncate(time.Second),
	})
}
