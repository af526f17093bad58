package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newTokenCmd() *cobra.Command {
	var (
		subject string
		email   string
		groups  []string
		secret  string
		expires time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generate a dev-mode JWT for the workspace API",
		Long:  "Generate an HS256 JWT for development and testing. When --secret is omitted, the signing secret is read interactively without echo.",
		Example: `  # Token for a user in two groups, prompting for the secret
  lakeboard token --sub alice@example.com --email alice@example.com --group analysts --group emea

  # Non-interactive, custom expiry
  lakeboard token --sub bob --secret dev-secret --expires 48h`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				s, err := promptSecret()
				if err != nil {
					return err
				}
				secret = s
			}

			now := time.Now()
			claims := jwt.MapClaims{
				"sub": subject,
				"iat": now.Unix(),
				"exp": now.Add(expires).Unix(),
			}
			if email != "" {
				claims["email"] = email
			}
			if len(groups) > 0 {
				claims["groups"] = groups
			}

			token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
			signed, err := token.SignedString([]byte(secret))
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "sub", "", "Viewer ID (JWT sub claim)")
	cmd.Flags().StringVar(&email, "email", "", "Viewer email claim")
	cmd.Flags().StringArrayVar(&groups, "group", nil, "Group membership claim (repeatable)")
	cmd.Flags().StringVar(&secret, "secret", "", "JWT signing secret (HS256); prompted if omitted")
	cmd.Flags().DurationVar(&expires, "expires", 24*time.Hour, "Token expiry duration")
	_ = cmd.MarkFlagRequired("sub")

	return cmd
}

func promptSecret() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("--secret not set and stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, "JWT secret: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "", fmt.Errorf("empty secret")
	}
	return s, nil
}
