// Command issue-token mints an access token for the repair-desk API. The
// service only verifies tokens; this covers service accounts and local
// development.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/lorrc/repair-desk/internal/auth"
	"github.com/lorrc/repair-desk/internal/core/domain"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "issue-token:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("issue-token", pflag.ContinueOnError)
	userID := flags.StringP("user", "u", "", "user or technician id carried in the token")
	role := flags.StringP("role", "r", string(domain.RoleUser), "role: admin, technician or user")
	ttl := flags.Duration("ttl", time.Hour, "token lifetime")
	secret := flags.String("secret", "", "signing secret (defaults to $JWT_SECRET)")

	if err := flags.Parse(args); err != nil {
		return err
	}

	if *secret == "" {
		*secret = os.Getenv("JWT_SECRET")
	}
	if *secret == "" {
		return fmt.Errorf("a signing secret is required (--secret or JWT_SECRET)")
	}
	if *userID == "" {
		return fmt.Errorf("--user is required")
	}

	token, err := auth.NewTokenManager(*secret, *ttl).GenerateToken(*userID, domain.Role(*role))
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
