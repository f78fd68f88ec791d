// ABOUTME: Login and logout CLI commands
// ABOUTME: Handles credential prompt, token persistence, and session teardown
package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/rallyhq/rally/api"
)

// LoginCommand authenticates against the backend and saves the token.
func LoginCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Account email (prompted if omitted)")
	_ = fs.Parse(args)

	address := *email
	if address == "" {
		fmt.Print("Email: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
		address = strings.TrimSpace(line)
	}
	if address == "" {
		return fmt.Errorf("email is required")
	}

	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	token, err := app.Client.Login(context.Background(), address, string(passwordBytes))
	if err != nil {
		return fmt.Errorf("login failed: %s", faultText(err))
	}

	if err := api.SaveToken(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Printf("✓ Logged in as %s\n", address)
	fmt.Printf("✓ Token saved to %s\n", api.TokenPath())
	return nil
}

// LogoutCommand clears the saved token and wipes local snapshots, so the
// next login starts from a cold cache.
func LogoutCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	_ = fs.Parse(args)

	if err := api.ClearToken(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}

	if err := app.Engine.Reset(); err != nil {
		return fmt.Errorf("failed to clear local snapshots: %w", err)
	}

	fmt.Println("✓ Logged out and cleared local data")
	return nil
}
