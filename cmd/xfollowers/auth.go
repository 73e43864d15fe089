package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"xfollowers/pkg/auth"
	"xfollowers/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Twitter API credentials",
	Long: `Manage the stored Twitter API bearer token.

Tokens are stored in the system keychain when available. The
XFOLLOWERS_BEARER_TOKEN environment variable works as a read-only
fallback. Never share your token or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Store a bearer token securely",
	Long: `Store a Twitter API bearer token in the system keychain.

You will be prompted for the token; input is not echoed. Get a bearer
token from the Twitter developer portal for your app.`,
	Example: `  # Store the default token
  xfollowers auth login

  # Store a token under a name
  xfollowers auth login myapp`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [name]",
	Short: "Remove a stored bearer token",
	Args:  cobra.MaximumNArgs(1),
	Run:   runLogout,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status [name]",
	Short: "Check whether a bearer token is available",
	Args:  cobra.MaximumNArgs(1),
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
}

func accountNameArg(args []string) string {
	if len(args) > 0 {
		return strings.TrimSpace(args[0])
	}
	return auth.DefaultAccountName
}

func runLogin(cmd *cobra.Command, args []string) {
	name := accountNameArg(args)

	fmt.Printf("Bearer token for %q (input hidden): ", name)
	tokenBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		// Fall back to plain stdin when not attached to a terminal
		reader := bufio.NewReader(os.Stdin)
		line, readErr := reader.ReadString('\n')
		if readErr != nil {
			ui.PrintError("Failed to read token", readErr.Error())
			os.Exit(1)
		}
		tokenBytes = []byte(strings.TrimSpace(line))
	}

	token := strings.TrimSpace(string(tokenBytes))
	if token == "" {
		ui.PrintError("Empty token, nothing stored")
		os.Exit(1)
	}

	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	if err := manager.Store(&auth.Account{Name: name, BearerToken: token}); err != nil {
		ui.PrintError("Failed to store token", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Token stored for %q", name))
}

func runLogout(cmd *cobra.Command, args []string) {
	name := accountNameArg(args)

	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	if err := manager.Delete(name); err != nil {
		ui.PrintError("Failed to remove token", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Token removed for %q", name))
}

func runStatus(cmd *cobra.Command, args []string) {
	name := accountNameArg(args)

	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	account, err := manager.Retrieve(name)
	if err != nil {
		ui.PrintWarning("No token stored", name)
		os.Exit(1)
	}

	masked := account.BearerToken
	if len(masked) > 8 {
		masked = masked[:4] + strings.Repeat("*", len(masked)-8) + masked[len(masked)-4:]
	}
	ui.PrintInfo("Account", account.Name)
	ui.PrintInfo("Token", masked)
}
