package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"canvasgrab/pkg/auth"
	"canvasgrab/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored Canvas API tokens",
	Long: `Manage Canvas API tokens securely.

Tokens are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)

Never share your token or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [domain]",
	Short: "Store a Canvas API token securely",
	Long: `Store a Canvas API token for a domain in the system keychain or an
encrypted file.

To create a token:
1. Log into Canvas in your browser
2. Go to Account > Settings
3. Under "Approved Integrations" click "New Access Token"
4. Copy the generated token`,
	Example: `  # Interactive login
  canvasgrab auth login

  # Login for a specific domain
  canvasgrab auth login canvas.school.edu`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout <domain>",
	Short: "Remove a stored token",
	Long:  `Remove the stored Canvas API token for a domain.`,
	Example: `  # Remove the token for one domain
  canvasgrab auth logout canvas.school.edu`,
	Args: cobra.ExactArgs(1),
	Run:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored Canvas domains",
	Long:  `List all Canvas domains with stored tokens. Tokens are shown masked.`,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError(0, "failed to initialize credential manager: "+err.Error())
		os.Exit(1)
	}

	var domain string
	if len(args) > 0 {
		domain = strings.TrimSpace(args[0])
	}

	reader := bufio.NewReader(os.Stdin)

	if domain == "" {
		fmt.Print("Canvas domain (e.g. canvas.school.edu): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			ui.PrintError(0, "failed to read domain: "+err.Error())
			os.Exit(1)
		}
		domain = strings.TrimSpace(input)
	}
	if domain == "" {
		ui.PrintError(0, "a domain is required")
		os.Exit(1)
	}

	if existing, _ := manager.Retrieve(domain); existing != nil {
		fmt.Printf("A token for %s already exists. Replace it? (y/N): ", domain)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Print("API token (input is hidden): ")
	token, err := readPassword()
	if err != nil {
		ui.PrintError(0, "failed to read token: "+err.Error())
		os.Exit(1)
	}
	if token == "" {
		ui.PrintError(0, "a token is required")
		os.Exit(1)
	}

	account := &auth.Account{Domain: domain, Token: token}
	if err := manager.Store(account); err != nil {
		ui.PrintError(0, "failed to store token: "+err.Error())
		os.Exit(1)
	}

	ui.PrintNew(0, "Token stored for "+domain)
	fmt.Println("You can now run: canvasgrab fetch " + domain)
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError(0, "failed to initialize credential manager: "+err.Error())
		os.Exit(1)
	}

	domain := strings.TrimSpace(args[0])
	if err := manager.Delete(domain); err != nil {
		ui.PrintError(0, err.Error())
		os.Exit(1)
	}

	ui.PrintNew(0, "Token removed for "+domain)
}

func runList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError(0, "failed to initialize credential manager: "+err.Error())
		os.Exit(1)
	}

	accounts, err := manager.List()
	if err != nil {
		ui.PrintError(0, "failed to list accounts: "+err.Error())
		os.Exit(1)
	}
	if len(accounts) == 0 {
		fmt.Println("No stored tokens. Run 'canvasgrab auth login' to add one.")
		return
	}

	for _, account := range accounts {
		masked := auth.SanitizeAccount(account)
		ui.PrintInfo(masked.Domain, fmt.Sprintf("%s (stored %s)", masked.Token, masked.LastModified.Format("2006-01-02")))
	}
}

// readPassword reads a line without echoing it to the terminal
func readPassword() (string, error) {
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
