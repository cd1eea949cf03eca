package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"tokgrab/pkg/auth"
	"tokgrab/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored session cookies",
	Long: `Manage stored session cookies securely.

Sessions are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (TOKGRAB_SESSION_COOKIE)

Never share your session cookie or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [account]",
	Short: "Store a session cookie securely",
	Long: `Store a session cookie securely in the system keychain or encrypted file.

You will be prompted for:
  - Account name (if not provided)
  - Session cookie (the sessionid cookie value)
  - User Agent (optional, press Enter for default)

To get the cookie value:
1. Log into the feed in your browser
2. Open Developer Tools (F12)
3. Go to Application/Storage > Cookies
4. Find and copy the sessionid value`,
	Example: `  # Interactive login
  tokgrab auth login

  # Login with account name
  tokgrab auth login myaccount`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [account]",
	Short: "Remove a stored session",
	Long: `Remove a stored session.

If no account name is provided, you will be shown a list of stored
accounts to choose from. You can also remove all accounts at once.`,
	Example: `  # Interactive logout
  tokgrab auth logout

  # Logout specific account
  tokgrab auth logout myaccount`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored accounts with sanitized session information.`,
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
		ui.PrintError("Failed to initialize session manager", err.Error())
		os.Exit(1)
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	// Show extraction guide first
	auth.ShowCookieExtractionGuide()

	fmt.Print("Ready to enter your cookie? (Y/n): ")
	ready, _ := reader.ReadString('\n')
	if strings.ToLower(strings.TrimSpace(ready)) == "n" {
		fmt.Println("\nRun 'tokgrab auth login' when you're ready.")
		return
	}

	fmt.Println()

	if name == "" {
		fmt.Print("📱 Account name: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			ui.PrintError("Failed to read account name", err.Error())
			os.Exit(1)
		}
		name = strings.TrimSpace(input)
	}

	if name == "" {
		ui.PrintError("Account name is required", "")
		os.Exit(1)
	}

	// Check if account already exists
	if existing, _ := manager.Retrieve(name); existing != nil {
		fmt.Printf("\n⚠️  Account '%s' already exists. Update session? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Println("\n🔐 Enter your cookie value (it will be hidden as you type):")
	fmt.Println()

	// Get session cookie with validation
	var cookie string
	for {
		fmt.Printf("sessionid cookie value: ")
		cookie, err = readPassword()
		if err != nil {
			ui.PrintError("Failed to read session cookie", err.Error())
			os.Exit(1)
		}

		// Basic validation
		if len(cookie) < 20 {
			fmt.Println("\n❌ That doesn't look like a valid sessionid.")
			fmt.Println("   It should be a long opaque string.")
			fmt.Print("\nTry again? (Y/n): ")
			retry, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(retry)) == "n" {
				os.Exit(1)
			}
			continue
		}
		break
	}

	// Optional: Get user agent
	fmt.Print("\n\n🌐 User Agent (press Enter to use default): ")
	userAgent, _ := reader.ReadString('\n')
	userAgent = strings.TrimSpace(userAgent)

	// Show what we're about to do
	fmt.Println("\n📋 Summary:")
	fmt.Printf("   Account: %s\n", name)
	fmt.Printf("   Session Cookie: %s...%s (hidden)\n", cookie[:8], cookie[len(cookie)-4:])
	if userAgent != "" {
		fmt.Printf("   User Agent: %s\n", userAgent)
	}

	session := &auth.Session{
		Name:          name,
		SessionCookie: cookie,
		UserAgent:     userAgent,
		LastModified:  time.Now(),
	}

	fmt.Println("\n💾 Storing session securely...")
	if err := manager.Store(session); err != nil {
		ui.PrintError("Failed to store session", err.Error())
		os.Exit(1)
	}

	// Set as default if it's the first account
	sessions, _ := manager.List()
	if len(sessions) == 1 {
		fmt.Printf("✅ Set '%s' as default account\n", name)
	}

	fmt.Println("\n🎉 Session stored successfully!")
	ui.PrintSuccess(fmt.Sprintf("Account saved: %s", name))

	fmt.Println("\n📖 Quick Start Guide:")
	fmt.Println("   Harvest links from any feed:")
	fmt.Printf("   $ tokgrab harvest <feed-url>\n")
	fmt.Println("\n   Use specific account:")
	fmt.Printf("   $ tokgrab harvest <feed-url> --account %s\n", name)
	fmt.Println("\n   Show more options:")
	fmt.Printf("   $ tokgrab harvest --help\n")
	fmt.Println("\n⚠️  Never share your session cookie or config files!")
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize session manager", err.Error())
		os.Exit(1)
	}

	if len(args) == 0 {
		sessions, err := manager.List()
		if err != nil || len(sessions) == 0 {
			ui.PrintError("No stored accounts found", "")
			return
		}

		if len(sessions) == 1 {
			// Only one account, confirm deletion
			session := sessions[0]
			reader := bufio.NewReader(os.Stdin)
			fmt.Printf("Remove account '%s'? (y/N): ", session.Name)
			input, _ := reader.ReadString('\n')
			if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
				return
			}

			if err := manager.Delete(session.Name); err != nil {
				ui.PrintError("Failed to remove account", err.Error())
				os.Exit(1)
			}
			ui.PrintSuccess("Account removed: " + session.Name)
			return
		}

		// Multiple accounts, show menu
		fmt.Println("Select account to remove:")
		for i, session := range sessions {
			fmt.Printf("  %d. %s\n", i+1, session.Name)
		}
		fmt.Printf("  %d. Remove all accounts\n", len(sessions)+1)
		fmt.Printf("  0. Cancel\n\n")

		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Choice: ")
		input, _ := reader.ReadString('\n')

		var choice int
		fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)

		if choice == 0 {
			return
		} else if choice == len(sessions)+1 {
			fmt.Print("Remove ALL accounts? This cannot be undone! (yes/N): ")
			confirm, _ := reader.ReadString('\n')
			if strings.TrimSpace(confirm) != "yes" {
				return
			}

			if err := manager.DeleteAll(); err != nil {
				ui.PrintError("Failed to remove all accounts", err.Error())
				os.Exit(1)
			}
			ui.PrintSuccess("All accounts removed")
			return
		} else if choice > 0 && choice <= len(sessions) {
			session := sessions[choice-1]
			if err := manager.Delete(session.Name); err != nil {
				ui.PrintError("Failed to remove account", err.Error())
				os.Exit(1)
			}
			ui.PrintSuccess("Account removed: " + session.Name)
			return
		} else {
			ui.PrintError("Invalid choice", "")
			os.Exit(1)
		}
	}

	// Account name provided as argument
	name := args[0]
	if err := manager.Delete(name); err != nil {
		ui.PrintError("Failed to remove account", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Account removed: " + name)
}

func runList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize session manager", err.Error())
		os.Exit(1)
	}

	sessions, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list accounts", err.Error())
		os.Exit(1)
	}

	if len(sessions) == 0 {
		ui.PrintInfo("No stored accounts", "Use 'tokgrab auth login' to add an account")
		return
	}

	ui.PrintHighlight("Stored Accounts")
	fmt.Println()

	for i, session := range sessions {
		sanitized := auth.SanitizeSession(session)
		fmt.Printf("%d. Account: %s\n", i+1, sanitized.Name)
		fmt.Printf("   Session Cookie: %s\n", sanitized.SessionCookie)
		if sanitized.UserAgent != "" {
			fmt.Printf("   User Agent: %s\n", sanitized.UserAgent)
		}
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
}

// readPassword reads a password from stdin without echoing
func readPassword() (string, error) {
	// Try to read without echo
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println() // New line after password
		if err == nil {
			return string(password), nil
		}
	}

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
