package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"tokgrab/pkg/config"
	"tokgrab/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage tokgrab configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (TOKGRAB_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.tokgrab.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values

Sensitive values like the session cookie will be masked for security.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Required fields
  - Value types and ranges
  - Path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".tokgrab.yaml"
	}

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# tokgrab Configuration File
#
# This file contains all available configuration options.
# You can also use environment variables prefixed with TOKGRAB_
# For example: TOKGRAB_SESSION_COOKIE, TOKGRAB_STALL_TIMEOUT

# Browser settings for the rendering surface
browser:
  # Run the browser without a visible window
  headless: true

  # User agent string (optional)
  # Leave empty to use default
  user_agent: ""

  # Navigation timeout for opening the feed
  navigation_timeout: 30s

  # Retry attempts for the initial navigation
  navigation_retries: 3

  # Session cookie for logged-in feeds (prefer 'tokgrab auth login')
  session_cookie: ""

# Scroll driver policy
scroll:
  # How long to wait between content growth checks
  poll_interval: 500ms

  # Pause after growth before the next scroll iteration
  settle_delay: 1s

  # How long to wait for growth before ending the session
  stall_timeout: 10s

  # Scroll command re-issues allowed within one stall window
  max_retries: 3

  # Hard safety ceiling on scroll iterations
  max_iterations: 2000

  # Sleep overrun tolerance before a throttling warning is logged
  throttle_slack: 200ms

# Link harvesting rules
harvest:
  # Domain fragment that precedes the owner segment in URLs
  host_marker: "tiktok.com"

  # Prefix of the owner designator path segment
  owner_sigil: "@"

  # Path segments marking content kinds
  video_segment: "video"
  photo_segment: "photo"

# Export settings
export:
  # Output directory for exported artifacts
  directory: "."

  # Filename suffix: <owner>_<year>_<month>_<day>_<suffix>.txt
  suffix: "links"

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional)
  # Leave empty to log to stdout only
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file to match your feed")
	fmt.Println("2. Run 'tokgrab config validate' to check the configuration")
	fmt.Println("3. Start harvesting with 'tokgrab harvest <feed-url>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Create a sanitized version for display
	displayCfg := *cfg

	if displayCfg.Browser.SessionCookie != "" {
		if len(displayCfg.Browser.SessionCookie) > 8 {
			displayCfg.Browser.SessionCookie = displayCfg.Browser.SessionCookie[:4] + "..." + displayCfg.Browser.SessionCookie[len(displayCfg.Browser.SessionCookie)-4:]
		} else {
			displayCfg.Browser.SessionCookie = "***"
		}
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (TOKGRAB_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile == "" {
		// Try to find config file in common locations
		possiblePaths := []string{
			".tokgrab.yaml",
			".tokgrab.yml",
			filepath.Join(os.Getenv("HOME"), ".tokgrab.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "tokgrab", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	warnings := []string{}
	errors := []string{}

	if cfg.Browser.SessionCookie == "" {
		warnings = append(warnings, "No session cookie configured; only public feeds will render")
	}

	// Check paths
	if cfg.Export.Directory != "" {
		if err := os.MkdirAll(cfg.Export.Directory, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create export directory: %v", err))
		}
	}

	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	// Check value ranges
	if cfg.Scroll.MaxRetries > 10 {
		warnings = append(warnings, "max_retries above 10 mostly burns time on dead feeds")
	}
	if cfg.Scroll.StallTimeout < cfg.Scroll.PollInterval*2 {
		warnings = append(warnings, "stall_timeout allows very few growth checks per window")
	}

	if len(errors) > 0 {
		ui.PrintError("Configuration has errors:", "")
		for _, err := range errors {
			fmt.Printf("  - %s\n", err)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:", "")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Export directory: %s\n", cfg.Export.Directory)
	fmt.Printf("  Poll interval: %s\n", cfg.Scroll.PollInterval)
	fmt.Printf("  Stall timeout: %s\n", cfg.Scroll.StallTimeout)
	fmt.Printf("  Max iterations: %d\n", cfg.Scroll.MaxIterations)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
