package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"tokgrab/pkg/auth"
	"tokgrab/pkg/config"
	"tokgrab/pkg/logger"
	"tokgrab/pkg/pipeline"
	"tokgrab/pkg/surface"
	"tokgrab/pkg/ui"
)

var (
	// Harvest command flags
	outputDir     string
	exportSuffix  string
	headless      bool
	maxIterations int
	stallTimeout  time.Duration
	sessionCookie string
	accountName   string
	snapshotFile  string
)

// harvestCmd represents the harvest command
var harvestCmd = &cobra.Command{
	Use:   "harvest <feed-url>",
	Short: "Scroll a feed to exhaustion and export the dominant owner's links",
	Long: `Scroll an infinite-scroll feed until no more content loads, collect
every rendered content link, attribute them to the single dominant
owner by majority vote, and write the deduplicated list to a
date-stamped text file.

Logged-in feeds need a session cookie, configured through:
  - Stored sessions (use 'tokgrab auth login' to store)
  - The TOKGRAB_SESSION_COOKIE environment variable
  - Configuration file`,
	Example: `  # Harvest a feed with default settings
  tokgrab harvest https://www.tiktok.com/@someuser

  # Export to a specific directory with a custom suffix
  tokgrab harvest https://www.tiktok.com/@someuser --output ./exports --suffix favs

  # Use a specific stored account
  tokgrab harvest https://www.tiktok.com/@someuser --account myaccount

  # Watch the browser instead of running headless
  tokgrab harvest https://www.tiktok.com/@someuser --headless=false

  # Harvest an offline HTML snapshot (no browser needed)
  tokgrab harvest https://www.tiktok.com --snapshot feed.html`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runHarvest(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(harvestCmd)

	harvestCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for exported artifacts (default: current directory)")
	harvestCmd.Flags().StringVar(&exportSuffix, "suffix", "", "filename suffix for exported artifacts")
	harvestCmd.Flags().BoolVar(&headless, "headless", true, "run the browser headless")
	harvestCmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "hard ceiling on scroll iterations")
	harvestCmd.Flags().DurationVar(&stallTimeout, "stall-timeout", 0, "how long to wait for content growth before ending the session")
	harvestCmd.Flags().StringVar(&sessionCookie, "session-cookie", "", "browser session cookie value")
	harvestCmd.Flags().StringVarP(&accountName, "account", "a", "", "use specific stored account")
	harvestCmd.Flags().StringVar(&snapshotFile, "snapshot", "", "harvest a saved HTML file instead of a live feed")
}

func runHarvest(cmd *cobra.Command, args []string) {
	feedURL := strings.TrimSpace(args[0])
	ui.PrintInfo("Target Feed", feedURL)

	// Build flags map from command line
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["export-dir"] = outputDir
	}
	if exportSuffix != "" {
		flags["export-suffix"] = exportSuffix
	}
	if cmd.Flags().Changed("headless") {
		flags["headless"] = headless
	}
	if maxIterations > 0 {
		flags["max-iterations"] = maxIterations
	}
	if stallTimeout > 0 {
		flags["stall-timeout"] = stallTimeout
	}
	if sessionCookie != "" {
		flags["session-cookie"] = sessionCookie
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	// Load configuration
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	log := logger.GetLogger()

	// A snapshot run needs no session; live runs resolve one unless the
	// cookie is already set through flags, env, or config
	if snapshotFile == "" && cfg.Browser.SessionCookie == "" {
		resolveSession(cfg)
	}

	logger.LogRunStart(feedURL, cfg.Browser.Headless)

	// Cancel the run cleanly on Ctrl+C
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var feed surface.Surface
	if snapshotFile != "" {
		snap, err := surface.NewSnapshotFromFile(snapshotFile, feedURL)
		if err != nil {
			ui.PrintError("Failed to load snapshot", err.Error())
			os.Exit(1)
		}
		feed = snap
	} else {
		browser := surface.NewBrowser(cfg.Browser, log)
		defer browser.Close()

		if err := browser.Open(ctx, feedURL); err != nil {
			log.WithError(err).Error("failed to open feed")
			ui.PrintError("Failed to open feed", err.Error())
			os.Exit(1)
		}
		feed = browser
	}

	p, err := pipeline.New(feed, cfg, log)
	if err != nil {
		ui.PrintError("Failed to initialize pipeline", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("[SCROLLING FEED TO EXHAUSTION]")
	progress := ui.NewScrollProgress()
	progress.Start(feedURL)

	summary, err := p.Run(ctx)
	if err != nil {
		progress.Fail(err)
		log.WithError(err).Error("harvest run failed")
		os.Exit(1)
	}
	progress.Stop(string(summary.Outcome), summary.Iterations)

	logger.LogRunComplete(summary.RunID, summary.Owner, summary.ArtifactPath, summary.URLs)

	ui.PrintInfo("Dominant Owner", summary.Owner)
	ui.PrintInfo("Links Exported", fmt.Sprintf("%d of %d candidates", summary.URLs, summary.Candidates))
	ui.PrintInfo("Artifact", summary.ArtifactPath)
	ui.PrintSuccess("[HARVEST COMPLETED SUCCESSFULLY]")
}

// resolveSession fills the browser session cookie from stored sessions
func resolveSession(cfg *config.Config) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintWarning("Session manager unavailable, continuing anonymously", err.Error())
		return
	}

	var session *auth.Session
	if accountName != "" {
		session, err = manager.Retrieve(accountName)
		if err != nil {
			ui.PrintError("Account not found", accountName)
			ui.PrintInfo("Available accounts", "Use 'tokgrab auth list' to see stored accounts")
			os.Exit(1)
		}
	} else {
		session, err = manager.RetrieveDefault()
		if err != nil {
			// Anonymous harvesting still works for public feeds
			ui.PrintWarning("No stored session found, continuing anonymously", "")
			return
		}
	}

	cfg.Browser.SessionCookie = session.SessionCookie
	if session.UserAgent != "" {
		cfg.Browser.UserAgent = session.UserAgent
	}
	logger.GetLogger().WithField("account", session.Name).Info("Using stored session")
	ui.PrintInfo("Using account", session.Name)
}
