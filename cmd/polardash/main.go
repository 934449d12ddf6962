package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/h0rv/polardash/internal/auth"
	"github.com/h0rv/polardash/internal/config"
	"github.com/h0rv/polardash/internal/events"
	"github.com/h0rv/polardash/internal/filters"
	"github.com/h0rv/polardash/internal/gh"
	"github.com/h0rv/polardash/internal/logging"
	"github.com/h0rv/polardash/internal/polar"
	"github.com/h0rv/polardash/internal/prefs"
	"github.com/h0rv/polardash/internal/tui"
)

var (
	// CLI flags
	urlFlag        string
	orgFlag        string
	repoFlag       string
	configFlag     string
	debugFlag      bool
	backofficeFlag bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "polardash",
		Short: "Terminal dashboard for Polar",
		Long: `polardash is a terminal client for the Polar issue funding platform.

It shows an organization's issue dashboard with live updates, the personal
pledge list, and the backoffice reward reconciliation screen.

Authentication:
  Polar:  set POLAR_TOKEN or add 'token: <value>' to polardash.yml
  GitHub: run 'gh auth login' or set GITHUB_TOKEN (optional, enables comments)`,
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to polardash.yml. Defaults to the nearest one found.")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&urlFlag, "url", "", "Dashboard URL or query to start from, e.g. '?organization=polarsource&statuses=backlog'")
	rootCmd.PersistentFlags().StringVar(&orgFlag, "org", "", "Organization name. Overrides the organization in --url.")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "", "Repository name. Overrides the repository in --url.")
	rootCmd.Flags().BoolVar(&backofficeFlag, "backoffice", false, "Start on the backoffice reward screen")

	rootCmd.AddCommand(newIssuesCmd(), newBackofficeCmd(), newPrefsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env is what every command is wired from.
type env struct {
	cfg    *config.Config
	polar  *polar.Client
	prefs  *prefs.Store
	logger *slog.Logger
}

// setup loads the config, resolves the Polar token and builds the client.
func setup(logger *slog.Logger) (*env, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		logger.Debug("loaded config", "path", cfg.Path)
	}

	token, err := auth.Polar(cfg.Token).GetToken()
	if err != nil {
		return nil, err
	}

	client := polar.New(polar.Options{
		BaseURL: cfg.APIURL,
		Token:   token,
		Retry:   polar.RetryPolicy{Attempts: cfg.Retry.Attempts, Backoff: cfg.Retry.Backoff},
		Logger:  logger,
	})

	prefsPath, err := prefs.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("failed to locate preferences: %w", err)
	}

	return &env{
		cfg:    cfg,
		polar:  client,
		prefs:  prefs.New(&prefs.File{Path: prefsPath}),
		logger: logger,
	}, nil
}

// location merges --url with the --org and --repo overrides.
func location() (filters.Location, error) {
	loc, err := filters.ParseLocation(urlFlag)
	if err != nil {
		return filters.Location{}, err
	}
	if orgFlag != "" {
		loc.Organization = orgFlag
	}
	if repoFlag != "" {
		loc.Repo = repoFlag
	}
	return loc, nil
}

func run(cmd *cobra.Command, args []string) error {
	loc, err := location()
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file.
	logPath, err := logging.DefaultFilePath()
	if err != nil {
		return fmt.Errorf("failed to locate log file: %w", err)
	}
	logger, closeLog, err := logging.OpenFile(logPath, debugFlag)
	if err != nil {
		return err
	}
	defer closeLog()

	e, err := setup(logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	deps := tui.Deps{
		Ctx:      ctx,
		Polar:    e.polar,
		Events:   subscriber(e.cfg, logger),
		Prefs:    e.prefs,
		Logger:   logger,
		Platform: e.cfg.Platform,
	}
	defer deps.Events.Close()

	// GitHub access is optional; without it the detail screen shows Polar data only.
	if ghClient, err := gh.New(); err == nil {
		deps.GitHub = ghClient
	} else {
		logger.Info("GitHub client unavailable, comments disabled", "err", err)
	}

	app := tui.NewAppModel(tui.Options{
		Deps:              deps,
		Location:          loc,
		StartInBackoffice: backofficeFlag,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}

	return nil
}

// subscriber connects to NATS when configured and falls back to no live updates.
func subscriber(cfg *config.Config, logger *slog.Logger) events.Subscriber {
	if cfg.NATSURL == "" {
		return &events.NoopSubscriber{}
	}
	sub, err := events.NewNATSSubscriber(cfg.NATSURL, logger)
	if err != nil {
		logger.Warn("live updates disabled", "url", cfg.NATSURL, "err", err)
		return &events.NoopSubscriber{}
	}
	return sub
}
