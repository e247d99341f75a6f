package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"transpo-cli/config"
	"transpo-cli/model"
	"transpo-cli/service"
	"transpo-cli/session"
	"transpo-cli/tui"
)

const appName = "transpo-cli"

// app carries what every command needs once flags are parsed.
type app struct {
	flags    *config.Flags
	lookup   func(string) (string, bool)
	cfg      config.Config
	logger   *slog.Logger
	closeLog func()
	client   *service.Client
	session  *session.Context
}

// NewRootCommand builds the command tree. Without a subcommand the
// interactive terminal UI starts.
func NewRootCommand(version string) *cobra.Command {
	root, _ := newRootCommand(version)
	return root
}

func newRootCommand(version string) (*cobra.Command, *app) {
	a := &app{flags: config.NewFlags(appName), lookup: os.LookupEnv, closeLog: func() {}}

	root := &cobra.Command{
		Use:   appName,
		Short: "Terminal client for the Transpo bus backend",
		Long: `Passengers search schedules and book seats, conductors manage seat
states, drivers report their live location.

Settings are read from the config file, then .env, then TRANSPO_*
environment variables, then flags. The password is only taken from
TRANSPO_PASSWORD.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI()
		},
	}
	root.PersistentFlags().AddFlagSet(a.flags.FlagSet())
	root.AddCommand(
		newLoginCommand(a),
		newLogoutCommand(a),
		newSchedulesCommand(a),
		newSeatsCommand(a),
		newSetSeatCommand(a),
		newReportLocationCommand(a),
	)
	return root, a
}

func Execute(version string) error {
	root, a := newRootCommand(version)
	defer func() { a.closeLog() }()
	return root.ExecuteContext(context.Background())
}

func (a *app) setup() error {
	cfg, err := a.flags.Load(a.lookup)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	a.logger, a.closeLog = logger, closeLog

	client, err := service.NewClient(service.Options{
		BaseURL:     cfg.BaseURL,
		Timeout:     cfg.Timeout,
		MaxAttempts: cfg.RetryAttempts,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	a.client = client
	a.session = session.NewContext(client, cfg.PersistSession, logger)
	logger.Info("starting", "base_url", cfg.BaseURL)
	return nil
}

func (a *app) locator() *service.Locator {
	var fixed *service.Position
	if lat, lng, ok := a.cfg.DriverPosition(); ok {
		fixed = &service.Position{Latitude: lat, Longitude: lng}
	}
	return service.NewLocator(nil, fixed, a.logger)
}

func (a *app) runTUI() error {
	program := tea.NewProgram(tui.New(tui.Options{
		Client:   a.client,
		Session:  a.session,
		Locator:  a.locator(),
		Logger:   a.logger,
		Username: a.cfg.Username,
		Password: a.cfg.Password,
		Restore:  a.cfg.PersistSession,
	}), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// requireSession resumes the saved session, or signs in with the
// configured credentials when there is none.
func (a *app) requireSession(ctx context.Context) (session.Session, error) {
	s, err := a.session.Restore(ctx)
	if err == nil {
		return s, nil
	}
	if a.cfg.Username != "" && a.cfg.Password != "" {
		return a.session.Login(ctx, a.cfg.Username, a.cfg.Password)
	}
	if errors.Is(err, session.ErrNoSession) {
		return session.Session{}, fmt.Errorf("not signed in, run %s login", appName)
	}
	return session.Session{}, err
}

func (a *app) requireRole(ctx context.Context, role model.Role) (session.Session, error) {
	s, err := a.requireSession(ctx)
	if err != nil {
		return session.Session{}, err
	}
	if s.Role != role {
		return session.Session{}, fmt.Errorf("%s is signed in as %s, this command needs %s", s.Username, roleName(s.Role), role)
	}
	return s, nil
}

func roleName(role model.Role) string {
	if role == "" {
		return "no role"
	}
	return string(role)
}

// newLogger writes JSON records to path. The terminal belongs to the
// UI, so without a path records are discarded.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), func() {}, nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { _ = file.Close() }, nil
}
