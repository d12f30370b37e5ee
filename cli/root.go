// Package cli wires the cobra commands: the tray app and a few commands to
// add, list, export and import records from a terminal.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"opecbrain/config"
	"opecbrain/launch"
	"opecbrain/logger"
	"opecbrain/manager"
	"opecbrain/web"
)

// GlobalFlags holds the persistent flags.
type GlobalFlags struct {
	ConfigPath string
}

// session is what a command needs once the config is loaded.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

func (g *GlobalFlags) open() (*session, error) {
	cfg, err := config.Load(g.ConfigPath)
	if err != nil {
		return nil, err
	}
	lg, closer := logger.New(cfg.Log, cfg.LogPath())
	return &session{cfg: cfg, logger: lg, closer: closer}, nil
}

func (s *session) Close() error { return s.closer.Close() }

// remote returns a client when a live instance owns the data directory.
// Writes must then go through its API, never straight to the storage.
func (s *session) remote() (*web.Client, error) {
	info, alive := launch.LiveInstance(s.cfg.LockPath())
	if !alive {
		return nil, nil
	}
	if info.Addr == "" {
		return nil, fmt.Errorf("%w (pid %d) with the web API disabled", launch.ErrAlreadyRunning, info.PID)
	}
	return web.NewClient(info.Addr), nil
}

func (s *session) records() (*manager.RecordManager, io.Closer, error) {
	return launch.OpenRecords(s.cfg, s.logger, nil)
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// NewRootCommand builds the command tree. Without a subcommand it starts the
// tray app.
func NewRootCommand() *cobra.Command {
	flags := &GlobalFlags{}
	root := &cobra.Command{
		Use:   "opecbrain",
		Short: "Tray app recording when objects go up, come down and are ready",
		Long: `opecbrain sits in the system tray and keeps the history of objects
with the time each one was raised (Subiu), lowered (Desceu) and ready (Pronto).

Examples:
  opecbrain                                  # start the tray app
  opecbrain add "CAIXA 12 | desceu"
  opecbrain history --period week
  opecbrain export backup.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to YAML config file (optional)")

	root.AddCommand(
		createRunCommand(flags),
		createAddCommand(flags),
		createHistoryCommand(flags),
		createExportCommand(flags),
		createImportCommand(flags),
	)
	return root
}

func createRunCommand(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the tray app (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(flags)
		},
	}
}

func runApp(flags *GlobalFlags) error {
	s, err := flags.open()
	if err != nil {
		return err
	}
	defer s.Close()

	app, err := launch.New(s.cfg, s.logger)
	if err != nil {
		s.logger.Error("startup failed", slog.Any("error", err))
		return err
	}
	if err := app.Run(); err != nil {
		if errors.Is(err, launch.ErrAlreadyRunning) {
			s.logger.Warn("already running", slog.Any("error", err))
		}
		return err
	}
	return nil
}
