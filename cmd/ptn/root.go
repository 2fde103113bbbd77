package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tgienger/ptn/internal/config"
	"github.com/tgienger/ptn/internal/db"
	"github.com/tgienger/ptn/internal/logging"
	"github.com/tgienger/ptn/internal/persist"
	"github.com/tgienger/ptn/internal/store"
	"github.com/tgienger/ptn/internal/ui"
	"github.com/tgienger/ptn/internal/ui/styles"
)

type rootOptions struct {
	configPath string
	backend    string
	dataDir    string
	ephemeral  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:     "ptn",
		Short:   "Track patient tasks and their notes in the terminal",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/ptn/config.yaml)")
	flags.StringVar(&opts.backend, "backend", "", "storage backend: sqlite or badger")
	flags.StringVar(&opts.dataDir, "data-dir", "", "directory for the database and log file")
	flags.BoolVar(&opts.ephemeral, "ephemeral", false, "keep state in memory only")

	cmd.AddCommand(newListCmd(opts), newExportCmd(opts))
	return cmd
}

// session is the loaded state plus what must be released on exit
type session struct {
	cfg     *config.Config
	store   *store.Store
	medium  persist.Medium
	logger  *slog.Logger
	closers []io.Closer
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i].Close()
	}
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.backend != "" {
		cfg.Backend = o.backend
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	return cfg, cfg.Validate()
}

// openSession loads configuration, opens the medium and restores the
// store from it. Load happens once, before any mutation.
func openSession(o *rootOptions) (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg}
	var logger *slog.Logger
	if o.ephemeral {
		// nothing, logs included, is written for an ephemeral session
		logger = logging.New(io.Discard, slog.LevelError)
	} else {
		var logFile io.Closer
		logger, logFile, err = logging.OpenFile(cfg.DataDir, cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("open log: %w", err)
		}
		s.closers = append(s.closers, logFile)
	}
	s.logger = logger

	medium, closer, err := openMedium(cfg, o.ephemeral, logger)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open %s storage: %w", cfg.Backend, err)
	}
	s.medium = medium
	if closer != nil {
		s.closers = append(s.closers, closer)
	}

	bridge := persist.NewBridge(medium, logger)
	s.store = store.New(store.WithSaver(bridge), store.WithLogger(logger))
	s.store.Restore(bridge.Load())

	logger.Info("session started",
		"backend", cfg.Backend,
		"ephemeral", o.ephemeral,
		"tasks", len(s.store.Tasks()),
	)
	return s, nil
}

func openMedium(cfg *config.Config, ephemeral bool, logger *slog.Logger) (persist.Medium, io.Closer, error) {
	if ephemeral {
		return &persist.MemoryMedium{}, nil, nil
	}

	switch cfg.Backend {
	case config.BackendBadger:
		b, err := db.OpenBadger(db.BadgerConfig{
			Path:       filepath.Join(cfg.DataDir, "badger"),
			SyncWrites: true,
			Logger:     logger.With("component", "badger"),
		})
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil
	default:
		database, err := db.New(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return database, database, nil
	}
}

func runTUI(o *rootOptions) error {
	s, err := openSession(o)
	if err != nil {
		return err
	}
	defer s.Close()

	if !styles.Use(s.cfg.Theme) {
		s.logger.Warn("unknown theme, using default", "theme", s.cfg.Theme)
	}

	app := ui.NewApp(s.store)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}
