package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/aretw0/bloco"
	"github.com/aretw0/bloco/internal/config"
)

// quietLogs marks commands that own the terminal; they log only to a file.
const quietLogs = "quiet-logs"

// sqliteFile is the database name used when the sqlite adapter has no explicit path.
const sqliteFile = "notes.db"

// app holds the global flags and what PersistentPreRunE derives from them.
type app struct {
	verbose    bool
	configPath string
	adapter    string
	storePath  string
	key        string
	logFile    string

	cfg     *config.Config
	logger  *slog.Logger
	logSink io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "bloco",
		Short: "A local notepad with debounced autosave",
		Long: `bloco keeps short text notes in a local store (files, SQLite or memory).
Notes are listed most recently updated first; edits are saved after a short pause.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&a.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/bloco/config.yaml)")
	flags.StringVar(&a.adapter, "adapter", "", "Storage adapter: fs, sqlite or memory")
	flags.StringVar(&a.storePath, "store", "", "Storage location (directory for fs, database file for sqlite)")
	flags.StringVar(&a.key, "key", "", "Key the notes are stored under")
	flags.StringVar(&a.logFile, "log-file", "", "Write logs to a rotating file instead of stderr")

	rootCmd.AddCommand(
		newNewCmd(a),
		newListCmd(a),
		newSearchCmd(a),
		newShowCmd(a),
		newSelectCmd(a),
		newRenameCmd(a),
		newDeleteCmd(a),
		newEditCmd(a),
		newExportCmd(a),
		newWatchCmd(a),
		newStateCmd(a),
		newTUICmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	return f != nil && f.Changed
}

// setup loads the config file, applies flag overrides and installs the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadFrom(a.configPath)
	if err != nil {
		return err
	}
	if changed(cmd, "adapter") {
		cfg.Storage.Adapter = a.adapter
	}
	if changed(cmd, "store") {
		cfg.Storage.Path = config.ExpandPath(a.storePath)
	}
	if changed(cmd, "key") {
		cfg.Storage.Key = a.key
	}
	if changed(cmd, "log-file") {
		cfg.Log.File = config.ExpandPath(a.logFile)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if a.verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = cmd.ErrOrStderr()
	switch {
	case cfg.Log.File != "":
		sink := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		}
		a.logSink = sink
		w = sink
	case cmd.Annotations[quietLogs] == "true":
		w = io.Discard
	}

	a.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)
	return nil
}

func (a *app) teardown() {
	if a.logSink != nil {
		a.logSink.Close()
		a.logSink = nil
	}
}

// storeLocation resolves where the configured adapter keeps its data.
func (a *app) storeLocation() string {
	path := a.cfg.Storage.Path
	if path != "" || a.cfg.Storage.Adapter == bloco.AdapterMemory {
		return path
	}
	path = bloco.DefaultStorePath()
	if a.cfg.Storage.Adapter == bloco.AdapterSQLite {
		path = filepath.Join(path, sqliteFile)
	}
	return path
}

// openStore opens and loads the configured store.
func (a *app) openStore(ctx context.Context) (*bloco.Store, error) {
	location := a.storeLocation()
	a.logger.Debug("opening store", "adapter", a.cfg.Storage.Adapter, "location", location, "key", a.cfg.Storage.Key)
	return bloco.Open(ctx, location,
		bloco.WithAdapter(a.cfg.Storage.Adapter),
		bloco.WithKey(a.cfg.Storage.Key),
		bloco.WithLogger(a.logger),
	)
}
