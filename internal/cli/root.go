// Package cli implements the seers-orb command line.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ramonehamilton/seers-orb/internal/config"
	"github.com/ramonehamilton/seers-orb/internal/logging"
	"github.com/ramonehamilton/seers-orb/internal/metrics"
	"github.com/ramonehamilton/seers-orb/internal/mtga/collection"
	"github.com/ramonehamilton/seers-orb/internal/mtga/synergy/engine"
	"github.com/ramonehamilton/seers-orb/internal/storage"
	"github.com/ramonehamilton/seers-orb/internal/version"
)

// app carries the state shared by every command of one invocation.
type app struct {
	cfgFile  string
	logLevel string
	noStore  bool

	cfg     *config.Config
	logger  *zap.Logger
	db      *storage.DB
	metrics *metrics.AnalysisMetrics
}

// NewRootCommand builds a fresh command tree. Each call has its own flag state.
func NewRootCommand() *cobra.Command {
	root, _ := newRootCommand()
	return root
}

func newRootCommand() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:           "seers-orb",
		Short:         "Synergy graph analysis for Magic: The Gathering collections",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default ~/.seers-orb/config.toml)")
	flags.StringVar(&a.logLevel, "log-level", "", "override the configured log level")
	flags.BoolVar(&a.noStore, "no-store", false, "do not open the database")

	root.AddCommand(
		newAnalyzeCommand(a),
		newExportCommand(a),
		newInteractionCommand(a),
		newReportCommand(a),
		newDBCommand(a),
		newConfigCommand(a),
	)
	return root, a
}

// Execute runs the command line with ctx.
func Execute(ctx context.Context, args []string) error {
	root, a := newRootCommand()
	// PersistentPostRunE is skipped when a command fails.
	defer func() { _ = a.close() }()

	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *app) init(cmd *cobra.Command) error {
	path := a.cfgFile
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Log, zapcore.Lock(zapcore.AddSync(cmd.ErrOrStderr())))
	if err != nil {
		return err
	}
	a.logger = logger
	a.metrics = metrics.NewAnalysisMetrics()
	a.logger.Debug("configuration loaded", zap.String("path", path), zap.String("version", version.String()))
	return nil
}

func (a *app) close() error {
	var err error
	if a.db != nil {
		err = a.db.Close()
		a.db = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return err
}

// storage opens the database once. It returns nil when storage is disabled.
func (a *app) storage(ctx context.Context) (*storage.DB, error) {
	if a.noStore || !a.cfg.Storage.Enabled {
		return nil, nil
	}
	if a.db != nil {
		return a.db, nil
	}

	path, err := a.cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(ctx, storage.DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	a.logger.Debug("database opened", zap.String("path", path))
	a.db = db
	return db, nil
}

// requireStorage is storage for commands that cannot run without a database.
func (a *app) requireStorage(ctx context.Context) (*storage.DB, error) {
	db, err := a.storage(ctx)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, engine.ErrNoStorage
	}
	return db, nil
}

// service builds an engine wired to the database when one is available.
func (a *app) service(ctx context.Context) (*engine.Service, error) {
	opts := []engine.Option{engine.WithLogger(a.logger), engine.WithMetrics(a.metrics)}

	db, err := a.storage(ctx)
	if err != nil {
		return nil, err
	}
	if db != nil {
		opts = append(opts, engine.WithEditRepository(db.GraphEdits()), engine.WithReportRepository(db.Reports()))
	}
	return engine.New(a.cfg, opts...), nil
}

// loadCollection reads a collection file. catalog overrides the configured
// card catalog used for text imports.
func (a *app) loadCollection(path, catalog string) (*collection.Collection, error) {
	if catalog == "" {
		catalog = a.cfg.Collection.Catalog
	}

	var opts collection.LoadOptions
	if catalog != "" {
		c, err := collection.LoadCatalog(catalog)
		if err != nil {
			return nil, err
		}
		opts.Catalog = c
	}

	col, err := collection.Load(path, opts)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("collection loaded",
		zap.String("path", path),
		zap.String("collection", col.ID),
		zap.Int("unique_cards", len(col.Entries)),
		zap.Int("total_cards", col.TotalCards()),
	)
	return col, nil
}

// resolveCard finds a card of col by ID or, case-insensitively, by its name
// or front face name.
func resolveCard(col *collection.Collection, ref string) (string, error) {
	if e, ok := col.Entry(ref); ok {
		return e.Card.ID, nil
	}
	for _, e := range col.Entries {
		front, _, _ := strings.Cut(e.Card.Name, " // ")
		if strings.EqualFold(e.Card.Name, ref) || strings.EqualFold(front, ref) {
			return e.Card.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %s", engine.ErrUnknownCard, ref)
}
