package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramonehamilton/seers-orb/internal/mtga/synergy/engine"
	"github.com/ramonehamilton/seers-orb/internal/storage"
)

func newDBCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the graph edit and report database",
	}
	cmd.AddCommand(
		newDBMigrateCommand(a),
		newDBBackupCommand(a),
		newDBBackupsCommand(a),
		newDBPurgeCommand(a),
	)
	return cmd
}

func (a *app) databasePath() (string, error) {
	if a.noStore || !a.cfg.Storage.Enabled {
		return "", engine.ErrNoStorage
	}
	return a.cfg.DatabasePath()
}

func (a *app) backupDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	path, err := a.databasePath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(path), "backups"), nil
}

func newDBMigrateCommand(a *app) *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations, or roll them all back with --down",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.databasePath()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
			mgr, err := storage.NewMigrationManager(path)
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()

			if down {
				err = mgr.Down()
			} else {
				err = mgr.Up()
			}
			if err != nil {
				return err
			}

			v, dirty, err := mgr.Version()
			if err != nil {
				return err
			}
			a.logger.Info("schema migrated", zap.String("path", path), zap.Uint("version", v), zap.Bool("down", down))
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t)\n", v, dirty)
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back every migration")
	return cmd
}

func newDBBackupCommand(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a verified copy of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			target, err := a.backupDir(dir)
			if err != nil {
				return err
			}
			db, err := a.requireStorage(ctx)
			if err != nil {
				return err
			}
			path, err := db.Backup(ctx, target)
			if err != nil {
				return err
			}
			a.logger.Info("database backed up", zap.String("path", path))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "backup directory (default: backups next to the database)")
	return cmd
}

func newDBBackupsCommand(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "backups",
		Short: "List database backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := a.backupDir(dir)
			if err != nil {
				return err
			}
			backups, err := storage.ListBackups(target)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED\tSHA256")
			for _, b := range backups {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", b.Name, b.Size, b.ModTime.Format("2006-01-02 15:04:05"), b.Checksum)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "backup directory (default: backups next to the database)")
	return cmd
}

func newDBPurgeCommand(a *app) *cobra.Command {
	var catalog string

	cmd := &cobra.Command{
		Use:   "purge <collection>",
		Short: "Delete every stored edit and report of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.requireStorage(ctx)
			if err != nil {
				return err
			}
			col, err := a.loadCollection(args[0], catalog)
			if err != nil {
				return err
			}
			res, err := db.Purge(ctx, col.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d graph edits and %d reports\n", res.Edits, res.Reports)
			return nil
		},
	}
	cmd.Flags().StringVar(&catalog, "catalog", "", "Scryfall card list used to resolve deck list names")
	return cmd
}
