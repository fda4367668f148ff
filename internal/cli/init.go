package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/architect/internal/config"
	"github.com/julianstephens/architect/internal/constants"
	"github.com/julianstephens/architect/internal/storage"
	"github.com/julianstephens/architect/internal/storage/postgres"
	"github.com/julianstephens/architect/internal/storage/sqlite"
	"github.com/julianstephens/architect/internal/utils"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path, JSON file or connection string to migrate the journal from."`
}

func (c *InitCmd) Run(ctx *Context) error {
	bg := context.Background()

	if err := c.writeConfig(ctx); err != nil {
		return err
	}

	// If force flag is provided, delete existing database
	if c.Force {
		if err := c.removeExisting(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(bg); err != nil {
		return err
	}
	if _, isSQLite := ctx.Store.(*sqlite.Store); c.Force && !isSQLite {
		repo := storage.NewRepository(ctx.Store)
		if err := errors.Join(repo.DeleteEntries(bg), repo.DeleteProfile(bg)); err != nil {
			return fmt.Errorf("failed to reset existing journal: %w", err)
		}
	}
	ctx.printf("Initialized architect storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.printf("Migrating data from: %s\n", c.Source)
		n, err := c.migrateData(bg, ctx)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.printf("Migration completed successfully! (%d records)\n", n)
	}
	return nil
}

// writeConfig creates the default config file unless one already exists.
func (c *InitCmd) writeConfig(ctx *Context) error {
	conf := ctx.config()
	path := conf.Path
	if path == "" {
		path = constants.DefaultConfigFile
	}
	expanded, err := utils.ExpandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access config file: %w", err)
	}
	if err := conf.Write(expanded); err != nil {
		return err
	}
	ctx.printf("Wrote config to: %s\n", expanded)
	return nil
}

func (c *InitCmd) removeExisting(ctx *Context) error {
	s, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		// Other drivers are reset by clearing their records after Init.
		return nil
	}
	dbPath := s.GetConfigPath()
	if c.Source != "" {
		absDB, err := filepath.Abs(dbPath)
		if err == nil {
			dbPath = absDB
		}
		absSource, err := filepath.Abs(c.Source)
		if err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}
	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		ctx.printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

// migrateData copies the journal records from the source store. Records the
// source does not have are left alone.
func (c *InitCmd) migrateData(ctx context.Context, appCtx *Context) (int, error) {
	source, err := openSource(c.Source)
	if err != nil {
		return 0, err
	}
	if err := source.Load(ctx); err != nil {
		return 0, fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	copied := 0
	for _, key := range []string{constants.EntriesKey, constants.ProfileKey} {
		value, err := source.Get(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return copied, fmt.Errorf("failed to read %s from source: %w", key, err)
		}
		if err := appCtx.Store.Set(ctx, key, value); err != nil {
			return copied, fmt.Errorf("failed to write %s: %w", key, err)
		}
		appCtx.printf("  Migrated %s\n", key)
		copied++
	}
	return copied, nil
}

func openSource(src string) (storage.Provider, error) {
	conf := config.Default()
	if postgres.IsConnString(src) {
		if err := postgres.ValidateConnString(src); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return nil, err
		}
	}
	return NewStore(conf, src, false)
}
