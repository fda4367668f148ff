package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/architect/internal/backup"
	"github.com/julianstephens/architect/internal/constants"
	"github.com/julianstephens/architect/internal/keyring"
	"github.com/julianstephens/architect/internal/storage"
	"github.com/julianstephens/architect/internal/storage/sqlite"
	"github.com/julianstephens/architect/internal/utils"
)

type DoctorCmd struct{}

// schemaVersioner is implemented by the SQL-backed stores.
type schemaVersioner interface {
	SchemaVersion(ctx context.Context) (current, latest int, err error)
}

type check struct {
	name string
	// warn marks checks whose failure does not fail the run.
	warn bool
	// needsDB checks are skipped when the database is unreachable.
	needsDB bool
	run     func(ctx context.Context, c *Context) error
}

var doctorChecks = []check{
	{name: "Configuration", run: checkConfig},
	{name: "Database reachable", run: checkDBReachable},
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Journal records", needsDB: true, run: checkRecords},
	{name: "Backups present", warn: true, run: checkBackupsPresent},
	{name: "API key", warn: true, run: checkAPIKey},
	{name: "OS keyring", warn: true, run: checkKeyring},
	{name: "Clock/timezone", run: checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.println("Running diagnostics...")
	ctx.println()

	bg := context.Background()
	hasError := false
	dbReachable := true

	for _, chk := range doctorChecks {
		if chk.needsDB && !dbReachable {
			ctx.printf("⊘ %s: SKIPPED (database not reachable)\n", chk.name)
			continue
		}
		err := chk.run(bg, ctx)
		switch {
		case err == nil:
			ctx.printf("✓ %s: OK\n", chk.name)
		case chk.warn:
			ctx.printf("⚠ %s: WARNING\n", chk.name)
			ctx.printf("   %v\n", err)
		default:
			ctx.printf("❌ %s: FAIL\n", chk.name)
			ctx.printf("   Error: %v\n", err)
			hasError = true
			if chk.name == "Database reachable" {
				dbReachable = false
			}
		}
	}

	ctx.println()
	if hasError {
		ctx.println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.println("All diagnostics passed!")
	return nil
}

func checkConfig(_ context.Context, c *Context) error {
	conf := c.config()
	if err := conf.Validate(); err != nil {
		return err
	}
	if _, err := conf.Location(); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", conf.Journal.Timezone, err)
	}
	if !utils.ValidateDateLayout(conf.Journal.DateLayout) {
		return fmt.Errorf("date layout %q does not round-trip a date", conf.Journal.DateLayout)
	}
	return nil
}

func checkDBReachable(ctx context.Context, c *Context) error {
	if err := c.Store.Load(ctx); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	if s, ok := c.Store.(*sqlite.Store); ok {
		db := s.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func checkSchemaVersion(ctx context.Context, c *Context) error {
	sv, ok := c.Store.(schemaVersioner)
	if !ok {
		// File and memory stores are unversioned.
		return nil
	}
	current, latest, err := sv.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkRecords(ctx context.Context, c *Context) error {
	repo := storage.NewRepository(c.Store)
	entries, err := repo.LoadEntries(ctx)
	if err != nil {
		return err
	}
	ids := make(map[int64]bool, len(entries))
	for _, e := range entries {
		if ids[e.ID] {
			return fmt.Errorf("duplicate entry ID found: %d", e.ID)
		}
		ids[e.ID] = true
	}
	if _, err := repo.LoadProfile(ctx); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}

func checkBackupsPresent(_ context.Context, c *Context) error {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return nil
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'architect backup create'")
	}
	return nil
}

func checkAPIKey(context.Context, *Context) error {
	if ResolveAPIKey() != "" || strings.TrimSpace(os.Getenv("OPENAI_API_KEY")) != "" {
		return nil
	}
	return fmt.Errorf("no API key found; mentor replies will use the fallback. Set %s or run 'architect keyring set api-key'", constants.EnvAPIKey)
}

func checkKeyring(context.Context, *Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}

func checkClockTimezone(_ context.Context, c *Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	loc, err := c.config().Location()
	if err != nil {
		return err
	}
	if loc == time.UTC {
		c.println("   Note: timezone is UTC")
	}
	return nil
}
