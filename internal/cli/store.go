package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/architect/internal/config"
	"github.com/julianstephens/architect/internal/constants"
	"github.com/julianstephens/architect/internal/keyring"
	"github.com/julianstephens/architect/internal/storage"
	"github.com/julianstephens/architect/internal/storage/postgres"
	"github.com/julianstephens/architect/internal/storage/sqlite"
	"github.com/julianstephens/architect/internal/utils"
)

// NewStore picks the storage driver. A non-empty override (the --db flag)
// wins over the config file: a PostgreSQL URI or DSN selects postgres, a
// .json path the JSON store, anything else sqlite.
func NewStore(conf *config.Config, override string, ephemeral bool) (storage.Provider, error) {
	if ephemeral {
		return storage.NewMemoryStore(), nil
	}

	driver := conf.Storage.Driver
	target := conf.Storage.Path
	if driver == constants.DriverPostgres {
		target = conf.Storage.DSN
	}
	if override != "" {
		target = override
		switch {
		case postgres.IsConnString(override):
			driver = constants.DriverPostgres
		case strings.HasSuffix(override, ".json"):
			driver = constants.DriverJSON
		default:
			driver = constants.DriverSQLite
		}
	}

	switch driver {
	case constants.DriverMemory:
		return storage.NewMemoryStore(), nil
	case constants.DriverPostgres:
		connStr, err := resolveConnString(target)
		if err != nil {
			return nil, err
		}
		return postgres.New(connStr), nil
	case constants.DriverJSON:
		path, err := utils.ExpandPath(target)
		if err != nil {
			return nil, err
		}
		return storage.NewJSONStore(path), nil
	default:
		if target == "" {
			target = constants.DefaultDBPath
		}
		path, err := utils.ExpandPath(target)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(path), nil
	}
}

// resolveConnString returns the configured connection string, or the one in
// ARCHITECT_DB_CONNECTION, or the one in the OS keyring. Only the last two
// may carry a password.
func resolveConnString(configured string) (string, error) {
	if configured != "" {
		if err := postgres.ValidateConnString(configured); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return "", fmt.Errorf("PostgreSQL connection strings with embedded credentials are not allowed; "+
					"store it with 'architect keyring set db <conn>', export %s, or use a .pgpass file", constants.EnvDBConnection)
			}
			return "", err
		}
		return configured, nil
	}
	if env := strings.TrimSpace(os.Getenv(constants.EnvDBConnection)); env != "" {
		return env, nil
	}
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("no PostgreSQL connection configured: set storage.dsn, %s or 'architect keyring set db'", constants.EnvDBConnection)
		}
		return "", err
	}
	return connStr, nil
}

// driverName reports which driver backs s.
func driverName(s storage.Provider) string {
	switch s.(type) {
	case *sqlite.Store:
		return constants.DriverSQLite
	case *postgres.Store:
		return constants.DriverPostgres
	case *storage.JSONStore:
		return constants.DriverJSON
	case *storage.MemoryStore:
		return constants.DriverMemory
	default:
		return "unknown"
	}
}
