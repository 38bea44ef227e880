package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"spread-observer/src/helpers"
	"spread-observer/src/interfaces"
	"spread-observer/src/logger"
	"spread-observer/src/models"

	_ "github.com/lib/pq"
)

var _ interfaces.IPairStore = (*PostgresDB)(nil)

// -----------------------------------------------------------------------------

// PostgresDB keeps its tables in a schema named after the executable, so
// several observers can share one database.
type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	if cfg.Storage.DBConnectionString == "" {
		return nil, helpers.NewConfigurationError("postgres db_connection_string is empty", nil)
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresDB{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return helpers.NewDatabaseError("open postgres", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewDatabaseError("ping postgres", err)
	}
	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return helpers.NewDatabaseError(fmt.Sprintf("create schema %s", d.Schema), err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s".tracked_pair (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			stock_a TEXT NOT NULL,
			stock_b TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewDatabaseError("create tracked_pair", err)
	}

	d.Logger.Info("PostgresDB ready (schema %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) LoadPair(ctx context.Context) (models.MTrackedPair, error) {
	var pair models.MTrackedPair
	query := fmt.Sprintf(`SELECT stock_a, stock_b FROM "%s".tracked_pair WHERE id = 1`, d.Schema)
	if err := d.DB.QueryRowContext(ctx, query).Scan(&pair.CodeA, &pair.CodeB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.MTrackedPair{}, nil
		}
		return models.MTrackedPair{}, helpers.NewDatabaseError("load pair", err)
	}
	return pair, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SavePair(ctx context.Context, pair models.MTrackedPair) error {
	query := fmt.Sprintf(`
		INSERT INTO "%s".tracked_pair (id, stock_a, stock_b, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET
			stock_a = EXCLUDED.stock_a,
			stock_b = EXCLUDED.stock_b,
			updated_at = EXCLUDED.updated_at
	`, d.Schema)
	if _, err := d.DB.ExecContext(ctx, query, pair.CodeA, pair.CodeB); err != nil {
		return helpers.NewDatabaseError(fmt.Sprintf("save pair %s/%s", pair.CodeA, pair.CodeB), err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
