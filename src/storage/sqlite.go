package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spread-observer/src/helpers"
	"spread-observer/src/interfaces"
	"spread-observer/src/logger"
	"spread-observer/src/models"

	_ "modernc.org/sqlite"
)

var _ interfaces.IPairStore = (*AsyncSQLiteDB)(nil)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	if cfg.Storage.DBPath == "" {
		return nil, helpers.NewConfigurationError("sqlite db_path is empty", nil)
	}
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	db, err := sql.Open("sqlite", d.Config.Storage.DBPath)
	if err != nil {
		return helpers.NewDatabaseError("open sqlite", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewDatabaseError("ping sqlite", err)
	}
	d.DB = db

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

// createTables keeps existing rows: the stored pair must survive restarts.
func (d *AsyncSQLiteDB) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS tracked_pair (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			stock_a TEXT NOT NULL,
			stock_b TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewDatabaseError("create tracked_pair", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) LoadPair(ctx context.Context) (models.MTrackedPair, error) {
	var pair models.MTrackedPair
	row := d.DB.QueryRowContext(ctx, "SELECT stock_a, stock_b FROM tracked_pair WHERE id = 1")
	if err := row.Scan(&pair.CodeA, &pair.CodeB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.MTrackedPair{}, nil
		}
		return models.MTrackedPair{}, helpers.NewDatabaseError("load pair", err)
	}
	return pair, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SavePair(ctx context.Context, pair models.MTrackedPair) error {
	query := `
		INSERT INTO tracked_pair (id, stock_a, stock_b, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			stock_a = excluded.stock_a,
			stock_b = excluded.stock_b,
			updated_at = excluded.updated_at
	`
	if _, err := d.DB.ExecContext(ctx, query, pair.CodeA, pair.CodeB, time.Now().Unix()); err != nil {
		return helpers.NewDatabaseError(fmt.Sprintf("save pair %s/%s", pair.CodeA, pair.CodeB), err)
	}
	d.Logger.Debug("Stored pair %s / %s", pair.CodeA, pair.CodeB)
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
