package storage

import (
	"fmt"

	"spread-observer/src/helpers"
	"spread-observer/src/interfaces"
	"spread-observer/src/logger"
	"spread-observer/src/models"
)

// NewPairStore picks the backend named by storage.db_type.
func NewPairStore(cfg *models.MConfig, log *logger.Logger) (interfaces.IPairStore, error) {
	switch cfg.Storage.DBType {
	case "sqlite":
		return NewAsyncSQLiteDB(cfg, log)
	case "postgres":
		return NewPostgresDB(cfg, log)
	default:
		return nil, helpers.NewConfigurationError(fmt.Sprintf("unsupported db_type %q", cfg.Storage.DBType), nil)
	}
}
