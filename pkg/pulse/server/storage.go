package server

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/garunski/pulse/pkg/pulse/database"
	"github.com/garunski/pulse/pkg/pulse/journal"
)

// StorageComponents holds all storage-related components
type StorageComponents struct {
	DB      *database.DB
	Journal *journal.Store
}

// NewStorageComponents opens the database and the journal on top of it.
// An empty DataPath keeps the journal in memory.
func NewStorageComponents(cfg *Config, logger logr.Logger) (*StorageComponents, error) {
	if cfg.DataPath == "" {
		logger.Info("Opening in-memory BadgerDB")
	} else {
		logger.Info("Opening BadgerDB", "path", cfg.DataPath)
	}
	db, err := database.NewDB(cfg.DataPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}

	store := journal.NewStore(db, logger.WithName("journal"))
	logger.Info("Journal initialized")

	return &StorageComponents{
		DB:      db,
		Journal: store,
	}, nil
}
