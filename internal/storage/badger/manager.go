package badger

import (
	"github.com/ternarybob/arbor"

	"github.com/fablabhq/fablab/internal/common"
	"github.com/fablabhq/fablab/internal/interfaces"
)

// Manager bundles the badger-backed storage implementations
type Manager struct {
	db      *BadgerDB
	sources *SourceStorage
	tools   *ToolStorage
	logger  arbor.ILogger
}

var _ interfaces.StorageManager = (*Manager)(nil)

// NewManager opens the database and wires the storage implementations
func NewManager(config *common.BadgerConfig, logger arbor.ILogger) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	return &Manager{
		db:      db,
		sources: NewSourceStorage(db, logger),
		tools:   NewToolStorage(db, logger),
		logger:  logger,
	}, nil
}

// SourceStorage returns the source storage
func (m *Manager) SourceStorage() interfaces.SourceStorage {
	return m.sources
}

// ToolStorage returns the tool storage
func (m *Manager) ToolStorage() interfaces.ToolStorage {
	return m.tools
}

// Close closes the database connection
func (m *Manager) Close() error {
	m.logger.Info().Msg("Closing storage manager")
	return m.db.Close()
}
