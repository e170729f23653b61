package badger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/fablabhq/fablab/internal/common"
	"github.com/fablabhq/fablab/internal/interfaces"
	"github.com/fablabhq/fablab/internal/models"
)

// SourceStorage implements source persistence on badgerhold
type SourceStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

var _ interfaces.SourceStorage = (*SourceStorage)(nil)

// NewSourceStorage creates a badger-backed source storage
func NewSourceStorage(db *BadgerDB, logger arbor.ILogger) *SourceStorage {
	return &SourceStorage{
		db:     db,
		logger: logger,
	}
}

// CreateSource stores a new source, assigning its ID and creation time.
func (s *SourceStorage) CreateSource(source *models.APISource) error {
	if source.ID == "" {
		source.ID = common.NewSourceID()
	}
	if source.CreatedAt.IsZero() {
		source.CreatedAt = time.Now()
	}

	if err := s.db.Store().Insert(source.ID, source); err != nil {
		return fmt.Errorf("failed to insert source: %w", err)
	}

	s.logger.Debug().
		Str("source_id", source.ID).
		Str("session_id", source.SessionID).
		Msg("Source stored")

	return nil
}

// ListSources returns all sources for a session ordered by creation time.
func (s *SourceStorage) ListSources(sessionID string) ([]*models.APISource, error) {
	var sources []*models.APISource
	if err := s.db.Store().Find(&sources, badgerhold.Where("SessionID").Eq(sessionID)); err != nil {
		return nil, fmt.Errorf("failed to find sources: %w", err)
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].CreatedAt.Before(sources[j].CreatedAt)
	})

	return sources, nil
}

// GetSource retrieves a source by ID.
func (s *SourceStorage) GetSource(id string) (*models.APISource, error) {
	var source models.APISource
	if err := s.db.Store().Get(id, &source); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, interfaces.ErrSourceNotFound
		}
		return nil, fmt.Errorf("failed to get source: %w", err)
	}
	return &source, nil
}

// DeleteSource removes a source by ID.
func (s *SourceStorage) DeleteSource(id string) error {
	if err := s.db.Store().Delete(id, models.APISource{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return interfaces.ErrSourceNotFound
		}
		return fmt.Errorf("failed to delete source: %w", err)
	}

	s.logger.Debug().
		Str("source_id", id).
		Msg("Source deleted")

	return nil
}

// DeleteSessionSources removes all sources belonging to a session.
func (s *SourceStorage) DeleteSessionSources(sessionID string) error {
	if err := s.db.Store().DeleteMatching(&models.APISource{}, badgerhold.Where("SessionID").Eq(sessionID)); err != nil {
		return fmt.Errorf("failed to delete session sources: %w", err)
	}
	return nil
}
