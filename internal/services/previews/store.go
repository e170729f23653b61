package previews

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
)

// URLPrefix is the path under which preview files are served.
const URLPrefix = "/previews/"

// Store writes uploaded preview files to a local directory and serves them
// over HTTP. Each file is keyed by the owning source so previews can be
// released when the source is deleted.
type Store struct {
	dir    string
	files  map[string]string // source ID -> absolute file path
	mu     sync.Mutex
	logger arbor.ILogger
}

// NewStore creates a preview store rooted at dir, creating it if needed.
func NewStore(dir string, logger arbor.ILogger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create previews directory: %w", err)
	}
	return &Store{
		dir:    dir,
		files:  make(map[string]string),
		logger: logger,
	}, nil
}

// Put stores the given bytes as the preview for a source and returns the
// URL path the file is served at. A previous preview for the same source is
// replaced.
func (s *Store) Put(sourceID, filename string, data []byte) (string, error) {
	name := uuid.New().String() + sanitizeExt(filename)
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write preview file: %w", err)
	}

	s.mu.Lock()
	if old, ok := s.files[sourceID]; ok {
		os.Remove(old)
	}
	s.files[sourceID] = path
	s.mu.Unlock()

	s.logger.Debug().
		Str("source_id", sourceID).
		Str("file", name).
		Msg("Preview stored")

	return URLPrefix + name, nil
}

// Release removes the preview file for a source, if one exists. Sources
// whose preview URLs point elsewhere are left alone.
func (s *Store) Release(sourceID string) {
	s.mu.Lock()
	path, ok := s.files[sourceID]
	if ok {
		delete(s.files, sourceID)
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn().
			Err(err).
			Str("source_id", sourceID).
			Msg("Failed to remove preview file")
	}
}

// Owns reports whether the given URL points at a locally stored preview.
func (s *Store) Owns(url string) bool {
	return strings.HasPrefix(url, URLPrefix)
}

// Handler serves stored preview files.
func (s *Store) Handler() http.Handler {
	return http.StripPrefix(URLPrefix, http.FileServer(http.Dir(s.dir)))
}

// sanitizeExt keeps a short, safe file extension from the original name.
func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}
