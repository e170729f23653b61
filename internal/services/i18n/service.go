package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/fablabhq/fablab/internal/common"
)

// SchemaVersion is the dictionary format this build understands.
// Dictionaries declaring another version are rejected at load time instead
// of failing at lookup time.
const SchemaVersion = 1

// Dictionary is a versioned set of display strings for one language.
type Dictionary struct {
	Version  int               `yaml:"version" json:"version"`
	Language string            `yaml:"language" json:"language"`
	Strings  map[string]string `yaml:"strings" json:"strings"`
}

// Validate checks the dictionary against the supported schema.
func (d *Dictionary) Validate() error {
	if d.Version != SchemaVersion {
		return fmt.Errorf("unsupported dictionary version %d (expected %d)", d.Version, SchemaVersion)
	}
	if strings.TrimSpace(d.Language) == "" {
		return fmt.Errorf("dictionary language is required")
	}
	if len(d.Strings) == 0 {
		return fmt.Errorf("dictionary for %s has no strings", d.Language)
	}
	return nil
}

// Service loads display-language dictionaries and resolves lookups with
// fallback to the default language. Custom dictionaries registered at
// runtime overlay the file-based ones.
type Service struct {
	defaultLanguage string
	builtin         map[string]*Dictionary
	custom          map[string]*Dictionary
	mu              sync.RWMutex
	logger          arbor.ILogger
}

// NewService loads all dictionaries from the configured directory. A
// missing directory is tolerated; the service then only serves custom
// dictionaries.
func NewService(config *common.I18nConfig, logger arbor.ILogger) (*Service, error) {
	defaultLanguage := config.DefaultLanguage
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}

	s := &Service{
		defaultLanguage: defaultLanguage,
		builtin:         make(map[string]*Dictionary),
		custom:          make(map[string]*Dictionary),
		logger:          logger,
	}

	entries, err := os.ReadDir(config.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn().
				Str("dir", config.Dir).
				Msg("Language directory not found, no built-in dictionaries loaded")
			return s, nil
		}
		return nil, fmt.Errorf("failed to read language directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(config.Dir, entry.Name())
		dict, err := loadDictionary(path)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("file", entry.Name()).
				Msg("Skipping invalid dictionary")
			continue
		}
		s.builtin[dict.Language] = dict
	}

	logger.Info().
		Int("dictionaries", len(s.builtin)).
		Str("default_language", defaultLanguage).
		Msg("Language dictionaries loaded")

	return s, nil
}

func loadDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}

	var dict Dictionary
	if err := yaml.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary: %w", err)
	}
	if err := dict.Validate(); err != nil {
		return nil, err
	}
	return &dict, nil
}

// RegisterCustom validates and registers a runtime dictionary. Its strings
// overlay the built-in dictionary for the same language.
func (s *Service) RegisterCustom(dict *Dictionary) error {
	if err := dict.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.custom[dict.Language] = dict
	s.mu.Unlock()

	s.logger.Info().
		Str("language", dict.Language).
		Int("strings", len(dict.Strings)).
		Msg("Custom dictionary registered")

	return nil
}

// Resolve returns the given language when a dictionary exists for it, and
// the default language otherwise.
func (s *Service) Resolve(language string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.builtin[language]; ok {
		return language
	}
	if _, ok := s.custom[language]; ok {
		return language
	}
	return s.defaultLanguage
}

// Languages returns the sorted set of available language codes.
func (s *Service) Languages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := make(map[string]bool, len(s.builtin)+len(s.custom))
	for lang := range s.builtin {
		set[lang] = true
	}
	for lang := range s.custom {
		set[lang] = true
	}

	out := make([]string, 0, len(set))
	for lang := range set {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Merged returns the effective strings for a language: the default
// dictionary, overlaid by the language's built-in dictionary, overlaid by
// any custom dictionary.
func (s *Service) Merged(language string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string)
	for _, dict := range []*Dictionary{
		s.builtin[s.defaultLanguage],
		s.builtin[language],
		s.custom[language],
	} {
		if dict == nil {
			continue
		}
		for key, value := range dict.Strings {
			out[key] = value
		}
	}
	return out
}

// DefaultLanguage returns the configured fallback language.
func (s *Service) DefaultLanguage() string {
	return s.defaultLanguage
}
