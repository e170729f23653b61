package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fablabhq/fablab/internal/common"
)

func writeDictionary(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func newTestService(t *testing.T, dir string) *Service {
	t.Helper()
	svc, err := NewService(&common.I18nConfig{Dir: dir, DefaultLanguage: "en"}, common.GetLogger())
	require.NoError(t, err)
	return svc
}

func TestLoadsDictionariesFromDir(t *testing.T) {
	dir := t.TempDir()
	writeDictionary(t, dir, "en.yaml", "version: 1\nlanguage: en\nstrings:\n  greeting: Hello\n  farewell: Bye\n")
	writeDictionary(t, dir, "fr.yaml", "version: 1\nlanguage: fr\nstrings:\n  greeting: Bonjour\n")

	svc := newTestService(t, dir)

	assert.Equal(t, []string{"en", "fr"}, svc.Languages())
	assert.Equal(t, "fr", svc.Resolve("fr"))
	assert.Equal(t, "en", svc.Resolve("de"))
}

func TestSkipsDictionaryWithWrongVersion(t *testing.T) {
	dir := t.TempDir()
	writeDictionary(t, dir, "en.yaml", "version: 1\nlanguage: en\nstrings:\n  greeting: Hello\n")
	writeDictionary(t, dir, "de.yaml", "version: 99\nlanguage: de\nstrings:\n  greeting: Hallo\n")

	svc := newTestService(t, dir)

	assert.Equal(t, []string{"en"}, svc.Languages())
}

func TestMissingDirIsTolerated(t *testing.T) {
	svc := newTestService(t, filepath.Join(t.TempDir(), "nope"))
	assert.Empty(t, svc.Languages())
	assert.Equal(t, "en", svc.Resolve("fr"))
}

func TestMergedFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	writeDictionary(t, dir, "en.yaml", "version: 1\nlanguage: en\nstrings:\n  greeting: Hello\n  farewell: Bye\n")
	writeDictionary(t, dir, "fr.yaml", "version: 1\nlanguage: fr\nstrings:\n  greeting: Bonjour\n")

	svc := newTestService(t, dir)
	merged := svc.Merged("fr")

	// French overrides greeting; farewell falls back to English
	assert.Equal(t, "Bonjour", merged["greeting"])
	assert.Equal(t, "Bye", merged["farewell"])
}

func TestRegisterCustomOverlaysBuiltin(t *testing.T) {
	dir := t.TempDir()
	writeDictionary(t, dir, "en.yaml", "version: 1\nlanguage: en\nstrings:\n  greeting: Hello\n")

	svc := newTestService(t, dir)

	require.NoError(t, svc.RegisterCustom(&Dictionary{
		Version:  SchemaVersion,
		Language: "en",
		Strings:  map[string]string{"greeting": "Howdy"},
	}))

	assert.Equal(t, "Howdy", svc.Merged("en")["greeting"])
}

func TestRegisterCustomValidates(t *testing.T) {
	svc := newTestService(t, t.TempDir())

	assert.Error(t, svc.RegisterCustom(&Dictionary{Version: 2, Language: "en", Strings: map[string]string{"a": "b"}}))
	assert.Error(t, svc.RegisterCustom(&Dictionary{Version: SchemaVersion, Language: "", Strings: map[string]string{"a": "b"}}))
	assert.Error(t, svc.RegisterCustom(&Dictionary{Version: SchemaVersion, Language: "en"}))
}
