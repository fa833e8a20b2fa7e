package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LilVoxy/coursework_etl/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArchiver(t *testing.T, dir string) *Archiver {
	t.Helper()
	return NewArchiver(dir, utils.NewETLLoggerWithDir(t.TempDir(), false))
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestArchiveRoundtrip(t *testing.T) {
	archiveDir := t.TempDir()
	archiver := newTestArchiver(t, archiveDir)

	content := strings.Repeat("County,Year,GDP_Value\nNairobi,2023,1500.5\n", 50)
	source := writeTempFile(t, "gdp_data.csv", content)

	archivePath, err := archiver.Archive(source)
	require.NoError(t, err)

	assert.Equal(t, archiveDir, filepath.Dir(archivePath))
	assert.True(t, strings.HasPrefix(filepath.Base(archivePath), "gdp_data_"))
	assert.True(t, strings.HasSuffix(archivePath, ".snappy"))

	restored := filepath.Join(t.TempDir(), "restored.csv")
	require.NoError(t, archiver.Restore(archivePath, restored))

	data, err := os.ReadFile(restored)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestArchiveWithoutDir(t *testing.T) {
	archiver := newTestArchiver(t, "")

	_, err := archiver.Archive(writeTempFile(t, "gdp_data.csv", "Year\n2023\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "не настроена")
}

func TestArchiveMissingFile(t *testing.T) {
	archiver := newTestArchiver(t, t.TempDir())

	_, err := archiver.Archive(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestRestoreRejectsCorruptArchive(t *testing.T) {
	archiver := newTestArchiver(t, t.TempDir())

	corrupt := writeTempFile(t, "broken.snappy", "это не snappy")
	err := archiver.Restore(corrupt, filepath.Join(t.TempDir(), "out.csv"))
	assert.Error(t, err)
}

func TestCleanupRemovesFiles(t *testing.T) {
	archiver := newTestArchiver(t, "")

	first := writeTempFile(t, "raw.csv", "Year\n2023\n")
	second := writeTempFile(t, "transformed.csv", "Year\n2023\n")

	// Пустой путь и отсутствующий файл не должны прерывать очистку
	archiver.Cleanup(first, "", filepath.Join(t.TempDir(), "missing.csv"), second)

	assert.NoFileExists(t, first)
	assert.NoFileExists(t, second)
}

func TestCleanupArchivesBeforeDelete(t *testing.T) {
	archiveDir := t.TempDir()
	archiver := newTestArchiver(t, archiveDir)

	content := "County,Year,GDP_Value\nNairobi,2023,1500.5\n"
	source := writeTempFile(t, "gdp_data.csv", content)

	archiver.Cleanup(source)

	assert.NoFileExists(t, source)

	entries, err := os.ReadDir(archiveDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	restored := filepath.Join(t.TempDir(), "restored.csv")
	require.NoError(t, archiver.Restore(filepath.Join(archiveDir, entries[0].Name()), restored))

	data, err := os.ReadFile(restored)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}
