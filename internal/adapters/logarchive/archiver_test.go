package logarchive_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bake/internal/adapters/logarchive"
)

func writeLog(t *testing.T, path, content string, modTime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestArchiver_Archive(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "build.log")
	archiveDir := filepath.Join(dir, "logs", "archive")
	content := strings.Repeat("CompileSwift normal arm64 Alamofire.swift\n", 200)
	writeLog(t, logPath, content, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))

	archive, err := logarchive.New(3).Archive(logPath, archiveDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(archiveDir, "build-20240501T100000.000000000.log.zst"), archive)
	assert.NoFileExists(t, logPath)

	info, err := os.Stat(archive)
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(len(content)))

	data, err := logarchive.Read(archive)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestArchiver_NoLog(t *testing.T) {
	dir := t.TempDir()

	archive, err := logarchive.New(3).Archive(filepath.Join(dir, "build.log"), filepath.Join(dir, "archive"))
	require.NoError(t, err)
	assert.Empty(t, archive)
	assert.NoDirExists(t, filepath.Join(dir, "archive"))
}

func TestArchiver_EmptyLog(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "build.log")
	writeLog(t, logPath, "", time.Now())

	archive, err := logarchive.New(3).Archive(logPath, filepath.Join(dir, "archive"))
	require.NoError(t, err)
	assert.Empty(t, archive)
	assert.NoFileExists(t, logPath)
}

func TestArchiver_Rotate(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "build.log")
	archiveDir := filepath.Join(dir, "archive")
	archiver := logarchive.New(2)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	var archives []string
	for i := range 4 {
		writeLog(t, logPath, fmt.Sprintf("run %d\n", i), base.Add(time.Duration(i)*time.Minute))
		archive, err := archiver.Archive(logPath, archiveDir)
		require.NoError(t, err)
		archives = append(archives, archive)
	}

	entries, err := os.ReadDir(archiveDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, filepath.Base(archives[2]), entries[0].Name())
	assert.Equal(t, filepath.Base(archives[3]), entries[1].Name())

	data, err := logarchive.Read(archives[3])
	require.NoError(t, err)
	assert.Equal(t, "run 3\n", string(data))
}
