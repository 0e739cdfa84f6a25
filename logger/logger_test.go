package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogLevel_DefaultsToInfoWhenUnset(t *testing.T) {
	t.Setenv("VOIDCORE_LOG_LEVEL", "")
	assert.Equal(t, zerolog.InfoLevel, GetLogLevel())
}

func TestGetLogLevel_ParsesNumericLevel(t *testing.T) {
	t.Setenv("VOIDCORE_LOG_LEVEL", "2") // zerolog.WarnLevel
	assert.Equal(t, zerolog.WarnLevel, GetLogLevel())
}

func TestWithSession_AttachesSessionIdField(t *testing.T) {
	var buf bytes.Buffer
	log := WithSession("sess-123").Output(&buf).Level(zerolog.InfoLevel)
	log.Info().Msg("x")
	assert.Contains(t, buf.String(), `"session_id":"sess-123"`)
}

func TestGet_ReturnsSameLoggerInstanceAcrossCalls(t *testing.T) {
	a := Get()
	b := Get()
	assert.Equal(t, a.GetLevel(), b.GetLevel())
}

func TestGetStateHome_HonorsOverrideEnvVar(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	t.Setenv("VOIDCORE_STATE_HOME", dir)

	got, err := getStateHome()
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	info, err := os.Stat(got)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDailyRotatingLogWriter_WritesUnderTodaysFile(t *testing.T) {
	dir := t.TempDir()
	w, err := newDailyRotatingLogWriter(dir)
	require.NoError(t, err)
	defer w.Close()

	n, err := w.Write([]byte(`{"msg":"hello"}` + "\n"))
	require.NoError(t, err)
	assert.Greater(t, n, 0)

	today := w.currentDate
	data, err := os.ReadFile(filepath.Join(dir, logFilePrefix+today+logFileSuffix))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestCleanupOldLogFiles_KeepsOnlyMostRecent(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		logFilePrefix + "2024-01-01" + logFileSuffix,
		logFilePrefix + "2024-01-02" + logFileSuffix,
		logFilePrefix + "2024-01-03" + logFileSuffix,
		logFilePrefix + "2024-01-04" + logFileSuffix,
		logFilePrefix + "2024-01-05" + logFileSuffix,
		logFilePrefix + "2024-01-06" + logFileSuffix,
		logFilePrefix + "2024-01-07" + logFileSuffix,
		logFilePrefix + "2024-01-08" + logFileSuffix,
	}
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	cleanupOldLogFiles(dir)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, maxLogFileCount)
	_, err = os.Stat(filepath.Join(dir, names[0]))
	assert.True(t, os.IsNotExist(err), "oldest file should have been pruned")
}
