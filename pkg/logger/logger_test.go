package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitUnknownLevelFallsBackToInfo(t *testing.T) {
	require.NoError(t, Init(Config{Level: "shouting"}))
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}

func TestInitWithFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bot.log")
	require.NoError(t, Init(Config{Level: "debug", OutputFile: path}))
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	// The rotating writer creates the file lazily, on first write.
	logrus.Debug("probe")
	_, err := os.Stat(path)
	assert.NoError(t, err)

	// Reset the global logger for other packages' tests.
	require.NoError(t, Init(Config{Level: "info"}))
}
