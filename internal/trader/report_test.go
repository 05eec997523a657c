package trader

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBlock(t *testing.T) {
	got := formatBlock("ACCOUNT INFO", []string{"USD: 1000.00", "BTC: 0.05000000"})

	lines := strings.Split(got, "\n")
	require.Len(t, lines, 5)
	assert.Empty(t, lines[0], "the block starts on its own line")

	header := strings.TrimPrefix(lines[1], "  ")
	assert.True(t, strings.HasPrefix(header, "== [ ACCOUNT INFO ] "))
	assert.Len(t, header, blockWidth, "the banner is padded out to the full width")

	assert.Equal(t, "  USD: 1000.00", lines[2])
	assert.Equal(t, "  BTC: 0.05000000", lines[3])
	assert.Equal(t, "  "+strings.Repeat("=", blockWidth), lines[4])
}

func TestFormatBlockLongTitle(t *testing.T) {
	title := strings.Repeat("X", blockWidth)
	got := formatBlock(title, nil)
	assert.Contains(t, got, "== [ "+title+" ] ", "an overlong title is kept, not truncated")
}

func TestReporterLevels(t *testing.T) {
	reporter, hook := testReporter()

	reporter.Block("HOLD", "Hold current balance")
	reporter.ErrorBlock("BUY REJECTED", "Insufficient funds (status 400)")

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, logrus.InfoLevel, entries[0].Level)
	assert.Contains(t, entries[0].Message, "== [ HOLD ]")
	assert.Equal(t, logrus.ErrorLevel, entries[1].Level)
	assert.Contains(t, entries[1].Message, "== [ BUY REJECTED ]")
}

func TestBalanceLines(t *testing.T) {
	lines := balanceLines(snapshot("1052.3075", "0.123456789"))

	require.Len(t, lines, 2)
	assert.Equal(t, "USD: 1052.31", lines[0])
	assert.Equal(t, "BTC: 0.12345679", lines[1])
}
