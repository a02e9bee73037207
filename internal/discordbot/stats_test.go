package discordbot

import (
	"strings"
	"testing"
	"time"

	"github.com/haojie06/dallebot/internal/ledger"
	"github.com/stretchr/testify/assert"
)

func TestFormatStatsEmpty(t *testing.T) {
	out := FormatStats(ledger.Snapshot{}, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))

	assert.Contains(t, out, "As of Jan 05, 2024, total runs: 0, total spent: $0.00")
	assert.Contains(t, out, "Stats breakdown")
	assert.Contains(t, out, "# Runs")
	assert.Equal(t, 2, strings.Count(out, "```"))
}
