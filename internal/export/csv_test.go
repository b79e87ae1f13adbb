package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradejournal/internal/domain"
)

func sampleTrades() []domain.Trade {
	entry := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	return []domain.Trade{
		{
			Contract:        "MNQ",
			Side:            domain.Long,
			Status:          domain.StatusWin,
			Quantity:        2,
			EntryPrice:      25100.25,
			ExitPrice:       25150.5,
			EntryTime:       entry,
			ExitTime:        entry.Add(15 * time.Minute),
			NetProfit:       198.525,
			TotalCommission: 2.48,
		},
		{
			Contract:        "ES",
			Side:            domain.Short,
			Status:          domain.StatusLose,
			Quantity:        1,
			EntryPrice:      6900,
			ExitPrice:       6905,
			EntryTime:       entry.Add(time.Hour),
			ExitTime:        entry.Add(2 * time.Hour),
			NetProfit:       -254.5,
			TotalCommission: 4.5,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTrades(), "USD"))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Header, records[0])

	first := records[1]
	assert.Equal(t, "2026-03-02", first[0], "date column is the exit date")
	assert.Equal(t, "2026-03-02T09:30:00Z", first[1])
	assert.Equal(t, "2026-03-02T09:45:00Z", first[2])
	assert.Equal(t, "long", first[3])
	assert.Equal(t, "win", first[4])
	assert.Equal(t, "MNQ", first[5])
	assert.Equal(t, "2", first[6])
	assert.Equal(t, "25100.25", first[7])
	assert.Equal(t, "25150.5", first[8])
	assert.Equal(t, "198.53", first[9], "money is cent-rounded")
	assert.Equal(t, "2.48", first[10])
	assert.Equal(t, "USD", first[11])

	second := records[2]
	assert.Equal(t, "short", second[3])
	assert.Equal(t, "-254.50", second[9])
}

func TestWriteCSV_EmptyTrades(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil, "USD"))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1, "header only")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.csv")
	require.NoError(t, WriteFile(path, sampleTrades(), "USD"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Date,EntryDate,ExitDate"))
}
