package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCSV(t *testing.T) {
	t.Parallel()

	m := NewMemory(zerolog.Nop())
	ctx := context.Background()
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	a, err := m.CreateAccount(ctx, "alice", "h", dec(t, "1000.00"))
	require.NoError(t, err)

	_, err = m.CommitTrade(ctx, buyCommit(t, a.ID, "AAPL", 10, "10.00", "900.00", ts))
	require.NoError(t, err)
	_, err = m.CommitTrade(ctx, buyCommit(t, a.ID, "MSFT", 2, "25.50", "849.00", ts.Add(time.Minute)))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(ctx, &buf, m, a.ID))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t,
		[]string{"id", "symbol", "side", "price", "quantity", "total_amount", "timestamp"},
		rows[0])

	// Most recent first, amounts at display precision.
	assert.Equal(t,
		[]string{"2", "MSFT", "BUY", "25.50", "2", "51.00", "2025-03-01T10:01:00Z"},
		rows[1])
	assert.Equal(t,
		[]string{"1", "AAPL", "BUY", "10.00", "10", "100.00", "2025-03-01T10:00:00Z"},
		rows[2])
}

func TestExportCSVEmptyLog(t *testing.T) {
	t.Parallel()

	m := NewMemory(zerolog.Nop())
	ctx := context.Background()

	a, err := m.CreateAccount(ctx, "alice", "h", dec(t, "1000.00"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(ctx, &buf, m, a.ID))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}
