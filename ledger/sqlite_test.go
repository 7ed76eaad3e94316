package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := NewSQLite(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)

	rows, err := s.db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('accounts','positions','transactions')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	assert.True(t, found["accounts"])
	assert.True(t, found["positions"])
	assert.True(t, found["transactions"])
}

func TestSQLiteAccounts(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)
	ctx := context.Background()

	a, err := s.CreateAccount(ctx, "alice", "hash1", dec(t, "1000.00"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "hash1", got.Credential)
	assert.True(t, got.Balance.Equal(dec(t, "1000.00")))

	byName, err := s.GetAccountByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byName.ID)

	_, err = s.CreateAccount(ctx, "alice", "hash2", dec(t, "5.00"))
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = s.GetAccount(ctx, 99)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = s.GetAccountByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func buyCommit(t *testing.T, accountID int64, symbol string, qty int64, price, newBalance string, ts time.Time) TradeCommit {
	t.Helper()

	p := dec(t, price)
	return TradeCommit{
		AccountID:  accountID,
		Symbol:     symbol,
		NewBalance: dec(t, newBalance),
		Position: &Position{
			AccountID: accountID,
			Symbol:    symbol,
			Quantity:  qty,
			AvgCost:   p,
			UpdatedAt: ts,
		},
		Record: TransactionRecord{
			AccountID:   accountID,
			Symbol:      symbol,
			Side:        Buy,
			Price:       p,
			Quantity:    qty,
			TotalAmount: p.Mul(decimal.NewFromInt(qty)),
			Timestamp:   ts,
		},
	}
}

func TestSQLiteCommitTradeAppliesAll(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)
	ctx := context.Background()
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	a, err := s.CreateAccount(ctx, "alice", "h", dec(t, "1000.00"))
	require.NoError(t, err)

	rec, err := s.CommitTrade(ctx, buyCommit(t, a.ID, "AAPL", 10, "10.00", "900.00", ts))
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.ID)

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec(t, "900.00")))

	pos, err := s.GetPosition(ctx, a.ID, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(10), pos.Quantity)
	assert.True(t, pos.AvgCost.Equal(dec(t, "10.00")))

	rec2, err := s.CommitTrade(ctx, buyCommit(t, a.ID, "MSFT", 5, "20.00", "800.00", ts.Add(time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec2.ID)

	recs, err := s.ListTransactions(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	// Most recent first.
	assert.Equal(t, int64(2), recs[0].ID)
	assert.Equal(t, "MSFT", recs[0].Symbol)
	assert.Equal(t, int64(1), recs[1].ID)
	assert.True(t, recs[0].TotalAmount.Equal(dec(t, "100.00")))

	positions, err := s.ListPositions(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, positions, 2)
	// Ordered by symbol.
	assert.Equal(t, "AAPL", positions[0].Symbol)
	assert.Equal(t, "MSFT", positions[1].Symbol)
}

func TestSQLiteCommitTradeRollsBack(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)
	ctx := context.Background()
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	a, err := s.CreateAccount(ctx, "alice", "h", dec(t, "1000.00"))
	require.NoError(t, err)

	// The position violates the quantity CHECK. The balance update has
	// already executed inside the transaction when the violation fires, so
	// a correct rollback must restore it.
	bad := buyCommit(t, a.ID, "AAPL", 10, "10.00", "900.00", ts)
	bad.Position.Quantity = 0
	_, err = s.CommitTrade(ctx, bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransactionFailed)

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec(t, "1000.00")), "balance must be restored")

	_, err = s.GetPosition(ctx, a.ID, "AAPL")
	assert.ErrorIs(t, err, ErrPositionNotFound)

	recs, err := s.ListTransactions(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, recs, "no record may exist for the failed attempt")
}

func TestSQLiteCommitTradeRejectsNegativeBalance(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)
	ctx := context.Background()
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	a, err := s.CreateAccount(ctx, "alice", "h", dec(t, "50.00"))
	require.NoError(t, err)

	bad := buyCommit(t, a.ID, "AAPL", 1, "100.00", "-50.00", ts)
	_, err = s.CommitTrade(ctx, bad)
	assert.ErrorIs(t, err, ErrTransactionFailed)

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec(t, "50.00")))
}

func TestSQLitePositionRemovedOnNilCommit(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)
	ctx := context.Background()
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	a, err := s.CreateAccount(ctx, "alice", "h", dec(t, "1000.00"))
	require.NoError(t, err)

	_, err = s.CommitTrade(ctx, buyCommit(t, a.ID, "AAPL", 5, "10.00", "950.00", ts))
	require.NoError(t, err)

	sell := TradeCommit{
		AccountID:  a.ID,
		Symbol:     "AAPL",
		NewBalance: dec(t, "1010.00"),
		Position:   nil, // full liquidation removes the entry
		Record: TransactionRecord{
			AccountID:   a.ID,
			Symbol:      "AAPL",
			Side:        Sell,
			Price:       dec(t, "12.00"),
			Quantity:    5,
			TotalAmount: dec(t, "60.00"),
			Timestamp:   ts.Add(time.Minute),
		},
	}
	_, err = s.CommitTrade(ctx, sell)
	require.NoError(t, err)

	_, err = s.GetPosition(ctx, a.ID, "AAPL")
	assert.ErrorIs(t, err, ErrPositionNotFound)

	positions, err := s.ListPositions(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestSQLiteAvgCostKeepsFullPrecision(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)
	ctx := context.Background()
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	a, err := s.CreateAccount(ctx, "alice", "h", dec(t, "1000.00"))
	require.NoError(t, err)

	c := buyCommit(t, a.ID, "XYZ", 3, "10.00", "970.00", ts)
	c.Position.AvgCost = dec(t, "33.3333333333333333")
	_, err = s.CommitTrade(ctx, c)
	require.NoError(t, err)

	pos, err := s.GetPosition(ctx, a.ID, "XYZ")
	require.NoError(t, err)
	assert.True(t, pos.AvgCost.Equal(dec(t, "33.3333333333333333")))
	assert.True(t, pos.DisplayCost().Equal(dec(t, "33.33")))
}
