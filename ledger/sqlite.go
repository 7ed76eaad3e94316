package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SQLite is the durable storage backend. CommitTrade runs inside a single
// database transaction; the mutex serializes commits so transaction ids
// strictly follow submission order even though database/sql pools
// connections underneath.
type SQLite struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

func NewSQLite(path string, log zerolog.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{
		db:  db,
		log: log.With().Str("store", "sqlite").Logger(),
	}, nil
}

func (s *SQLite) CreateAccount(ctx context.Context, username, credential string, balance decimal.Decimal) (Account, error) {
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (username, password_credential, balance, created_at)
		VALUES (?, ?, ?, ?)`,
		username, credential, balance.String(), now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return Account{}, ErrUsernameTaken
		}
		return Account{}, fmt.Errorf("create account: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Account{}, fmt.Errorf("create account: %w", err)
	}

	s.log.Info().Int64("account", id).Str("username", username).Msg("account created")

	return Account{
		ID:         id,
		Username:   username,
		Credential: credential,
		Balance:    balance,
		CreatedAt:  now,
	}, nil
}

// CommitTrade applies the computed balance, position and log entry as one
// transaction. Any failure, including a CHECK constraint rejecting the new
// state, rolls the whole trade back and leaves pre-trade state intact.
func (s *SQLite) CommitTrade(ctx context.Context, c TradeCommit) (TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TransactionRecord{}, fmt.Errorf("%w: begin: %v", ErrTransactionFailed, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = ? WHERE id = ?`,
		c.NewBalance.String(), c.AccountID,
	)
	if err != nil {
		return TransactionRecord{}, fmt.Errorf("%w: update balance: %v", ErrTransactionFailed, err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return TransactionRecord{}, fmt.Errorf("%w: account %d missing", ErrTransactionFailed, c.AccountID)
	}

	if c.Position != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO positions (account_id, symbol, quantity, average_cost, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(account_id, symbol) DO UPDATE SET
				quantity = excluded.quantity,
				average_cost = excluded.average_cost,
				updated_at = excluded.updated_at`,
			c.Position.AccountID, c.Position.Symbol, c.Position.Quantity,
			c.Position.AvgCost.String(), c.Position.UpdatedAt,
		)
		if err != nil {
			return TransactionRecord{}, fmt.Errorf("%w: upsert position: %v", ErrTransactionFailed, err)
		}
	} else {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM positions WHERE account_id = ? AND symbol = ?`,
			c.AccountID, c.Symbol,
		)
		if err != nil {
			return TransactionRecord{}, fmt.Errorf("%w: remove position: %v", ErrTransactionFailed, err)
		}
	}

	rec := c.Record
	res, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (account_id, symbol, side, price, quantity, total_amount, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.AccountID, rec.Symbol, string(rec.Side),
		rec.Price.String(), rec.Quantity, rec.TotalAmount.String(), rec.Timestamp,
	)
	if err != nil {
		return TransactionRecord{}, fmt.Errorf("%w: insert transaction: %v", ErrTransactionFailed, err)
	}
	rec.ID, err = res.LastInsertId()
	if err != nil {
		return TransactionRecord{}, fmt.Errorf("%w: transaction id: %v", ErrTransactionFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return TransactionRecord{}, fmt.Errorf("%w: commit: %v", ErrTransactionFailed, err)
	}

	s.log.Info().
		Int64("account", c.AccountID).
		Str("symbol", rec.Symbol).
		Str("side", string(rec.Side)).
		Int64("txn", rec.ID).
		Msg("trade committed")

	return rec, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
