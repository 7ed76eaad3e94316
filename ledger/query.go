package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

func (s *SQLite) GetAccount(ctx context.Context, id int64) (Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_credential, balance, created_at
		FROM accounts
		WHERE id = ?`, id)
	return scanAccount(row)
}

func (s *SQLite) GetAccountByUsername(ctx context.Context, username string) (Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_credential, balance, created_at
		FROM accounts
		WHERE username = ?`, username)
	return scanAccount(row)
}

func (s *SQLite) GetPosition(ctx context.Context, accountID int64, symbol string) (Position, error) {
	var (
		p       Position
		avgCost string
	)

	row := s.db.QueryRowContext(ctx, `
		SELECT account_id, symbol, quantity, average_cost, updated_at
		FROM positions
		WHERE account_id = ? AND symbol = ?`, accountID, symbol)

	err := row.Scan(&p.AccountID, &p.Symbol, &p.Quantity, &avgCost, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return Position{}, ErrPositionNotFound
	}
	if err != nil {
		return Position{}, fmt.Errorf("get position: %w", err)
	}

	p.AvgCost, err = decimal.NewFromString(avgCost)
	if err != nil {
		return Position{}, fmt.Errorf("parse average cost: %w", err)
	}
	return p, nil
}

func (s *SQLite) ListPositions(ctx context.Context, accountID int64) ([]Position, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT account_id, symbol, quantity, average_cost, updated_at
		FROM positions
		WHERE account_id = ?
		ORDER BY symbol ASC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()

	var out []Position
	for rows.Next() {
		var (
			p       Position
			avgCost string
		)
		if err := rows.Scan(&p.AccountID, &p.Symbol, &p.Quantity, &avgCost, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		if p.AvgCost, err = decimal.NewFromString(avgCost); err != nil {
			return nil, fmt.Errorf("parse average cost: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLite) ListTransactions(ctx context.Context, accountID int64) ([]TransactionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, symbol, side, price, quantity, total_amount, timestamp
		FROM transactions
		WHERE account_id = ?
		ORDER BY id DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []TransactionRecord
	for rows.Next() {
		var (
			rec         TransactionRecord
			side        string
			price       string
			totalAmount string
		)
		err := rows.Scan(&rec.ID, &rec.AccountID, &rec.Symbol, &side,
			&price, &rec.Quantity, &totalAmount, &rec.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		rec.Side = Side(side)
		if rec.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse price: %w", err)
		}
		if rec.TotalAmount, err = decimal.NewFromString(totalAmount); err != nil {
			return nil, fmt.Errorf("parse total amount: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// countAccounts backs the selector's empty-store check before seeding.
func (s *SQLite) countAccounts(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

func scanAccount(row *sql.Row) (Account, error) {
	var (
		a       Account
		balance string
	)

	err := row.Scan(&a.ID, &a.Username, &a.Credential, &balance, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("get account: %w", err)
	}

	a.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return Account{}, fmt.Errorf("parse balance: %w", err)
	}
	return a, nil
}
