// Package ledger owns the account, position and transaction state of the
// paper trading system. A Store is the single writer for all three
// collections; nothing outside a Store mutates ledger state, and the only
// mutation path for trades is the atomic CommitTrade contract.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyPrecision is the display precision of monetary amounts. Average
// cost is kept at full precision between trades and rounded only when read.
const CurrencyPrecision int32 = 2

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

type Account struct {
	ID         int64
	Username   string
	Credential string // opaque password credential, never interpreted here
	Balance    decimal.Decimal
	CreatedAt  time.Time
}

// Position is an account's holding in one symbol. An entry exists if and
// only if Quantity > 0; a sell that empties the position removes the entry.
type Position struct {
	AccountID int64
	Symbol    string
	Quantity  int64
	AvgCost   decimal.Decimal
	UpdatedAt time.Time
}

// DisplayCost returns the weighted average cost rounded to currency
// precision. The unrounded value stays in AvgCost so repeated buys do not
// compound rounding error.
func (p Position) DisplayCost() decimal.Decimal {
	return p.AvgCost.Round(CurrencyPrecision)
}

// CostBasis returns quantity times average cost at display precision.
func (p Position) CostBasis() decimal.Decimal {
	return p.AvgCost.Mul(decimal.NewFromInt(p.Quantity)).Round(CurrencyPrecision)
}

// TransactionRecord is one immutable entry in the append-only trade log.
// Ids increase strictly in commit order on a given store.
type TransactionRecord struct {
	ID          int64
	AccountID   int64
	Symbol      string
	Side        Side
	Price       decimal.Decimal
	Quantity    int64
	TotalAmount decimal.Decimal
	Timestamp   time.Time
}

// TradeCommit carries the fully computed outcome of one trade. The executor
// does the math; the store's only job is to persist NewBalance, Position and
// Record as one indivisible unit. A nil Position removes the
// (account, symbol) entry.
type TradeCommit struct {
	AccountID  int64
	Symbol     string
	NewBalance decimal.Decimal
	Position   *Position
	Record     TransactionRecord // ID is assigned by the store
}

// Store is the storage backend contract. Both implementations, the durable
// sqlite store and the transient in-memory store, must behave identically:
// CommitTrade either applies the balance, position and log changes together
// or leaves pre-trade state untouched.
type Store interface {
	GetAccount(ctx context.Context, id int64) (Account, error)
	GetAccountByUsername(ctx context.Context, username string) (Account, error)
	CreateAccount(ctx context.Context, username, credential string, balance decimal.Decimal) (Account, error)

	GetPosition(ctx context.Context, accountID int64, symbol string) (Position, error)
	ListPositions(ctx context.Context, accountID int64) ([]Position, error)

	// ListTransactions returns the account's trade log, most recent first.
	ListTransactions(ctx context.Context, accountID int64) ([]TransactionRecord, error)

	// CommitTrade persists the computed trade atomically and returns the
	// record with its assigned id. Commits are serialized store-wide so ids
	// and timestamps increase in submission order.
	CommitTrade(ctx context.Context, commit TradeCommit) (TransactionRecord, error)

	Close() error
}
