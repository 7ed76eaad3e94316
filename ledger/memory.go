package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Memory is the transient storage backend used when the durable store cannot
// be opened. State lives in process-local maps and is lost on exit.
//
// CommitTrade performs every check against staged values before the first
// mutation, so a rejected commit leaves the maps exactly as they were. A
// single mutex serializes all access; transaction ids mirror the sqlite
// AUTOINCREMENT behavior (monotonic in submission order).
type Memory struct {
	mu            sync.Mutex
	nextAccountID int64
	nextTxnID     int64
	accounts      map[int64]Account
	usernames     map[string]int64
	positions     map[int64]map[string]Position
	txns          []TransactionRecord
	log           zerolog.Logger
}

func NewMemory(log zerolog.Logger) *Memory {
	return &Memory{
		accounts:  make(map[int64]Account),
		usernames: make(map[string]int64),
		positions: make(map[int64]map[string]Position),
		log:       log.With().Str("store", "memory").Logger(),
	}
}

func (m *Memory) GetAccount(ctx context.Context, id int64) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return a, nil
}

func (m *Memory) GetAccountByUsername(ctx context.Context, username string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.usernames[username]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return m.accounts[id], nil
}

func (m *Memory) CreateAccount(ctx context.Context, username, credential string, balance decimal.Decimal) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.usernames[username]; ok {
		return Account{}, ErrUsernameTaken
	}

	m.nextAccountID++
	a := Account{
		ID:         m.nextAccountID,
		Username:   username,
		Credential: credential,
		Balance:    balance,
		CreatedAt:  time.Now().UTC(),
	}
	m.accounts[a.ID] = a
	m.usernames[username] = a.ID

	m.log.Info().Int64("account", a.ID).Str("username", username).Msg("account created")
	return a, nil
}

func (m *Memory) GetPosition(ctx context.Context, accountID int64, symbol string) (Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.positions[accountID][symbol]
	if !ok {
		return Position{}, ErrPositionNotFound
	}
	return p, nil
}

func (m *Memory) ListPositions(ctx context.Context, accountID int64) ([]Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Position
	for _, p := range m.positions[accountID] {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (m *Memory) ListTransactions(ctx context.Context, accountID int64) ([]TransactionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []TransactionRecord
	for i := len(m.txns) - 1; i >= 0; i-- {
		if m.txns[i].AccountID == accountID {
			out = append(out, m.txns[i])
		}
	}
	return out, nil
}

// CommitTrade applies the computed trade to the maps as one unit. The same
// invariants the sqlite CHECK constraints enforce are rechecked here before
// anything is written, so both backends reject and preserve state
// identically.
func (m *Memory) CommitTrade(ctx context.Context, c TradeCommit) (TransactionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[c.AccountID]; !ok {
		return TransactionRecord{}, ErrTransactionFailed
	}
	if c.NewBalance.Sign() < 0 {
		return TransactionRecord{}, ErrTransactionFailed
	}
	if c.Position != nil && c.Position.Quantity <= 0 {
		return TransactionRecord{}, ErrTransactionFailed
	}
	if c.Record.Quantity <= 0 || !c.Record.Side.Valid() {
		return TransactionRecord{}, ErrTransactionFailed
	}

	// All checks passed; swap the staged state in.
	a := m.accounts[c.AccountID]
	a.Balance = c.NewBalance
	m.accounts[c.AccountID] = a

	if c.Position != nil {
		if m.positions[c.AccountID] == nil {
			m.positions[c.AccountID] = make(map[string]Position)
		}
		m.positions[c.AccountID][c.Position.Symbol] = *c.Position
	} else {
		delete(m.positions[c.AccountID], c.Symbol)
	}

	m.nextTxnID++
	rec := c.Record
	rec.ID = m.nextTxnID
	m.txns = append(m.txns, rec)

	m.log.Info().
		Int64("account", c.AccountID).
		Str("symbol", rec.Symbol).
		Str("side", string(rec.Side)).
		Int64("txn", rec.ID).
		Msg("trade committed")

	return rec, nil
}

func (m *Memory) Close() error {
	return nil
}
