// Package engine executes trade requests against whichever storage backend
// the selector chose at startup. The engine holds no ledger state of its
// own; it validates, computes the new balance and position, and hands the
// result to the store's atomic commit.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/papertrader/internal/id"
	"github.com/rustyeddy/papertrader/ledger"
)

type Engine struct {
	store ledger.Store
	now   func() time.Time
	log   zerolog.Logger
}

func New(store ledger.Store, log zerolog.Logger) *Engine {
	return &Engine{
		store: store,
		now:   time.Now,
		log:   log.With().Str("component", "engine").Logger(),
	}
}

// SetTimeSource overrides the commit timestamp clock. Tests and replay
// tooling use this; production leaves the default time.Now.
func (e *Engine) SetTimeSource(now func() time.Time) {
	e.now = now
}

// TradeResult is the outcome of a committed trade.
type TradeResult struct {
	Balance decimal.Decimal
	Record  ledger.TransactionRecord
}

// ExecuteTrade validates and commits a single trade. The execution price is
// taken from the caller as-is; there is no cross-check against a market
// feed. Rejections leave the ledger untouched and write no transaction
// record. A ledger.ErrTransactionFailed from the store means the backend
// rolled back; the identical trade is safe to retry.
func (e *Engine) ExecuteTrade(ctx context.Context, accountID int64, symbol string, side ledger.Side, price decimal.Decimal, quantity int64) (TradeResult, error) {
	log := e.log.With().
		Str("req", id.New()).
		Int64("account", accountID).
		Str("symbol", symbol).
		Str("side", string(side)).
		Int64("quantity", quantity).
		Logger()

	log.Debug().Str("state", StateReceived.String()).Msg("trade received")
	log.Debug().Str("state", StateValidating.String()).Msg("validating")

	if symbol == "" {
		return reject(log, &ledger.ValidationError{Field: "symbol", Reason: "must not be empty"})
	}
	if !side.Valid() {
		return reject(log, &ledger.ValidationError{Field: "side", Reason: "must be BUY or SELL"})
	}
	if quantity <= 0 {
		return reject(log, &ledger.ValidationError{Field: "quantity", Reason: "must be positive"})
	}
	if price.Sign() <= 0 {
		return reject(log, &ledger.ValidationError{Field: "price", Reason: "must be positive"})
	}

	account, err := e.store.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return reject(log, err)
		}
		return TradeResult{}, fmt.Errorf("load account: %w", err)
	}

	total := price.Mul(decimal.NewFromInt(quantity))

	var (
		newBalance decimal.Decimal
		newPos     *ledger.Position
	)

	ts := e.now()

	switch side {
	case ledger.Buy:
		if account.Balance.LessThan(total) {
			return reject(log, ledger.ErrInsufficientFunds)
		}
		newBalance = account.Balance.Sub(total)

		pos, err := e.store.GetPosition(ctx, accountID, symbol)
		switch {
		case errors.Is(err, ledger.ErrPositionNotFound):
			newPos = &ledger.Position{
				AccountID: accountID,
				Symbol:    symbol,
				Quantity:  quantity,
				AvgCost:   price,
				UpdatedAt: ts,
			}
		case err != nil:
			return TradeResult{}, fmt.Errorf("load position: %w", err)
		default:
			// Weighted average cost over the prior and new lots, kept at
			// full precision so repeated buys do not accumulate rounding.
			oldQty := decimal.NewFromInt(pos.Quantity)
			newQty := pos.Quantity + quantity
			newAvg := oldQty.Mul(pos.AvgCost).Add(total).Div(decimal.NewFromInt(newQty))
			newPos = &ledger.Position{
				AccountID: accountID,
				Symbol:    symbol,
				Quantity:  newQty,
				AvgCost:   newAvg,
				UpdatedAt: ts,
			}
		}

	case ledger.Sell:
		pos, err := e.store.GetPosition(ctx, accountID, symbol)
		if errors.Is(err, ledger.ErrPositionNotFound) {
			return reject(log, ledger.ErrInsufficientHoldings)
		}
		if err != nil {
			return TradeResult{}, fmt.Errorf("load position: %w", err)
		}
		if pos.Quantity < quantity {
			return reject(log, ledger.ErrInsufficientHoldings)
		}

		newBalance = account.Balance.Add(total)

		if remaining := pos.Quantity - quantity; remaining > 0 {
			newPos = &ledger.Position{
				AccountID: accountID,
				Symbol:    symbol,
				Quantity:  remaining,
				AvgCost:   pos.AvgCost, // sells never move the cost basis
				UpdatedAt: ts,
			}
		}
		// remaining == 0 leaves newPos nil: the entry is removed entirely.
	}

	log.Debug().Str("state", StateApplying.String()).Msg("applying")

	rec, err := e.store.CommitTrade(ctx, ledger.TradeCommit{
		AccountID:  accountID,
		Symbol:     symbol,
		NewBalance: newBalance,
		Position:   newPos,
		Record: ledger.TransactionRecord{
			AccountID:   accountID,
			Symbol:      symbol,
			Side:        side,
			Price:       price,
			Quantity:    quantity,
			TotalAmount: total,
			Timestamp:   ts,
		},
	})
	if err != nil {
		log.Error().Err(err).Str("state", StateRolledBack.String()).Msg("trade rolled back")
		return TradeResult{}, err
	}

	log.Info().
		Str("state", StateCommitted.String()).
		Int64("txn", rec.ID).
		Str("balance", newBalance.StringFixed(ledger.CurrencyPrecision)).
		Msg("trade committed")

	return TradeResult{Balance: newBalance, Record: rec}, nil
}

func reject(log zerolog.Logger, err error) (TradeResult, error) {
	log.Info().Err(err).Str("state", StateRejected.String()).Msg("trade rejected")
	return TradeResult{}, err
}
