package ledger

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SeedAccount describes the default account created when a store opens
// empty, so a fresh process always has something to trade against.
type SeedAccount struct {
	Username   string
	Credential string
	Balance    decimal.Decimal
}

// Open selects the storage backend for the process lifetime. It tries the
// durable sqlite store first; on any initialization failure it logs the
// cause and permanently downgrades to the in-memory store. The downgrade is
// one-shot: there is no later retry against the durable store. Whichever
// backend wins is seeded with the default account if it holds none.
func Open(ctx context.Context, path string, seed SeedAccount, log zerolog.Logger) Store {
	s, err := openDurable(ctx, path, seed, log)
	if err == nil {
		log.Info().Str("path", path).Msg("durable store ready")
		return s
	}

	log.Warn().Err(err).Str("path", path).
		Msg("durable store unavailable, using transient in-memory store")

	m := NewMemory(log)
	// A fresh memory store is always empty.
	if _, err := m.CreateAccount(ctx, seed.Username, seed.Credential, seed.Balance); err != nil {
		log.Error().Err(err).Msg("seed transient store")
	}
	return m
}

func openDurable(ctx context.Context, path string, seed SeedAccount, log zerolog.Logger) (*SQLite, error) {
	s, err := NewSQLite(path, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	n, err := s.countAccounts(ctx)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if n == 0 {
		if _, err := s.CreateAccount(ctx, seed.Username, seed.Credential, seed.Balance); err != nil {
			s.Close()
			return nil, fmt.Errorf("%w: seed account: %v", ErrStorageUnavailable, err)
		}
	}
	return s, nil
}
