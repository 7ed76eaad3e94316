package ledger

// Monetary columns are TEXT holding decimal strings; REAL would reintroduce
// the float drift the decimal types exist to avoid. The CHECK constraints
// restate the ledger invariants inside the database itself, so a commit that
// would break solvency or leave a zero-quantity position aborts the
// transaction and rolls back every change made before it.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	password_credential TEXT NOT NULL,
	balance TEXT NOT NULL CHECK (CAST(balance AS REAL) >= 0),
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
	account_id INTEGER NOT NULL,
	symbol TEXT NOT NULL,
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	average_cost TEXT NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (account_id, symbol)
);

CREATE TABLE IF NOT EXISTS transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	account_id INTEGER NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL CHECK (side IN ('BUY','SELL')),
	price TEXT NOT NULL,
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	total_amount TEXT NOT NULL,
	timestamp DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id, id);
`
