// Package storage persists the ledger in SQLite: accounts, the
// transaction log, daily snapshots and the sequence counter.
//
// All monetary values are stored as exact decimal TEXT and dates as
// ISO YYYY-MM-DD TEXT, so SQL ordering on date matches chronological
// ordering.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dejotaortega/finanzas-deiner/internal/core"

	_ "modernc.org/sqlite"
)

// recordRetries is how often a busy write transaction is retried
// before the operation fails with core.ErrConcurrency.
const recordRetries = 3

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// A single connection serializes writers process-wide, which is
	// what keeps the sequence counter and the balance chains race-free.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ---- accounts ----

func (r *SQLiteRepository) CreateAccount(ctx context.Context, name string, balance decimal.Decimal) (core.Account, error) {
	account := core.Account{
		ID:      uuid.NewString(),
		Name:    name,
		Balance: balance,
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, name, balance) VALUES (?, ?, ?)`,
		account.ID, account.Name, account.Balance.String())
	if err != nil {
		if isUniqueViolation(err) {
			return core.Account{}, fmt.Errorf("create account %q: %w", name, core.ErrDuplicateName)
		}
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}

	slog.InfoContext(ctx, "Account created",
		"id", account.ID,
		"name", account.Name,
		"balance", account.Balance.String())

	return account, nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id string) (core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, balance FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

// FindAccountByName resolves an account name case-insensitively.
func (r *SQLiteRepository) FindAccountByName(ctx context.Context, name string) (core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, balance FROM accounts WHERE name = ? COLLATE NOCASE`, name)
	return scanAccount(row)
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, balance FROM accounts ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *SQLiteRepository) UpdateAccountBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET balance = ? WHERE id = ?`, balance.String(), id)
	if err != nil {
		return fmt.Errorf("update account balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update account %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// DeleteAccount removes the account unconditionally. Transactions
// referencing it stay in the log untouched.
func (r *SQLiteRepository) DeleteAccount(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

// SumAccountBalances totals the stored balances of all accounts. The
// sum runs in Go so decimal arithmetic stays exact.
func (r *SQLiteRepository) SumAccountBalances(ctx context.Context) (decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT balance FROM accounts`)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum account balances: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return decimal.Zero, fmt.Errorf("scan balance: %w", err)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse stored balance %q: %w", s, err)
		}
		total = total.Add(d)
	}
	return total, rows.Err()
}

// ---- transactions (read path) ----

const transactionColumns = `sequence_id, date, description, amount, kind,
	account_name, category, account_balance, global_opening, global_closing`

// ListTransactions returns the full log ordered by date, then sequence id.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY date, sequence_id`)
}

// ListTransactionsForDate returns one date's transactions ordered by
// sequence id ascending.
func (r *SQLiteRepository) ListTransactionsForDate(ctx context.Context, date core.Date) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE date = ? ORDER BY sequence_id`,
		date.String())
}

// ListTransactionsByKind returns all transactions of one kind ordered
// by date, then sequence id.
func (r *SQLiteRepository) ListTransactionsByKind(ctx context.Context, kind core.Kind) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE kind = ? ORDER BY date, sequence_id`,
		string(kind))
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// CurrentGlobalBalance resolves the live portfolio balance: the
// global closing of the latest transaction, or the sum of stored
// account balances when the chain is empty or broken at its head.
func (r *SQLiteRepository) CurrentGlobalBalance(ctx context.Context) (decimal.Decimal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT global_closing FROM transactions ORDER BY sequence_id DESC LIMIT 1`)
	closing, ok, err := scanNullableDecimal(row)
	if err != nil {
		return decimal.Zero, err
	}
	if ok {
		return closing, nil
	}
	return r.SumAccountBalances(ctx)
}

// ---- snapshots ----

func (r *SQLiteRepository) GetSnapshot(ctx context.Context, date core.Date) (core.DailySnapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT date, opening_balance, closing_balance FROM daily_snapshots WHERE date = ?`,
		date.String())
	return scanSnapshot(row)
}

func (r *SQLiteRepository) ListSnapshots(ctx context.Context) ([]core.DailySnapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, opening_balance, closing_balance FROM daily_snapshots ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []core.DailySnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// UpsertSnapshot creates or refreshes a date's snapshot outside the
// record path. Opening is written once; closing always follows the
// latest value.
func (r *SQLiteRepository) UpsertSnapshot(ctx context.Context, snap core.DailySnapshot) error {
	_, err := r.db.ExecContext(ctx, upsertSnapshotSQL,
		snap.Date.String(), snap.Opening.String(), snap.Closing.String())
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

const upsertSnapshotSQL = `
	INSERT INTO daily_snapshots (date, opening_balance, closing_balance)
	VALUES (?, ?, ?)
	ON CONFLICT (date) DO UPDATE SET closing_balance = excluded.closing_balance`

// ---- write transaction scope ----

// LedgerTx is the atomic unit of the record path: the sequence
// increment, the balance-chain reads and all writes happen against
// one SQL transaction, so concurrent recorders serialize instead of
// racing on the chains.
type LedgerTx struct {
	tx *sql.Tx
}

// RecordTx runs fn inside a write transaction, retrying when SQLite
// reports contention. When retries are exhausted the operation fails
// atomically with core.ErrConcurrency and nothing is persisted.
func (r *SQLiteRepository) RecordTx(ctx context.Context, fn func(*LedgerTx) error) error {
	var lastErr error
	for attempt := 0; attempt < recordRetries; attempt++ {
		err := r.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		if !isBusy(err) {
			return err
		}
		lastErr = err
		slog.WarnContext(ctx, "Ledger write contention, retrying",
			"attempt", attempt+1, "error", err)
	}
	return fmt.Errorf("ledger write after %d attempts: %v: %w", recordRetries, lastErr, core.ErrConcurrency)
}

func (r *SQLiteRepository) runTx(ctx context.Context, fn func(*LedgerTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&LedgerTx{tx: tx}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// FindAccountByName resolves an account name case-insensitively
// within the transaction scope.
func (l *LedgerTx) FindAccountByName(name string) (core.Account, error) {
	row := l.tx.QueryRow(
		`SELECT id, name, balance FROM accounts WHERE name = ? COLLATE NOCASE`, name)
	return scanAccount(row)
}

// LastAccountBalance returns the running balance of the most recent
// transaction referencing the account. ok is false when the account
// has no transactions yet, or its latest row predates balance chaining.
func (l *LedgerTx) LastAccountBalance(accountName string) (decimal.Decimal, bool, error) {
	row := l.tx.QueryRow(
		`SELECT account_balance FROM transactions
		 WHERE account_name = ? ORDER BY sequence_id DESC LIMIT 1`, accountName)
	return scanNullableDecimal(row)
}

// LastGlobalClosing returns the global closing balance of the most
// recent transaction overall. ok is false when the log is empty or
// the latest row predates balance chaining.
func (l *LedgerTx) LastGlobalClosing() (decimal.Decimal, bool, error) {
	row := l.tx.QueryRow(
		`SELECT global_closing FROM transactions ORDER BY sequence_id DESC LIMIT 1`)
	return scanNullableDecimal(row)
}

// SumAccountBalances totals the stored account balances within the
// transaction scope. Seeding fallback for empty chains.
func (l *LedgerTx) SumAccountBalances() (decimal.Decimal, error) {
	rows, err := l.tx.Query(`SELECT balance FROM accounts`)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum account balances: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return decimal.Zero, fmt.Errorf("scan balance: %w", err)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse stored balance %q: %w", s, err)
		}
		total = total.Add(d)
	}
	return total, rows.Err()
}

// NextSequenceID atomically increments the sequence counter and
// returns the new value. The counter row is created by the schema
// migration, so the first issued id is 1.
func (l *LedgerTx) NextSequenceID() (int64, error) {
	var id int64
	err := l.tx.QueryRow(
		`UPDATE sequence_counter SET value = value + 1 WHERE id = 1 RETURNING value`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("increment sequence counter: %w", err)
	}
	return id, nil
}

func (l *LedgerTx) InsertTransaction(t core.Transaction) error {
	_, err := l.tx.Exec(
		`INSERT INTO transactions (`+transactionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.SequenceID, t.Date.String(), t.Description, t.Amount.String(), string(t.Kind),
		t.AccountName, t.Category, t.AccountBalance.String(), t.GlobalOpening.String(),
		t.GlobalClosing.String())
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (l *LedgerTx) UpdateAccountBalance(id string, balance decimal.Decimal) error {
	_, err := l.tx.Exec(`UPDATE accounts SET balance = ? WHERE id = ?`, balance.String(), id)
	if err != nil {
		return fmt.Errorf("update account balance: %w", err)
	}
	return nil
}

func (l *LedgerTx) UpsertSnapshot(snap core.DailySnapshot) error {
	_, err := l.tx.Exec(upsertSnapshotSQL,
		snap.Date.String(), snap.Opening.String(), snap.Closing.String())
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// ---- scanning ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (core.Account, error) {
	var (
		a       core.Account
		balance string
	)
	if err := row.Scan(&a.ID, &a.Name, &balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Account{}, core.ErrNotFound
		}
		return core.Account{}, fmt.Errorf("scan account: %w", err)
	}
	d, err := decimal.NewFromString(balance)
	if err != nil {
		return core.Account{}, fmt.Errorf("parse stored balance %q: %w", balance, err)
	}
	a.Balance = d
	return a, nil
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t                              core.Transaction
		date, amount, kind             string
		accBalance, gOpening, gClosing sql.NullString
	)
	err := row.Scan(&t.SequenceID, &date, &t.Description, &amount, &kind,
		&t.AccountName, &t.Category, &accBalance, &gOpening, &gClosing)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	if t.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, err
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	t.Kind = core.Kind(kind)
	if t.AccountBalance, err = decimalOrZero(accBalance); err != nil {
		return core.Transaction{}, err
	}
	if t.GlobalOpening, err = decimalOrZero(gOpening); err != nil {
		return core.Transaction{}, err
	}
	if t.GlobalClosing, err = decimalOrZero(gClosing); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func scanSnapshot(row rowScanner) (core.DailySnapshot, error) {
	var (
		snap                   core.DailySnapshot
		date, opening, closing string
	)
	if err := row.Scan(&date, &opening, &closing); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.DailySnapshot{}, core.ErrNotFound
		}
		return core.DailySnapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}

	var err error
	if snap.Date, err = core.ParseDate(date); err != nil {
		return core.DailySnapshot{}, err
	}
	if snap.Opening, err = decimal.NewFromString(opening); err != nil {
		return core.DailySnapshot{}, fmt.Errorf("parse stored opening balance %q: %w", opening, err)
	}
	if snap.Closing, err = decimal.NewFromString(closing); err != nil {
		return core.DailySnapshot{}, fmt.Errorf("parse stored closing balance %q: %w", closing, err)
	}
	return snap, nil
}

func decimalOrZero(s sql.NullString) (decimal.Decimal, error) {
	if !s.Valid {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse stored decimal %q: %w", s.String, err)
	}
	return d, nil
}

func scanNullableDecimal(row rowScanner) (decimal.Decimal, bool, error) {
	var s sql.NullString
	if err := row.Scan(&s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("scan decimal: %w", err)
	}
	if !s.Valid {
		return decimal.Zero, false, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("parse stored decimal %q: %w", s.String, err)
	}
	return d, true, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
