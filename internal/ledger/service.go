// Package ledger implements the balance engine on top of the storage
// layer: it records transactions, maintains the per-account and global
// running-balance chains, keeps daily snapshots and serves the
// reporting reads.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dejotaortega/finanzas-deiner/internal/core"
	"github.com/dejotaortega/finanzas-deiner/internal/storage"
)

// EventPublisher receives a notification after each recorded
// transaction. Publishing is best-effort: failures are logged, never
// surfaced to the caller.
type EventPublisher interface {
	PublishTransactionRecorded(ctx context.Context, sequenceID int64, date string) error
}

// Service orchestrates the ledger engine. All operations are safe for
// concurrent use; the write path serializes on the storage layer's
// transaction scope.
type Service struct {
	store     *storage.SQLiteRepository
	publisher EventPublisher
	catalog   core.Catalog
}

func NewService(store *storage.SQLiteRepository, publisher EventPublisher, catalog core.Catalog) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		catalog:   catalog,
	}
}

// Catalog returns the category catalog the service was configured with.
func (s *Service) Catalog() core.Catalog { return s.catalog }

// ---- accounts ----

// CreateAccount creates a named account with an initial balance. The
// name must be non-empty and unique case-insensitively.
func (s *Service) CreateAccount(ctx context.Context, name string, initialBalance decimal.Decimal) (core.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Account{}, fmt.Errorf("account name is required: %w", core.ErrValidation)
	}
	return s.store.CreateAccount(ctx, name, initialBalance)
}

// UpdateAccountBalance overwrites an account's stored balance,
// bypassing the transaction chain. The raw value may be a currency
// formatted string; unparsable input stores 0.
func (s *Service) UpdateAccountBalance(ctx context.Context, accountID, raw string) error {
	balance := core.ParseCurrency(raw)
	if err := s.store.UpdateAccountBalance(ctx, accountID, balance); err != nil {
		return fmt.Errorf("update account %s: %w", accountID, err)
	}
	slog.InfoContext(ctx, "Account balance overwritten",
		"account_id", accountID, "balance", balance.String())
	return nil
}

// DeleteAccount removes the account. Its transactions stay in the log.
func (s *Service) DeleteAccount(ctx context.Context, accountID string) error {
	return s.store.DeleteAccount(ctx, accountID)
}

func (s *Service) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return s.store.ListAccounts(ctx)
}

// ---- transaction recorder ----

// RecordInput carries the validated primitive inputs of a new
// transaction. RawAmount follows the lenient parsing rule: an
// unparsable magnitude records as zero.
type RecordInput struct {
	Date        core.Date
	Description string
	RawAmount   string
	Kind        core.Kind
	AccountName string
	Category    string
}

// RecordTransaction appends one transaction to the ledger: it
// resolves the account, sign-normalizes the amount, extends both
// running-balance chains, assigns the next sequence id, persists the
// row, updates the account's live balance and upserts the day's
// snapshot. Everything happens in a single storage transaction, so
// concurrent recorders serialize rather than race on the chains.
func (s *Service) RecordTransaction(ctx context.Context, in RecordInput) (core.Transaction, error) {
	t := core.Transaction{
		Date:        in.Date,
		Description: strings.TrimSpace(in.Description),
		Kind:        in.Kind,
		AccountName: strings.TrimSpace(in.AccountName),
		Category:    strings.TrimSpace(in.Category),
		Amount:      in.Kind.Signed(core.ParseAmount(in.RawAmount)),
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("%v: %w", err, core.ErrValidation)
	}

	err := s.store.RecordTx(ctx, func(tx *storage.LedgerTx) error {
		account, err := tx.FindAccountByName(t.AccountName)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("account %q: %w", t.AccountName, core.ErrInvalidReference)
			}
			return err
		}
		// Store the canonical account name, whatever casing came in.
		t.AccountName = account.Name

		// Per-account chain: prior balance is the last transaction's
		// running balance, or the account's stored balance for the
		// first transaction.
		priorAccount, ok, err := tx.LastAccountBalance(t.AccountName)
		if err != nil {
			return err
		}
		if !ok {
			priorAccount = account.Balance
		}
		t.AccountBalance = priorAccount.Add(t.Amount)

		// Global chain: opening is the last transaction's closing, or
		// the sum of all stored account balances when the chain is
		// empty or broken at its head.
		globalOpening, ok, err := tx.LastGlobalClosing()
		if err != nil {
			return err
		}
		if !ok {
			globalOpening, err = tx.SumAccountBalances()
			if err != nil {
				return err
			}
		}
		t.GlobalOpening = globalOpening
		t.GlobalClosing = globalOpening.Add(t.Amount)

		t.SequenceID, err = tx.NextSequenceID()
		if err != nil {
			return err
		}

		if err := tx.InsertTransaction(t); err != nil {
			return err
		}
		if err := tx.UpdateAccountBalance(account.ID, t.AccountBalance); err != nil {
			return err
		}
		return tx.UpsertSnapshot(core.DailySnapshot{
			Date:    t.Date,
			Opening: t.GlobalOpening,
			Closing: t.GlobalClosing,
		})
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"sequence_id", t.SequenceID,
		"date", t.Date.String(),
		"kind", string(t.Kind),
		"account_name", t.AccountName,
		"amount", t.Amount.String(),
		"global_closing", t.GlobalClosing.String())

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionRecorded(ctx, t.SequenceID, t.Date.String()); err != nil {
			slog.ErrorContext(ctx, "Failed to publish transaction event",
				"sequence_id", t.SequenceID, "error", err)
		}
	}

	return t, nil
}

// ---- read path ----

func (s *Service) ListTransactionsForDate(ctx context.Context, date core.Date) ([]core.Transaction, error) {
	return s.store.ListTransactionsForDate(ctx, date)
}

func (s *Service) ListTransactionsByKind(ctx context.Context, kind core.Kind) ([]core.Transaction, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("kind %q: %w", kind, core.ErrValidation)
	}
	return s.store.ListTransactionsByKind(ctx, kind)
}

// DailySummary replays the full log into per-day rows and totals. It
// never reads the live account table, so reports stay correct even
// after balances are hand-edited.
func (s *Service) DailySummary(ctx context.Context) ([]core.DaySummary, core.Totals, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, core.Totals{}, err
	}
	days, totals := core.DailySummary(txs)
	return days, totals, nil
}

// MonthlySummary groups the daily replay by YYYY-MM.
func (s *Service) MonthlySummary(ctx context.Context) ([]core.MonthSummary, core.Totals, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, core.Totals{}, err
	}
	months, totals := core.MonthlySummary(txs)
	return months, totals, nil
}

// Analyze filters the full log by period tag, kind and categories.
func (s *Service) Analyze(ctx context.Context, tag string, from, to core.Date, kindFilter string, categories []string) ([]core.FilteredTransaction, core.FilterSummary, core.DateRange, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, core.FilterSummary{}, core.DateRange{}, err
	}
	bounds := core.ResolveRange(tag, from, to)
	matches, summary := core.FilterAndSummarize(txs, kindFilter, bounds, categories)
	return matches, summary, bounds, nil
}

// CurrentGlobalBalance is the portfolio balance right now: the global
// closing of the latest transaction, falling back to the sum of the
// stored account balances when the chain is empty or broken.
func (s *Service) CurrentGlobalBalance(ctx context.Context) (decimal.Decimal, error) {
	return s.store.CurrentGlobalBalance(ctx)
}

// BootstrapToday makes sure today's snapshot exists. On a new
// calendar day the opening balance is the current global balance; an
// existing snapshot is returned untouched.
func (s *Service) BootstrapToday(ctx context.Context) (core.DailySnapshot, error) {
	return s.BootstrapDay(ctx, core.Today())
}

// BootstrapDay is BootstrapToday for an explicit date.
func (s *Service) BootstrapDay(ctx context.Context, date core.Date) (core.DailySnapshot, error) {
	snap, err := s.store.GetSnapshot(ctx, date)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.DailySnapshot{}, err
	}

	balance, err := s.CurrentGlobalBalance(ctx)
	if err != nil {
		return core.DailySnapshot{}, err
	}
	snap = core.DailySnapshot{Date: date, Opening: balance, Closing: balance}
	if err := s.store.UpsertSnapshot(ctx, snap); err != nil {
		return core.DailySnapshot{}, err
	}
	slog.InfoContext(ctx, "Daily snapshot bootstrapped",
		"date", date.String(), "balance", balance.String())
	return snap, nil
}

// RefreshSnapshot recomputes one date's snapshot from the transaction
// log. Snapshots are derived data, safe to rebuild at any time; a
// date with no transactions and no snapshot is left alone.
func (s *Service) RefreshSnapshot(ctx context.Context, date core.Date) (core.DailySnapshot, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return core.DailySnapshot{}, err
	}
	days, _ := core.DailySummary(txs)
	for _, day := range days {
		if day.Date == date {
			snap := core.DailySnapshot{Date: date, Opening: day.Opening, Closing: day.Closing}
			if err := s.store.UpsertSnapshot(ctx, snap); err != nil {
				return core.DailySnapshot{}, err
			}
			return snap, nil
		}
	}
	return s.store.GetSnapshot(ctx, date)
}

func (s *Service) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
