package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dejotaortega/finanzas-deiner/internal/core"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func TestNextSequenceIDStartsAtOne(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	var got []int64
	err := repo.RecordTx(ctx, func(tx *LedgerTx) error {
		for i := 0; i < 3; i++ {
			id, err := tx.NextSequenceID()
			if err != nil {
				return err
			}
			got = append(got, id)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("record tx: %v", err)
	}
	want := []int64{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sequence[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSequenceSurvivesRollback(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	sentinel := errors.New("abort")
	err := repo.RecordTx(ctx, func(tx *LedgerTx) error {
		if _, err := tx.NextSequenceID(); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("got %v, want sentinel", err)
	}

	// The rolled-back increment is not visible: the next id is 1.
	err = repo.RecordTx(ctx, func(tx *LedgerTx) error {
		id, err := tx.NextSequenceID()
		if err != nil {
			return err
		}
		if id != 1 {
			t.Errorf("sequence id after rollback = %d, want 1", id)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("record tx: %v", err)
	}
}

func TestFindAccountByNameCaseInsensitive(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.CreateAccount(ctx, "Efectivo", dec(t, "10"))
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	found, err := repo.FindAccountByName(ctx, "EFECTIVO")
	if err != nil {
		t.Fatalf("find account: %v", err)
	}
	if found.ID != created.ID || found.Name != "Efectivo" {
		t.Errorf("found %+v, want id %s with canonical name", found, created.ID)
	}

	if _, err := repo.FindAccountByName(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestCreateAccountDuplicate(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if _, err := repo.CreateAccount(ctx, "Cash", decimal.Zero); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := repo.CreateAccount(ctx, "cash", decimal.Zero); !errors.Is(err, core.ErrDuplicateName) {
		t.Errorf("got %v, want ErrDuplicateName", err)
	}
}

func TestUpsertSnapshotPreservesOpening(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	date := core.MustParseDate("2024-05-10")

	first := core.DailySnapshot{Date: date, Opening: dec(t, "1000"), Closing: dec(t, "1200")}
	if err := repo.UpsertSnapshot(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// A later upsert for the same date may only move the closing.
	second := core.DailySnapshot{Date: date, Opening: dec(t, "1200"), Closing: dec(t, "900")}
	if err := repo.UpsertSnapshot(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	snap, err := repo.GetSnapshot(ctx, date)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if !snap.Opening.Equal(dec(t, "1000")) {
		t.Errorf("opening = %s, want 1000", snap.Opening)
	}
	if !snap.Closing.Equal(dec(t, "900")) {
		t.Errorf("closing = %s, want 900", snap.Closing)
	}
}

func TestListSnapshotsOrdered(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for _, d := range []string{"2024-05-11", "2024-05-09", "2024-05-10"} {
		snap := core.DailySnapshot{Date: core.MustParseDate(d), Opening: decimal.Zero, Closing: decimal.Zero}
		if err := repo.UpsertSnapshot(ctx, snap); err != nil {
			t.Fatalf("upsert %s: %v", d, err)
		}
	}

	snaps, err := repo.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	want := []string{"2024-05-09", "2024-05-10", "2024-05-11"}
	if len(snaps) != len(want) {
		t.Fatalf("got %d snapshots, want %d", len(snaps), len(want))
	}
	for i, w := range want {
		if snaps[i].Date.String() != w {
			t.Errorf("snapshot[%d].Date = %s, want %s", i, snaps[i].Date, w)
		}
	}
}

func insertTestTransaction(t *testing.T, repo *SQLiteRepository, date string, kind core.Kind, amount string) core.Transaction {
	t.Helper()
	var tx core.Transaction
	err := repo.RecordTx(context.Background(), func(l *LedgerTx) error {
		id, err := l.NextSequenceID()
		if err != nil {
			return err
		}
		tx = core.Transaction{
			SequenceID:  id,
			Date:        core.MustParseDate(date),
			Amount:      dec(t, amount),
			Kind:        kind,
			AccountName: "Cash",
		}
		return l.InsertTransaction(tx)
	})
	if err != nil {
		t.Fatalf("insert transaction: %v", err)
	}
	return tx
}

func TestListTransactionsOrdering(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	// Insertion order deliberately disagrees with date order.
	insertTestTransaction(t, repo, "2024-05-11", core.Income, "10")
	insertTestTransaction(t, repo, "2024-05-09", core.Expense, "-20")
	insertTestTransaction(t, repo, "2024-05-10", core.Income, "30")

	txs, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	want := []string{"2024-05-09", "2024-05-10", "2024-05-11"}
	if len(txs) != len(want) {
		t.Fatalf("got %d transactions, want %d", len(txs), len(want))
	}
	for i, w := range want {
		if txs[i].Date.String() != w {
			t.Errorf("tx[%d].Date = %s, want %s", i, txs[i].Date, w)
		}
	}
}

func TestListTransactionsForDate(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	insertTestTransaction(t, repo, "2024-05-10", core.Income, "10")
	insertTestTransaction(t, repo, "2024-05-10", core.Expense, "-20")
	insertTestTransaction(t, repo, "2024-05-11", core.Income, "30")

	txs, err := repo.ListTransactionsForDate(ctx, core.MustParseDate("2024-05-10"))
	if err != nil {
		t.Fatalf("list for date: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	if txs[0].SequenceID >= txs[1].SequenceID {
		t.Errorf("rows not ordered by sequence id: %d, %d", txs[0].SequenceID, txs[1].SequenceID)
	}
}

func TestCurrentGlobalBalanceFallback(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if _, err := repo.CreateAccount(ctx, "Cash", dec(t, "100")); err != nil {
		t.Fatalf("create cash: %v", err)
	}
	if _, err := repo.CreateAccount(ctx, "Bank", dec(t, "250")); err != nil {
		t.Fatalf("create bank: %v", err)
	}

	// Empty log: sum of stored balances.
	balance, err := repo.CurrentGlobalBalance(ctx)
	if err != nil {
		t.Fatalf("global balance: %v", err)
	}
	if !balance.Equal(dec(t, "350")) {
		t.Errorf("balance = %s, want 350", balance)
	}

	// With a chained transaction the latest global closing wins.
	err = repo.RecordTx(ctx, func(l *LedgerTx) error {
		id, err := l.NextSequenceID()
		if err != nil {
			return err
		}
		return l.InsertTransaction(core.Transaction{
			SequenceID:    id,
			Date:          core.MustParseDate("2024-05-10"),
			Amount:        dec(t, "-50"),
			Kind:          core.Expense,
			AccountName:   "Cash",
			GlobalOpening: dec(t, "350"),
			GlobalClosing: dec(t, "300"),
		})
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	balance, err = repo.CurrentGlobalBalance(ctx)
	if err != nil {
		t.Fatalf("global balance: %v", err)
	}
	if !balance.Equal(dec(t, "300")) {
		t.Errorf("balance = %s, want 300", balance)
	}
}

func TestLastBalancesLegacyRows(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	// A legacy row without chain columns reports ok=false, so the
	// caller falls back to the stored balances.
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO transactions (sequence_id, date, amount, kind, account_name)
		 VALUES (1, '2024-01-01', '-10', 'expense', 'Cash')`)
	if err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	err = repo.RecordTx(ctx, func(l *LedgerTx) error {
		if _, ok, err := l.LastAccountBalance("Cash"); err != nil || ok {
			t.Errorf("LastAccountBalance ok=%v err=%v, want ok=false", ok, err)
		}
		if _, ok, err := l.LastGlobalClosing(); err != nil || ok {
			t.Errorf("LastGlobalClosing ok=%v err=%v, want ok=false", ok, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("record tx: %v", err)
	}
}

func TestUpdateAccountBalanceNotFound(t *testing.T) {
	repo := newTestRepository(t)
	err := repo.UpdateAccountBalance(context.Background(), "missing", decimal.Zero)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
