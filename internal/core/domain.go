package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// Kind classifies a transaction and determines the sign its amount
	// is stored with.
	Kind string

	// Account is a named money holder. Balance is the live balance,
	// kept in step with the account's transaction chain by the ledger
	// service, but also directly editable.
	Account struct {
		ID      string
		Name    string
		Balance decimal.Decimal
	}

	// Transaction is an immutable ledger entry. Amount is signed:
	// negative for expenses, positive for income. AccountBalance is
	// the named account's running balance immediately after this
	// transaction; GlobalOpening and GlobalClosing bracket the
	// whole-portfolio balance around it.
	Transaction struct {
		SequenceID     int64
		Date           Date
		Description    string
		Amount         decimal.Decimal
		Kind           Kind
		AccountName    string
		Category       string
		AccountBalance decimal.Decimal
		GlobalOpening  decimal.Decimal
		GlobalClosing  decimal.Decimal
	}

	// DailySnapshot records the global balance at the edges of one
	// calendar date. Opening is written once, on the first transaction
	// of the date; Closing follows the latest known global balance.
	DailySnapshot struct {
		Date    Date
		Opening decimal.Decimal
		Closing decimal.Decimal
	}
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrDuplicateName    = errors.New("account name already exists")
	ErrInvalidReference = errors.New("referenced account does not exist")
	ErrConcurrency      = errors.New("concurrent update could not be serialized")
	ErrNotFound         = errors.New("not found")
)

// ParseKind normalizes a raw kind string. Anything that is not an
// expense counts as income, mirroring the sign-normalization rule.
func ParseKind(s string) Kind {
	if strings.EqualFold(strings.TrimSpace(s), string(Expense)) {
		return Expense
	}
	return Income
}

// Signed returns the magnitude with the sign this kind stores:
// expenses negative, income positive.
func (k Kind) Signed(magnitude decimal.Decimal) decimal.Decimal {
	if k == Expense {
		return magnitude.Abs().Neg()
	}
	return magnitude.Abs()
}

func (k Kind) Valid() bool { return k == Income || k == Expense }

// Validate checks the fields a transaction must carry before it can
// be recorded. Amount is not checked here: unparsable input has
// already been coerced to zero by ParseAmount.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	if !t.Kind.Valid() {
		return errors.New("kind must be income or expense")
	}
	if strings.TrimSpace(t.AccountName) == "" {
		return errors.New("account name is required")
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}
