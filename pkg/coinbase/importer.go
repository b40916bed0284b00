package coinbase

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/jorgeml/coinbase-ledger/pkg/ledger"
)

// pricePrecision is the number of decimal places kept on computed unit prices.
const pricePrecision = 5

// Importer converts Coinbase account snapshots into ledger directives. One
// importer handles exactly one Coinbase account, identified by its API id,
// and posts against one configured ledger account.
type Importer struct {
	accountID string
	account   string
	logger    *log.Logger
}

func New(accountID, account string, logger *log.Logger) *Importer {
	return &Importer{
		accountID: accountID,
		account:   account,
		logger:    logger,
	}
}

// Identify reports whether the file is a snapshot of this importer's account.
// Any failure along the way (wrong extension, unreadable file, malformed
// JSON, missing keys) is a plain negative, never an error: identification
// runs over arbitrary candidate files and must not abort the scan.
func (im *Importer) Identify(path string) bool {
	if !isJSON(path) {
		return false
	}
	snap, err := Load(path)
	if err != nil {
		im.logger.Debug("not a snapshot", "path", path, "error", err)
		return false
	}
	return snap.Account.ID == im.accountID
}

// Account returns the configured target ledger account.
func (im *Importer) Account(string) string {
	return im.account
}

// Date returns the date of the last transaction in the snapshot, used by the
// host for filename and report dating.
func (im *Importer) Date(path string) (time.Time, error) {
	snap, err := Load(path)
	if err != nil {
		return time.Time{}, err
	}
	if len(snap.Transactions) == 0 {
		return time.Time{}, fmt.Errorf("%s: %w", path, ErrNoTransactions)
	}
	last := snap.Transactions[len(snap.Transactions)-1]
	date, err := parseTransactionTime(last.CreatedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("transaction %s: %w", last.ID, err)
	}
	return date, nil
}

// Filename derives the archival name for a snapshot.
func (im *Importer) Filename(path string) (string, error) {
	snap, err := Load(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("coinbase.%s.json", snap.Account.Name), nil
}

// Extract converts the snapshot into the complete ordered directive sequence:
// one transaction per accepted record plus a trailing balance assertion dated
// one day after the snapshot's last recorded activity. The existing entries
// are not consulted here; duplicate detection against them is the caller's
// concern (see pkg/reconcile).
func (im *Importer) Extract(path string, _ []ledger.Directive) ([]ledger.Directive, error) {
	snap, err := Load(path)
	if err != nil {
		return nil, err
	}
	if len(snap.Transactions) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoTransactions)
	}

	var entries []ledger.Directive
	seq := 0

	for i, tx := range snap.Transactions {
		status := Status(tx.Status)
		if !status.Accepted() {
			if status.Known() {
				im.logger.Debug("skipping transaction", "id", tx.ID, "status", tx.Status)
			} else {
				im.logger.Warn("skipping transaction with unknown status", "id", tx.ID, "status", tx.Status)
			}
			continue
		}

		entry, err := im.buildTransaction(path, seq, &snap.Transactions[i])
		if err != nil {
			return nil, fmt.Errorf("transaction %s (index %d) in %s: %w", tx.ID, i, path, err)
		}
		entries = append(entries, entry)
		seq++
	}

	// The balance assertion is dated off the last raw transaction, not the
	// last emitted one, even when trailing records were filtered out.
	last := snap.Transactions[len(snap.Transactions)-1]
	balanceDate, err := parseTransactionTime(last.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("transaction %s in %s: %w", last.ID, path, err)
	}
	balanceDate = balanceDate.AddDate(0, 0, 1)

	if snap.Account.Balance == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrMissingBalance)
	}
	balance, err := ledger.NewAmount(snap.Account.Balance.Amount, snap.Account.Balance.Currency)
	if err != nil {
		return nil, fmt.Errorf("account balance in %s: %w", path, err)
	}

	meta := ledger.Meta{File: path, Sequence: seq}
	entries = append(entries, ledger.NewBalance(meta, balanceDate, im.account, balance))

	ledger.Sort(entries)
	return entries, nil
}

func (im *Importer) buildTransaction(path string, seq int, tx *RawTransaction) (*ledger.Transaction, error) {
	if tx.Amount == nil || tx.NativeAmount == nil {
		return nil, ErrMissingAmount
	}

	date, err := parseTransactionTime(tx.CreatedAt)
	if err != nil {
		return nil, err
	}

	price, err := unitPrice(tx)
	if err != nil {
		return nil, err
	}

	units, err := ledger.NewAmount(tx.Amount.Amount, tx.Amount.Currency)
	if err != nil {
		return nil, err
	}

	kv := []ledger.Metadata{
		{Key: "id", Value: tx.ID},
		{Key: "type", Value: tx.Type},
		{Key: "created_date", Value: tx.CreatedAt},
	}
	if tx.Description != nil && *tx.Description != "" {
		kv = append(kv, ledger.Metadata{
			Key:   "description",
			Value: strings.ReplaceAll(*tx.Description, "\n", ""),
		})
	}
	meta := ledger.Meta{File: path, Sequence: seq, KV: kv}

	posting := ledger.Posting{Account: im.account, Units: units, Price: &price}

	return ledger.NewTransaction(meta, date, ledger.FlagOkay, "", "", []ledger.Posting{posting}), nil
}

// unitPrice computes the native-currency value of one unit of the transaction
// currency: |native_amount / amount| rounded to five decimal places. Prices
// are forced positive regardless of the signs of the two amounts.
func unitPrice(tx *RawTransaction) (ledger.Amount, error) {
	amount, err := decimal.NewFromString(tx.Amount.Amount)
	if err != nil {
		return ledger.Amount{}, fmt.Errorf("invalid amount %q: %w", tx.Amount.Amount, err)
	}
	native, err := decimal.NewFromString(tx.NativeAmount.Amount)
	if err != nil {
		return ledger.Amount{}, fmt.Errorf("invalid native_amount %q: %w", tx.NativeAmount.Amount, err)
	}
	if amount.IsZero() {
		return ledger.Amount{}, ErrZeroAmount
	}
	price := native.Div(amount).Abs().Round(pricePrecision)
	return ledger.Amount{Number: price, Currency: tx.NativeAmount.Currency}, nil
}

// parseTransactionTime liberally parses an ISO-8601 date or datetime string
// and returns the date component in UTC.
func parseTransactionTime(value string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, format := range formats {
		if ts, err := time.Parse(format, value); err == nil {
			return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid created_at %q", value)
}

func isJSON(path string) bool {
	return mime.TypeByExtension(filepath.Ext(path)) == "application/json"
}
