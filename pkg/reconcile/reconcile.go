// Package reconcile compares freshly extracted ledger transactions with the
// entries that already exist in the caller's ledger.
package reconcile

import (
	"fmt"

	"github.com/jorgeml/coinbase-ledger/pkg/ledger"
)

// Status indicates the reconciliation result for an extracted transaction.
//
//   - Existing: already present in the ledger.
//   - ToCreate: missing, needs to be appended.
type Status int

const (
	Existing Status = iota
	ToCreate
)

// Entry links an extracted transaction with its ledger counterpart (if any)
// and records the reconciliation status.
type Entry struct {
	Extracted *ledger.Transaction
	Match     *ledger.Transaction // nil when status == ToCreate
	Status    Status
}

// Report is the structure produced by Build. It carries every extracted
// transaction plus metadata so callers can decide what to display or append
// without re-implementing the comparison.
type Report struct {
	Items    []Entry
	toCreate []*ledger.Transaction
}

// Build matches extracted transactions against existing directives. The fast
// path matches on the `id` metadata the importer stamps on every entry; when
// an existing entry carries no id, a date+account+amount key is used instead.
func Build(extracted []*ledger.Transaction, existing []ledger.Directive) *Report {
	byID := make(map[string]*ledger.Transaction)
	byKey := make(map[string]*ledger.Transaction)
	for _, tx := range ledger.Transactions(existing) {
		if id := tx.Meta().Value("id"); id != "" {
			byID[id] = tx
			continue
		}
		if _, ok := byKey[key(tx)]; !ok {
			byKey[key(tx)] = tx
		}
	}

	items := make([]Entry, 0, len(extracted))
	toCreate := make([]*ledger.Transaction, 0)

	for _, tx := range extracted {
		found := byID[tx.Meta().Value("id")]
		if found == nil {
			found = byKey[key(tx)]
		}
		status := ToCreate
		if found != nil {
			status = Existing
		}
		items = append(items, Entry{Extracted: tx, Match: found, Status: status})
		if status == ToCreate {
			toCreate = append(toCreate, tx)
		}
	}

	return &Report{Items: items, toCreate: toCreate}
}

func key(tx *ledger.Transaction) string {
	k := tx.Date().Format("2006-01-02")
	for _, p := range tx.Postings() {
		k += fmt.Sprintf("|%s|%s", p.Account, p.Units)
	}
	return k
}

// ExistingCount returns how many extracted transactions already exist.
func (r *Report) ExistingCount() int {
	return len(r.Items) - len(r.toCreate)
}

// MissingCount returns how many extracted transactions are new.
func (r *Report) MissingCount() int {
	return len(r.toCreate)
}

// TransactionsToCreate returns the extracted transactions not yet present in
// the ledger.
func (r *Report) TransactionsToCreate() []*ledger.Transaction {
	return r.toCreate
}
