package coinbase

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrMissingAccount signals a snapshot without a parseable account section.
	ErrMissingAccount = errors.New("snapshot missing account")
	// ErrMissingBalance signals an account section without a balance.
	ErrMissingBalance = errors.New("snapshot account missing balance")
	// ErrNoTransactions signals a snapshot whose transactions list is absent
	// or empty; there is nothing to convert and no date for the balance
	// assertion, so the whole file is rejected.
	ErrNoTransactions = errors.New("snapshot has no transactions")
	// ErrMissingAmount signals a transaction without the nested amount or
	// native_amount records required for price computation.
	ErrMissingAmount = errors.New("transaction missing amount fields")
	// ErrZeroAmount signals a unit price computation over a zero amount.
	ErrZeroAmount = errors.New("transaction amount is zero, cannot compute unit price")
)

// RawAmount is a monetary value as serialized by the Coinbase API: a decimal
// string plus a currency code.
type RawAmount struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// RawTransaction is one transaction record exactly as fetched. Records are
// append-only and never mutated by the importer.
type RawTransaction struct {
	ID           string     `json:"id"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	CreatedAt    string     `json:"created_at"`
	Description  *string    `json:"description,omitempty"`
	Amount       *RawAmount `json:"amount"`
	NativeAmount *RawAmount `json:"native_amount"`
}

// Account is the snapshot's account section.
type Account struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CreatedAt string     `json:"created_at,omitempty"`
	Balance   *RawAmount `json:"balance"`
}

// PayeeAccount is one sub-account of a payee record.
type PayeeAccount struct {
	PayeeAccountUID   string `json:"payeeAccountUid"`
	Description       string `json:"description,omitempty"`
	AccountIdentifier string `json:"accountIdentifier,omitempty"`
	BankIdentifier    string `json:"bankIdentifier,omitempty"`
}

// Payee is one entry of the optional payees section.
type Payee struct {
	PayeeUID string         `json:"payeeUid"`
	Name     string         `json:"payeeName,omitempty"`
	Accounts []PayeeAccount `json:"accounts"`
}

type payeeSection struct {
	Payees []Payee `json:"payees"`
}

// Snapshot is one JSON document capturing an account's state and activity at
// fetch time. Deposits and withdrawals are carried opaquely; the importer
// does not transform them.
type Snapshot struct {
	Account      *Account         `json:"account"`
	Transactions []RawTransaction `json:"transactions"`
	Deposits     json.RawMessage  `json:"deposits,omitempty"`
	Withdrawals  json.RawMessage  `json:"withdrawals,omitempty"`
	Payees       *payeeSection    `json:"payees,omitempty"`
}

// Load reads and parses a snapshot file in one pass. The file handle is
// released on every exit path.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	var snap Snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	if snap.Account == nil || snap.Account.ID == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrMissingAccount)
	}
	return &snap, nil
}

// PayeeAccount resolves a payee sub-account by payee and payee-account UID.
// It returns nil when the payees section is absent or nothing matches.
func (s *Snapshot) PayeeAccount(payeeUID, payeeAccountUID string) *PayeeAccount {
	if s.Payees == nil {
		return nil
	}
	for _, payee := range s.Payees.Payees {
		if payee.PayeeUID != payeeUID {
			continue
		}
		for i := range payee.Accounts {
			if payee.Accounts[i].PayeeAccountUID == payeeAccountUID {
				return &payee.Accounts[i]
			}
		}
	}
	return nil
}
