package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount pairs a decimal number with a currency code.
type Amount struct {
	Number   decimal.Decimal
	Currency string
}

// NewAmount parses a decimal string as emitted by the Coinbase API.
func NewAmount(number, currency string) (Amount, error) {
	n, err := decimal.NewFromString(number)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", number, err)
	}
	if currency == "" {
		return Amount{}, fmt.Errorf("amount %q has no currency", number)
	}
	return Amount{Number: n, Currency: currency}, nil
}

func (a Amount) String() string {
	return a.Number.String() + " " + a.Currency
}

// StringFixed renders the amount with a fixed number of decimal places.
func (a Amount) StringFixed(places int32) string {
	return a.Number.StringFixed(places) + " " + a.Currency
}

// Equal reports whether two amounts have the same value and currency.
func (a Amount) Equal(b Amount) bool {
	return a.Currency == b.Currency && a.Number.Equal(b.Number)
}
