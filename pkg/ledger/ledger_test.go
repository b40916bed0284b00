package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func amount(t *testing.T, number, currency string) Amount {
	t.Helper()
	a, err := NewAmount(number, currency)
	if err != nil {
		t.Fatalf("NewAmount(%q, %q) failed: %v", number, currency, err)
	}
	return a
}

func TestNewAmount(t *testing.T) {
	a := amount(t, "-250.00", "USD")
	if !a.Number.Equal(decimal.RequireFromString("-250")) {
		t.Errorf("number = %s", a.Number)
	}
	if a.Currency != "USD" {
		t.Errorf("currency = %q", a.Currency)
	}

	if _, err := NewAmount("abc", "USD"); err == nil {
		t.Error("expected error for non-decimal amount")
	}
	if _, err := NewAmount("1.0", ""); err == nil {
		t.Error("expected error for missing currency")
	}
}

func TestTransactionString(t *testing.T) {
	price := amount(t, "25000", "USD")
	tx := NewTransaction(
		Meta{File: "snap.json", Sequence: 0, KV: []Metadata{
			{Key: "id", Value: "t1"},
			{Key: "type", Value: "buy"},
		}},
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		FlagOkay,
		"",
		"",
		[]Posting{{Account: "Assets:Coinbase:BTC", Units: amount(t, "0.01", "BTC"), Price: &price}},
	)

	want := strings.Join([]string{
		`2023-01-01 * ""`,
		`  id: "t1"`,
		`  type: "buy"`,
		`  Assets:Coinbase:BTC  0.01 BTC @ 25000.00000 USD`,
		``,
	}, "\n")
	if got := tx.String(); got != want {
		t.Errorf("transaction rendering mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestBalanceString(t *testing.T) {
	b := NewBalance(Meta{Sequence: 1}, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		"Assets:Coinbase:BTC", amount(t, "1.50", "BTC"))
	if got, want := b.String(), "2023-01-02 balance Assets:Coinbase:BTC  1.5 BTC\n"; got != want {
		t.Errorf("balance rendering = %q, want %q", got, want)
	}
}

func TestSort(t *testing.T) {
	day1 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	a := NewTransaction(Meta{Sequence: 2}, day2, FlagOkay, "", "", nil)
	b := NewTransaction(Meta{Sequence: 0}, day1, FlagOkay, "", "", nil)
	c := NewBalance(Meta{Sequence: 3}, day2, "Assets:X", amount(t, "1", "BTC"))
	d := NewTransaction(Meta{Sequence: 1}, day2, FlagOkay, "", "", nil)

	directives := []Directive{a, c, d, b}
	Sort(directives)

	wantSeq := []int{0, 1, 2, 3}
	for i, directive := range directives {
		if directive.Sequence() != wantSeq[i] {
			t.Errorf("position %d has sequence %d, want %d", i, directive.Sequence(), wantSeq[i])
		}
	}
}

func TestRenderFilter(t *testing.T) {
	day1 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	directives := []Directive{
		NewTransaction(Meta{Sequence: 0}, day1, FlagOkay, "", "", nil),
		NewTransaction(Meta{Sequence: 1}, day2, FlagOkay, "", "", nil),
	}

	out := string(Render(directives, func(d Directive) bool { return !d.Date().Before(day2) }))
	if strings.Contains(out, "2023-01-01") {
		t.Error("filtered directive still rendered")
	}
	if !strings.Contains(out, "2023-01-02") {
		t.Error("kept directive missing from output")
	}
}

func TestMetaValue(t *testing.T) {
	m := Meta{KV: []Metadata{{Key: "id", Value: "t1"}}}
	if m.Value("id") != "t1" {
		t.Errorf("Value(id) = %q", m.Value("id"))
	}
	if m.Value("missing") != "" {
		t.Errorf("Value(missing) = %q", m.Value("missing"))
	}
}
