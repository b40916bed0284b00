package ledger

import (
	"fmt"
	"strings"
	"time"
)

// FlagOkay marks a transaction as confirmed.
const FlagOkay = "*"

// pricePlaces is the number of decimal places used when rendering unit prices.
const pricePlaces = 5

// Metadata is a single ordered key/value pair attached to a directive.
type Metadata struct {
	Key   string
	Value string
}

// Meta records where a directive came from and its position within the
// source, which doubles as the tie-breaker for canonical ordering.
type Meta struct {
	File     string
	Sequence int
	KV       []Metadata
}

// Value returns the metadata value for key, or "" when absent.
func (m Meta) Value(key string) string {
	for _, kv := range m.KV {
		if kv.Key == key {
			return kv.Value
		}
	}
	return ""
}

// Directive is a single dated ledger entry.
type Directive interface {
	Date() time.Time
	Sequence() int
	String() string
}

// Posting is one leg of a transaction: an account, a signed amount and an
// optional unit price annotation.
type Posting struct {
	Account string
	Units   Amount
	Price   *Amount
}

// Transaction is a dated, flagged entry with metadata and postings.
type Transaction struct {
	meta      Meta
	date      time.Time
	flag      string
	payee     string
	narration string
	postings  []Posting
}

func NewTransaction(meta Meta, date time.Time, flag, payee, narration string, postings []Posting) *Transaction {
	return &Transaction{
		meta:      meta,
		date:      date,
		flag:      flag,
		payee:     payee,
		narration: narration,
		postings:  postings,
	}
}

func (t *Transaction) Date() time.Time     { return t.date }
func (t *Transaction) Sequence() int       { return t.meta.Sequence }
func (t *Transaction) Meta() Meta          { return t.meta }
func (t *Transaction) Flag() string        { return t.flag }
func (t *Transaction) Payee() string       { return t.payee }
func (t *Transaction) Narration() string   { return t.narration }
func (t *Transaction) Postings() []Posting { return t.postings }

func (t *Transaction) String() string {
	var b strings.Builder
	if t.payee != "" {
		fmt.Fprintf(&b, "%s %s %q %q\n", t.date.Format("2006-01-02"), t.flag, t.payee, t.narration)
	} else {
		fmt.Fprintf(&b, "%s %s %q\n", t.date.Format("2006-01-02"), t.flag, t.narration)
	}
	for _, kv := range t.meta.KV {
		fmt.Fprintf(&b, "  %s: %q\n", kv.Key, kv.Value)
	}
	for _, p := range t.postings {
		fmt.Fprintf(&b, "  %s  %s", p.Account, p.Units)
		if p.Price != nil {
			fmt.Fprintf(&b, " @ %s", p.Price.StringFixed(pricePlaces))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Balance asserts the expected running balance of an account as of a date.
type Balance struct {
	meta    Meta
	date    time.Time
	account string
	amount  Amount
}

func NewBalance(meta Meta, date time.Time, account string, amount Amount) *Balance {
	return &Balance{meta: meta, date: date, account: account, amount: amount}
}

func (b *Balance) Date() time.Time { return b.date }
func (b *Balance) Sequence() int   { return b.meta.Sequence }
func (b *Balance) Account() string { return b.account }
func (b *Balance) Amount() Amount  { return b.amount }

func (b *Balance) String() string {
	return fmt.Sprintf("%s balance %s  %s\n", b.date.Format("2006-01-02"), b.account, b.amount)
}

// Transactions filters the transaction directives out of a mixed sequence.
func Transactions(directives []Directive) []*Transaction {
	var out []*Transaction
	for _, d := range directives {
		if tx, ok := d.(*Transaction); ok {
			out = append(out, tx)
		}
	}
	return out
}
