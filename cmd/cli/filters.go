package main

import (
	"strings"
	"time"

	"github.com/jorgeml/coinbase-ledger/pkg/ledger"
)

type filters struct {
	startDate string
	endDate   string
	account   string
}

func (f *filters) toFilterFunc() ledger.FilterFunc[ledger.Directive] {
	return func(d ledger.Directive) bool {
		if f.startDate != "" {
			start, _ := time.Parse("2006-01-02", f.startDate)
			if d.Date().Before(start) {
				return false
			}
		}
		if f.endDate != "" {
			end, _ := time.Parse("2006-01-02", f.endDate)
			if d.Date().After(end) {
				return false
			}
		}
		if f.account != "" && !strings.Contains(strings.ToLower(account(d)), strings.ToLower(f.account)) {
			return false
		}
		return true
	}
}

func account(d ledger.Directive) string {
	switch v := d.(type) {
	case *ledger.Transaction:
		var accounts []string
		for _, p := range v.Postings() {
			accounts = append(accounts, p.Account)
		}
		return strings.Join(accounts, " ")
	case *ledger.Balance:
		return v.Account()
	}
	return ""
}
