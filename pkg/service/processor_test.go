package service

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/jorgeml/coinbase-ledger/pkg/coinbase"
	"github.com/jorgeml/coinbase-ledger/pkg/importer"
)

const snapshot = `{
  "account": {
    "id": "acct-1",
    "name": "BTC Wallet",
    "balance": {"amount": "1.50", "currency": "BTC"}
  },
  "transactions": [
    {
      "id": "t1",
      "type": "buy",
      "status": "completed",
      "created_at": "2023-01-01T10:00:00Z",
      "amount": {"amount": "0.01", "currency": "BTC"},
      "native_amount": {"amount": "-250.00", "currency": "USD"}
    }
  ]
}`

func TestProcessDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "2023-01-02-coinbase-BTC Wallet.json"), []byte(snapshot), 0o644); err != nil {
		t.Fatal(err)
	}
	// Unclaimed files are skipped without failing the batch.
	if err := os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := log.New(io.Discard)
	importers := []importer.Importer{coinbase.New("acct-1", "Assets:Coinbase:BTC", logger)}

	processor := NewProcessor(importers, "", logger)
	if err := processor.ProcessDirectory(dir); err != nil {
		t.Fatalf("ProcessDirectory failed: %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dir, "2023-01-02-coinbase-BTC Wallet.beancount"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}

	text := string(out)
	for _, want := range []string{
		`2023-01-01 * ""`,
		`Assets:Coinbase:BTC  0.01 BTC @ 25000.00000 USD`,
		`2023-01-02 balance Assets:Coinbase:BTC  1.5 BTC`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestProcessFileOutputPath(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	input := filepath.Join(inDir, "snap.json")
	if err := os.WriteFile(input, []byte(snapshot), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := log.New(io.Discard)
	importers := []importer.Importer{coinbase.New("acct-1", "Assets:Coinbase:BTC", logger)}

	processor := NewProcessor(importers, outDir, logger)
	if err := processor.ProcessFile(input); err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(outDir, "snap.beancount")); err != nil {
		t.Errorf("output not written to configured path: %v", err)
	}
}
