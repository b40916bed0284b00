package fetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jarcoal/httpmock"
)

func TestDownloaderRun(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://api.example.com/v2/accounts",
		httpmock.NewStringResponder(http.StatusOK, `{
			"data": [
				{"id": "a1", "name": "BTC Wallet", "created_at": "2021-01-01T00:00:00Z"},
				{"id": "a2", "name": "Vault"}
			],
			"pagination": {"next_uri": null}
		}`))
	transport.RegisterResponder(http.MethodGet, "https://api.example.com/v2/accounts/a1",
		httpmock.NewStringResponder(http.StatusOK,
			`{"data": {"id": "a1", "name": "BTC Wallet", "balance": {"amount": "1.50", "currency": "BTC"}}}`))
	transport.RegisterResponder(http.MethodGet,
		"https://api.example.com/v2/accounts/a1/transactions?expand=all&order=asc",
		httpmock.NewStringResponder(http.StatusOK,
			`{"data": [{"id": "t1", "status": "completed"}], "pagination": {"next_uri": null}}`))
	transport.RegisterResponder(http.MethodGet,
		"https://api.example.com/v2/accounts/a1/deposits?order=asc",
		httpmock.NewStringResponder(http.StatusOK, `{"data": [], "pagination": {"next_uri": null}}`))
	transport.RegisterResponder(http.MethodGet,
		"https://api.example.com/v2/accounts/a1/withdrawals?order=asc",
		httpmock.NewStringResponder(http.StatusOK, `{"data": [], "pagination": {"next_uri": null}}`))

	dir := t.TempDir()
	client := testClient(transport)
	downloader := NewDownloader(client, dir, log.New(io.Discard))
	downloader.now = func() time.Time { return time.Date(2023, 7, 1, 9, 0, 0, 0, time.UTC) }

	if err := downloader.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Account a2 has no created_at and is skipped; only a1 is written.
	path := filepath.Join(dir, "2023-07-01-coinbase-BTC Wallet.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}

	var doc struct {
		Account      map[string]any   `json:"account"`
		Transactions []map[string]any `json:"transactions"`
		Deposits     []map[string]any `json:"deposits"`
		Withdrawals  []map[string]any `json:"withdrawals"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if doc.Account["id"] != "a1" {
		t.Errorf("account id = %v", doc.Account["id"])
	}
	if len(doc.Transactions) != 1 || doc.Transactions[0]["id"] != "t1" {
		t.Errorf("transactions = %v", doc.Transactions)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected exactly one snapshot file, got %d", len(entries))
	}
}

func TestDownloaderAbortsOnTransportError(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://api.example.com/v2/accounts",
		httpmock.NewStringResponder(http.StatusOK, `{
			"data": [{"id": "a1", "name": "BTC Wallet", "created_at": "2021-01-01T00:00:00Z"}],
			"pagination": {"next_uri": null}
		}`))
	transport.RegisterResponder(http.MethodGet, "https://api.example.com/v2/accounts/a1",
		httpmock.NewStringResponder(http.StatusBadGateway, `{"errors": [{"message": "upstream"}]}`))

	dir := t.TempDir()
	downloader := NewDownloader(testClient(transport), dir, log.New(io.Discard))

	if err := downloader.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Error("no partial snapshot may be written on failure")
	}
}
