package plan

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "importers.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeManifest(t, `importers:
  - account_id: "acct-1"
    account: "Assets:Coinbase:BTC"
  - account_id: "acct-2"
    account: "Assets:Coinbase:ETH"
`)

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(p.Importers) != 2 {
		t.Fatalf("expected 2 importer specs, got %d", len(p.Importers))
	}
	if p.Importers[0].AccountID != "acct-1" || p.Importers[0].Account != "Assets:Coinbase:BTC" {
		t.Errorf("spec 0 = %+v", p.Importers[0])
	}

	importers := p.Build(log.New(io.Discard))
	if len(importers) != 2 {
		t.Fatalf("expected 2 importers, got %d", len(importers))
	}
	if got := importers[1].Account(""); got != "Assets:Coinbase:ETH" {
		t.Errorf("importer account = %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no importers", "importers: []\n"},
		{"missing account", "importers:\n  - account_id: \"acct-1\"\n"},
		{"bad yaml", ": not yaml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeManifest(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
