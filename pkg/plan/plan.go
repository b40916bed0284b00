package plan

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/jorgeml/coinbase-ledger/pkg/coinbase"
	"github.com/jorgeml/coinbase-ledger/pkg/importer"
)

// Spec binds one Coinbase account id to a target ledger account.
type Spec struct {
	AccountID string `yaml:"account_id"`
	Account   string `yaml:"account"`
}

// Plan is the YAML manifest listing the importers to run.
type Plan struct {
	Importers []Spec `yaml:"importers"`
}

func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if len(p.Importers) == 0 {
		return nil, fmt.Errorf("manifest has no importers")
	}
	for i, spec := range p.Importers {
		if spec.AccountID == "" || spec.Account == "" {
			return nil, fmt.Errorf("manifest importer %d missing account_id or account", i+1)
		}
	}
	return &p, nil
}

// Build constructs the configured importers.
func (p *Plan) Build(logger *log.Logger) []importer.Importer {
	importers := make([]importer.Importer, 0, len(p.Importers))
	for _, spec := range p.Importers {
		importers = append(importers, coinbase.New(spec.AccountID, spec.Account, logger))
	}
	return importers
}

func (p *Plan) Print() {
	for i, spec := range p.Importers {
		fmt.Printf("[%d] account_id=%s account=%s\n", i+1, spec.AccountID, spec.Account)
	}
}
