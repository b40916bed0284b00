package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/jorgeml/coinbase-ledger/pkg/importer"
	"github.com/jorgeml/coinbase-ledger/pkg/ledger"
)

// Processor drives a batch run over snapshot files: identification across the
// registered importers, extraction, rendering and output writing. Per-file
// failures are logged and the batch continues.
type Processor struct {
	importers  []importer.Importer
	outputPath string
	logger     *log.Logger
}

func NewProcessor(importers []importer.Importer, outputPath string, logger *log.Logger) *Processor {
	return &Processor{
		importers:  importers,
		outputPath: outputPath,
		logger:     logger,
	}
}

func (p *Processor) ProcessDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("error reading directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := p.ProcessFile(filepath.Join(dir, entry.Name())); err != nil {
			p.logger.Error("failed to process file", "file", entry.Name(), "error", err)
		}
	}

	return nil
}

// ProcessFile extracts a single snapshot with the importer that claims it and
// writes the rendered directives next to the input (or under the configured
// output path). Unclaimed files are skipped silently.
func (p *Processor) ProcessFile(path string) error {
	imp := p.identify(path)
	if imp == nil {
		p.logger.Debug("no importer claimed file", "path", path)
		return nil
	}

	entries, err := imp.Extract(path, nil)
	if err != nil {
		return fmt.Errorf("error extracting file: %w", err)
	}

	archival, err := imp.Filename(path)
	if err != nil {
		return fmt.Errorf("error deriving filename: %w", err)
	}

	outFile := p.determineOutputPath(path)
	if err := os.WriteFile(outFile, ledger.Render(entries, nil), 0o644); err != nil {
		return fmt.Errorf("error writing output file: %w", err)
	}

	p.logger.Info("processed file", "input", path, "output", outFile,
		"entries", len(entries), "account", imp.Account(path), "archives_as", archival)
	return nil
}

// identify runs the candidate file past every registered importer and returns
// the first match. Identification never errors; a file nobody claims is nil.
func (p *Processor) identify(path string) importer.Importer {
	for _, imp := range p.importers {
		if imp.Identify(path) {
			return imp
		}
	}
	return nil
}

func (p *Processor) determineOutputPath(inputPath string) string {
	base := filepath.Base(inputPath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext) + ".beancount"
	if p.outputPath != "" {
		return filepath.Join(p.outputPath, name)
	}
	return filepath.Join(filepath.Dir(inputPath), name)
}
