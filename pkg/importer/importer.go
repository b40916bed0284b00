package importer

import (
	"time"

	"github.com/jorgeml/coinbase-ledger/pkg/ledger"
)

// Importer is the contract a snapshot importer exposes to the host ledger
// framework. It is intentionally decoupled from CLI / HTTP details so the
// same implementation serves the batch processor, the CLI and the server.
type Importer interface {
	// Identify reports whether the file belongs to this importer. It never
	// returns an error; unreadable or foreign files are a plain false.
	Identify(path string) bool

	// Account returns the target ledger account, static per importer.
	Account(path string) string

	// Date returns the date of the file's last transaction, used by the
	// host for report and filename dating.
	Date(path string) (time.Time, error)

	// Filename derives the archival name for the file.
	Filename(path string) (string, error)

	// Extract converts the file into the full ordered directive sequence.
	// Existing entries may be passed for duplicate detection by the caller.
	Extract(path string, existing []ledger.Directive) ([]ledger.Directive, error)
}
