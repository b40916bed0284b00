package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// document is the snapshot layout consumed by the importer.
type document struct {
	Account      json.RawMessage   `json:"account"`
	Transactions []json.RawMessage `json:"transactions"`
	Deposits     []json.RawMessage `json:"deposits"`
	Withdrawals  []json.RawMessage `json:"withdrawals"`
}

// Downloader assembles one snapshot file per account from the API.
type Downloader struct {
	client     *Client
	dataFolder string
	logger     *log.Logger
	now        func() time.Time
}

func NewDownloader(client *Client, dataFolder string, logger *log.Logger) *Downloader {
	return &Downloader{
		client:     client,
		dataFolder: dataFolder,
		logger:     logger,
		now:        time.Now,
	}
}

// Run fetches every account and writes a dated snapshot for each. A transport
// failure aborts the run immediately; no partial file is written for the
// failing account.
func (d *Downloader) Run(ctx context.Context) error {
	accounts, err := d.client.Accounts(ctx)
	if err != nil {
		return fmt.Errorf("listing accounts: %w", err)
	}

	for _, acct := range accounts {
		if acct.CreatedAt == "" {
			d.logger.Debug("skipping account without created_at", "id", acct.ID)
			continue
		}
		if err := d.download(ctx, acct); err != nil {
			return fmt.Errorf("account %s: %w", acct.Name, err)
		}
	}
	return nil
}

func (d *Downloader) download(ctx context.Context, acct Account) error {
	account, err := d.client.AccountInformation(ctx, acct.ID)
	if err != nil {
		return err
	}
	transactions, err := d.client.Transactions(ctx, acct.ID)
	if err != nil {
		return err
	}
	deposits, err := d.client.Deposits(ctx, acct.ID)
	if err != nil {
		return err
	}
	withdrawals, err := d.client.Withdrawals(ctx, acct.ID)
	if err != nil {
		return err
	}

	doc := document{
		Account:      account,
		Transactions: transactions,
		Deposits:     deposits,
		Withdrawals:  withdrawals,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	name := fmt.Sprintf("%s-coinbase-%s.json", d.now().Format("2006-01-02"), acct.Name)
	path := filepath.Join(d.dataFolder, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	d.logger.Info("wrote snapshot", "path", path, "transactions", len(transactions))
	return nil
}
