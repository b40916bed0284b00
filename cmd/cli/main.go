package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/jorgeml/coinbase-ledger/pkg/config"
	"github.com/jorgeml/coinbase-ledger/pkg/fetch"
	"github.com/jorgeml/coinbase-ledger/pkg/importer"
	"github.com/jorgeml/coinbase-ledger/pkg/ledger"
	"github.com/jorgeml/coinbase-ledger/pkg/plan"
	"github.com/jorgeml/coinbase-ledger/pkg/reconcile"
	"github.com/jorgeml/coinbase-ledger/pkg/service"
)

var (
	cliFilters   filters
	cfgFile      string
	manifestFile string
	debug        bool
)

func newLogger() *log.Logger {
	opts := log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "coinbase-ledger",
	}
	if debug {
		opts.Level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, opts)
}

func loadImporters(logger *log.Logger) ([]importer.Importer, error) {
	p, err := plan.Load(manifestFile)
	if err != nil {
		return nil, err
	}
	return p.Build(logger), nil
}

var rootCmd = &cobra.Command{
	Use:   "coinbase-ledger",
	Short: "Convert Coinbase account snapshots into ledger entries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

var identifyCmd = &cobra.Command{
	Use:   "identify <path>...",
	Short: "Report which snapshot files the configured importers claim",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		importers, err := loadImporters(logger)
		if err != nil {
			return err
		}

		claimed := lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
		skipped := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray

		for _, path := range expand(args) {
			match := identify(importers, path)
			if match == nil {
				fmt.Println(skipped.Render(fmt.Sprintf("- %s", path)))
				continue
			}
			archival, err := match.Filename(path)
			if err != nil {
				return err
			}
			fmt.Println(claimed.Render(fmt.Sprintf("+ %s -> %s (%s)", path, match.Account(path), archival)))
		}
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract <path>...",
	Short: "Extract ledger entries from snapshot files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		importers, err := loadImporters(logger)
		if err != nil {
			return err
		}

		newStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
		dupStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray

		// Entries extracted from earlier files become the existing set for
		// later ones, so overlapping snapshots of the same account are
		// flagged as duplicates in the preview.
		var existing []ledger.Directive

		for _, path := range expand(args) {
			match := identify(importers, path)
			if match == nil {
				logger.Warn("no importer claimed file", "path", path)
				continue
			}

			entries, err := match.Extract(path, existing)
			if err != nil {
				return err
			}

			report := reconcile.Build(ledger.Transactions(entries), existing)
			for _, item := range report.Items {
				line := fmt.Sprintf("%s | %-40s | %s",
					item.Extracted.Date().Format("2006-01-02"),
					item.Extracted.Meta().Value("id"),
					item.Extracted.Postings()[0].Units)
				if item.Status == reconcile.Existing {
					fmt.Fprintln(os.Stderr, dupStyle.Render("= "+line))
					continue
				}
				fmt.Fprintln(os.Stderr, newStyle.Render("+ "+line))
			}
			fmt.Fprintf(os.Stderr, "%s: %d new, %d already seen\n",
				path, report.MissingCount(), report.ExistingCount())

			if debug {
				pp.Fprintln(os.Stderr, entries)
			}

			fmt.Print(string(ledger.Render(entries, cliFilters.toFilterFunc())))
			existing = append(existing, entries...)
		}
		return nil
	},
}

var processCmd = &cobra.Command{
	Use:   "process <directory>",
	Short: "Convert every claimed snapshot in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		importers, err := loadImporters(logger)
		if err != nil {
			return err
		}

		processor := service.NewProcessor(importers, cfg.OutputPath, logger)
		return processor.ProcessDirectory(args[0])
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download account snapshots from the Coinbase API",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		if err := cfg.ValidateFetch(); err != nil {
			return err
		}

		auth, err := buildAuthenticator(cmd, cfg)
		if err != nil {
			return err
		}

		client := fetch.NewClient(cfg.APIHost, cfg.APIVersion, auth, nil, logger)
		downloader := fetch.NewDownloader(client, cfg.DataFolder, logger)
		return downloader.Run(cmd.Context())
	},
}

func buildAuthenticator(cmd *cobra.Command, cfg *config.Config) (fetch.Authenticator, error) {
	switch cfg.AuthScheme {
	case "jwt":
		return fetch.NewJWTAuth(cfg.KeyName, cfg.KeySecret, cfg.APIHost)
	case "hmac":
		return fetch.NewHMACAuth(cfg.KeyName, cfg.KeySecret), nil
	case "oauth":
		auth := fetch.NewOAuth(cfg.OAuth.ClientID, cfg.OAuth.ClientSecret, cfg.OAuth.RedirectURI, nil)
		fmt.Fprintf(os.Stderr, "Visit and authorize:\n  %s\nPaste the authorization code: ", auth.AuthCodeURL("coinbase-ledger"))
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			return nil, fmt.Errorf("no authorization code provided")
		}
		code := strings.TrimSpace(scanner.Text())
		if err := auth.Exchange(cmd.Context(), code); err != nil {
			return nil, err
		}
		return auth, nil
	}
	return nil, fmt.Errorf("unknown auth scheme %q", cfg.AuthScheme)
}

func identify(importers []importer.Importer, path string) importer.Importer {
	for _, imp := range importers {
		if imp.Identify(path) {
			return imp
		}
	}
	return nil
}

// expand resolves glob patterns; arguments that match nothing pass through
// unchanged so the user sees a per-file warning instead of silence.
func expand(args []string) []string {
	var paths []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil || len(matches) == 0 {
			paths = append(paths, arg)
			continue
		}
		paths = append(paths, matches...)
	}
	return paths
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&manifestFile, "manifest", "m", "importers.yaml", "Importer manifest file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Verbose logging and entry dumps")

	// Filter flags (global)
	rootCmd.PersistentFlags().StringVar(&cliFilters.startDate, "start", "", "Start date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&cliFilters.endDate, "end", "", "End date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&cliFilters.account, "account", "", "Filter by ledger account (substring)")

	rootCmd.AddCommand(identifyCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(fetchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
