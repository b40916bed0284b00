package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/jorgeml/coinbase-ledger/pkg/plan"
	"github.com/jorgeml/coinbase-ledger/pkg/server"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "coinbase-ledger",
	})

	var (
		port     = flag.String("port", "3000", "Server port")
		manifest = flag.String("m", "importers.yaml", "Importer manifest file")
	)
	flag.Parse()

	p, err := plan.Load(*manifest)
	if err != nil {
		logger.Fatal("failed to load manifest", "err", err)
	}

	srv := server.New(p.Build(logger), logger)
	addr := fmt.Sprintf("0.0.0.0:%s", *port)
	logger.Info("starting server", "addr", addr)
	if err := srv.Start(addr); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
