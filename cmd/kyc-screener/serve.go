package main

import (
	"github.com/spf13/cobra"

	"github.com/joelkehle/kyc-screener/internal/export"
	"github.com/joelkehle/kyc-screener/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, true, nil)
		if err != nil {
			return err
		}
		defer a.close()

		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		srv := server.New(ctx, server.Dependencies{
			Searcher:  a.searcher,
			Generator: a.orchestrator,
			Store:     a.store,
			PDF:       export.NewChromiumPDFRenderer(cfg.Export.ChromePath, cfg.Export.PDFTimeout),
			Logger:    logger,
		})
		return srv.Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}
