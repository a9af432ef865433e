package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amonks/tally/server"
)

// tally serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the task API over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var serveAddr string

const defaultServeAddr = "127.0.0.1:8080"

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (default "+defaultServeAddr+")")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	client, err := a.assistClient()
	if err != nil {
		return err
	}

	srv, err := server.NewServer(server.ServerOptions{
		Store:          a.store,
		Assist:         client,
		Logger:         a.logger,
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
	})
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	if addr == "" {
		addr = defaultServeAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Serve(ctx, addr)
}
