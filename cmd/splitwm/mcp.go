package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/splitwm/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol.
			log.SetOutput(os.Stderr)

			client := flags.client()
			if err := client.Ping(); err != nil {
				log.Printf("Warning: %v", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return mcp.NewServer(client).Run(ctx)
		},
	})
	return cmd
}
