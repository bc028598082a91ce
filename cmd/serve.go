package cmd

import (
	"fmt"
	"time"

	"github.com/KaramelBytes/exoscope/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve [path|url]",
	Short: "Serve the catalog over a read-only HTTP API",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := globalConfig()
		if err != nil {
			return err
		}
		store, err := openStore(c, args)
		if err != nil {
			return err
		}
		addr := c.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		srv := server.New(store, server.Options{
			Addr:           addr,
			RateLimitRPS:   c.RateLimitRPS,
			RateLimitBurst: c.RateLimitBurst,
			PageSize:       c.PageSize,
			ScatterCap:     c.ScatterCap,
			CacheTTL:       time.Duration(c.CacheTTLSec) * time.Second,
		}, logger)
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Serving %s on http://%s (Ctrl+C to stop)\n", catalogArg(c, args), addr)
		return srv.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config listen_addr)")
}
