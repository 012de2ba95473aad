// cmd/serve.go
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/quill-cli/internal/observability"
	"github.com/xkilldash9x/quill-cli/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve tasks over HTTP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.SetServerAddr(addr)
			}

			w, cleanup, err := buildWorker(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return server.New(cfg.Server(), w, observability.GetLogger()).Run(cmd.Context())
		},
	}

	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	return serveCmd
}
