package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"essaysim/internal/adapter/store"
	"essaysim/internal/transport/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the grading HTTP API",
	Long: `Start the HTTP API. Routes:
  POST /v1/grade           grade responses against a reference
  POST /v1/stats           compute text statistics
  GET  /v1/languages       list languages
  GET  /v1/attempts        list recorded attempts (store.record must be on)
  GET  /v1/attempts/{id}   fetch one attempt
  GET  /healthz            liveness
  GET  /metrics            Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}

	var st *store.BoltStore
	if cfg.Store.Record {
		st, err = openStore(cfg, GetRootDir())
		if err != nil {
			return err
		}
		defer st.Close()
	}

	grader, err := newGrader(cfg, reg, st)
	if err != nil {
		return err
	}

	var server *httpapi.Server
	if st != nil {
		server = httpapi.NewServer(grader, reg, st, log)
	} else {
		server = httpapi.NewServer(grader, reg, nil, log)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return httpapi.ListenAndServe(ctx, cfg.Server, server.Routes(), log)
}

