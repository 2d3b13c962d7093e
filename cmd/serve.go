package cmd

import (
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/obs-infancia/sinanetl/internal/dict"
	"github.com/obs-infancia/sinanetl/internal/httpapi"
	"github.com/obs-infancia/sinanetl/internal/query"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard query API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.HTTPAddr = serveAddr
		}
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		dicts := dict.New()
		dicts.LoadMunicipalities(cfg.DictDir, logger)

		adapter, err := query.New(cfg, dicts, logger)
		if err != nil {
			return err
		}
		defer func() { _ = adapter.Close() }()

		err = httpapi.New(adapter, logger).ListenAndServe(ctx, cfg.HTTPAddr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
