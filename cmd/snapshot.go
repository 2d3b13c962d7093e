package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/obs-infancia/sinanetl/internal/dict"
	"github.com/obs-infancia/sinanetl/internal/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Rebuild the processed snapshot from the raw partitions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
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

		start := time.Now()
		stats, err := snapshot.New(cfg, dicts, logger).Build(ctx)
		if err != nil {
			return fmt.Errorf("snapshot build: %w", err)
		}
		logger.Info("snapshot built",
			zap.Int("partitions", stats.Partitions),
			zap.Int("partition_errors", stats.PartitionErrors),
			zap.Int("raw_rows", stats.RawRows),
			zap.Int("rows", stats.Rows),
			zap.Duration("elapsed", time.Since(start)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}
