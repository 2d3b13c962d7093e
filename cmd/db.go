package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/obs-infancia/sinanetl/internal/chunk"
)

var splitSize int64

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Split or reassemble the snapshot database file",
}

var dbSplitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split the snapshot database into part files for version control",
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

		parts, err := chunk.Split(cfg.DatabasePath, splitSize, logger)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %d parts for %s\n", len(parts), cfg.DatabasePath)
		return nil
	},
}

var dbJoinCmd = &cobra.Command{
	Use:   "join",
	Short: "Reassemble the snapshot database from its part files",
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

		if err := chunk.Join(cfg.DatabasePath, logger); err != nil {
			return err
		}
		fmt.Printf("Reassembled %s\n", cfg.DatabasePath)
		return nil
	},
}

func init() {
	dbSplitCmd.Flags().Int64Var(&splitSize, "size", chunk.DefaultSize, "Part size in bytes")
	dbCmd.AddCommand(dbSplitCmd)
	dbCmd.AddCommand(dbJoinCmd)
	rootCmd.AddCommand(dbCmd)
}
