package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/obs-infancia/sinanetl/internal/dict"
	"github.com/obs-infancia/sinanetl/internal/query"
)

var queryFlags struct {
	yearMin   int
	yearMax   int
	uf        string
	municipio string
	tipo      string
	groupBy   string
	limit     int
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a filtered query against the snapshot and print JSON",
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

		dicts := dict.New()
		dicts.LoadMunicipalities(cfg.DictDir, logger)

		adapter, err := query.New(cfg, dicts, logger)
		if err != nil {
			return err
		}
		defer func() { _ = adapter.Close() }()

		f := query.Filter{
			YearMin:      queryFlags.yearMin,
			YearMax:      queryFlags.yearMax,
			UF:           queryFlags.uf,
			Municipality: queryFlags.municipio,
			ViolenceType: queryFlags.tipo,
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if queryFlags.groupBy != "" {
			buckets, status := adapter.Aggregate(cmd.Context(), queryFlags.groupBy, f)
			if status == query.StatusFailed {
				return fmt.Errorf("aggregate by %s failed", queryFlags.groupBy)
			}
			return enc.Encode(map[string]any{"status": status, "buckets": buckets})
		}

		res := adapter.FilteredCases(cmd.Context(), f)
		if res.Status == query.StatusFailed {
			return fmt.Errorf("query failed, see log output")
		}
		rows := res.Rows
		if queryFlags.limit > 0 && len(rows) > queryFlags.limit {
			rows = rows[:queryFlags.limit]
		}
		out := make([]map[string]string, 0, len(rows))
		for i := range rows {
			m := make(map[string]string, len(res.Columns))
			for _, col := range res.Columns {
				m[col] = rows[i].Value(col)
			}
			out = append(out, m)
		}
		return enc.Encode(map[string]any{
			"status": res.Status,
			"total":  len(res.Rows),
			"rows":   out,
		})
	},
}

func init() {
	queryCmd.Flags().IntVar(&queryFlags.yearMin, "year-min", 0, "Lowest notification year")
	queryCmd.Flags().IntVar(&queryFlags.yearMax, "year-max", 0, "Highest notification year")
	queryCmd.Flags().StringVar(&queryFlags.uf, "uf", query.All, "State name filter")
	queryCmd.Flags().StringVar(&queryFlags.municipio, "municipio", query.All, "Municipality name filter")
	queryCmd.Flags().StringVar(&queryFlags.tipo, "tipo", query.All, "Violence type filter")
	queryCmd.Flags().StringVar(&queryFlags.groupBy, "group-by", "", "Aggregate counts by this column instead of listing rows")
	queryCmd.Flags().IntVar(&queryFlags.limit, "limit", 50, "Maximum rows to print (0 = all)")
	rootCmd.AddCommand(queryCmd)
}
