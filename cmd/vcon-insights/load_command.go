package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vcon-insights/internal/dataset"
	"vcon-insights/internal/store"
)

func newLoadCommand(ctx *commandContext) *cobra.Command {
	var inputPath string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load an enriched dataset into the SQLite warehouse",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ds, err := dataset.Read(datasetPath(inputPath, cfg))
			if err != nil {
				return err
			}

			target := strings.TrimSpace(dbPath)
			if target == "" {
				target = cfg.Paths.DatabasePath
			}
			st, err := store.Open(target)
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := st.LoadDataset(cmd.Context(), ds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d conversations into %s\n", n, target)

			stats, err := st.Stats(cmd.Context())
			if err != nil {
				return err
			}
			printWarehouseStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Enriched dataset path (default from configuration)")
	cmd.Flags().StringVar(&dbPath, "db", "", "Warehouse database path (default from configuration)")
	return cmd
}

func printWarehouseStats(w io.Writer, s store.Stats) {
	fmt.Fprintln(w)
	printSection(w, "Warehouse")
	rows := [][]string{
		{"Conversations", strconv.Itoa(s.TotalConversations)},
		{"Date range", s.MinDate + " to " + s.MaxDate},
		{"Unique agents", strconv.Itoa(s.UniqueAgents)},
		{"Unique locations", strconv.Itoa(s.UniqueLocations)},
		{"Avg quality", fmt.Sprintf("%.2f", s.AvgQuality)},
		{"Avg satisfaction", fmt.Sprintf("%.2f", s.AvgSatisfaction)},
		{"Avg polarity", fmt.Sprintf("%.2f", s.AvgPolarity)},
	}
	fmt.Fprintln(w, renderTable([]string{"Stat", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
}
