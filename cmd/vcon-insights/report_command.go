package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vcon-insights/internal/dataset"
	"vcon-insights/internal/report"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var inputPath string
	var frequency string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate an executive report from an enriched dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			freq, err := report.ParseFrequency(frequency)
			if err != nil {
				return err
			}
			ds, err := dataset.Read(datasetPath(inputPath, cfg))
			if err != nil {
				return err
			}
			rep := report.Generate(ds.Records, freq)

			if target := strings.TrimSpace(outputPath); target != "" {
				body, err := rep.JSON()
				if err != nil {
					return err
				}
				if err := os.WriteFile(target, append(body, '\n'), 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s report to %s\n", freq, target)
				return nil
			}

			printReport(cmd.OutOrStdout(), rep)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Enriched dataset path (default from configuration)")
	cmd.Flags().StringVarP(&frequency, "frequency", "f", string(report.Daily), "Report frequency: daily, weekly, monthly or quarterly")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the report as JSON to this path instead of rendering it")
	return cmd
}

func printReport(w io.Writer, rep report.Report) {
	printSection(w, rep.Period)
	fmt.Fprintf(w, "Report ID: %s\n", rep.ReportID)
	if rep.PeriodStart != "" {
		fmt.Fprintf(w, "Window: %s to %s\n", rep.PeriodStart, rep.PeriodEnd)
	}
	fmt.Fprintf(w, "Status: %s\n", rep.Status)
	fmt.Fprintln(w, rep.Headline)
	printList(w, rep.KeyPoints)

	m := rep.Metrics
	fmt.Fprintln(w)
	printSection(w, "Key Metrics")
	rows := [][]string{
		{"Total calls", strconv.Itoa(m.TotalCalls)},
		{"Unique customers", strconv.Itoa(m.UniqueCustomers)},
		{"Avg satisfaction", fmt.Sprintf("%.2f", m.AvgSatisfaction)},
		{"Avg quality", fmt.Sprintf("%.2f", m.AvgQuality)},
		{"Script adherence", fmt.Sprintf("%.0f%%", m.AvgScriptAdherence*100)},
		{"Resolution rate", fmt.Sprintf("%.1f%%", m.ResolutionRate)},
		{"Avg duration", fmt.Sprintf("%.1f min", m.AvgDurationMinutes)},
		{"Retention rate", fmt.Sprintf("%.1f%%", m.RetentionRate)},
	}
	fmt.Fprintln(w, renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))

	if rep.WoW != nil {
		fmt.Fprintln(w)
		printSection(w, "Week over Week")
		changes := [][]string{
			{"Calls", fmt.Sprintf("%+.1f%%", rep.WoW.CallsPct)},
			{"Satisfaction", fmt.Sprintf("%+.2f", rep.WoW.Satisfaction)},
			{"Quality", fmt.Sprintf("%+.2f", rep.WoW.Quality)},
		}
		fmt.Fprintln(w, renderTable([]string{"Metric", "Change"}, changes, []columnAlignment{alignLeft, alignRight}))
	}

	if len(m.TopAgents) > 0 {
		fmt.Fprintln(w)
		printSection(w, "Top Agents by Satisfaction")
		agents := make([][]string, 0, len(m.TopAgents))
		for _, a := range m.TopAgents {
			agents = append(agents, []string{a.Name, fmt.Sprintf("%.2f", a.Value)})
		}
		fmt.Fprintln(w, renderTable([]string{"Agent", "Satisfaction"}, agents, []columnAlignment{alignLeft, alignRight}))
	}

	if len(rep.Alerts) > 0 {
		fmt.Fprintln(w)
		printSection(w, "Alerts")
		alerts := make([][]string, 0, len(rep.Alerts))
		for _, a := range rep.Alerts {
			alerts = append(alerts, []string{a.Type, a.Title, a.Message})
		}
		fmt.Fprintln(w, renderTable([]string{"Level", "Alert", "Detail"}, alerts, nil))
	}

	if len(rep.Insights) > 0 {
		fmt.Fprintln(w)
		printSection(w, "Insights")
		printList(w, rep.Insights)
	}
	if len(rep.Recommendations) > 0 {
		fmt.Fprintln(w)
		printSection(w, "Recommendations")
		printList(w, rep.Recommendations)
	}
}
