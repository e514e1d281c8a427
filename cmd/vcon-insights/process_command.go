package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"vcon-insights/internal/config"
	"vcon-insights/internal/crm"
	"vcon-insights/internal/dataset"
	"vcon-insights/internal/lexicon"
	"vcon-insights/internal/pipeline"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var xlsxPath string
	var lexiconPath string
	var workers int
	var push bool

	cmd := &cobra.Command{
		Use:   "process [file|glob ...]",
		Short: "Parse and enrich vCon files into the analysis dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			inputs := args
			if len(inputs) == 0 {
				inputs = []string{cfg.Paths.InputGlob}
			}

			out := strings.TrimSpace(outputPath)
			if out == "" {
				out = filepath.Join(cfg.Paths.OutputDir, cfg.Export.Prefix+".csv")
			}
			extra := strings.TrimSpace(xlsxPath)
			if extra == "" && wantsFormat(cfg.Export.Formats, "xlsx") && !strings.EqualFold(filepath.Ext(out), ".xlsx") {
				extra = filepath.Join(cfg.Paths.OutputDir, cfg.Export.Prefix+".xlsx")
			}

			lex := lexicon.Default()
			lexPath := strings.TrimSpace(lexiconPath)
			if lexPath == "" {
				lexPath = cfg.Paths.LexiconPath
			}
			if lexPath != "" {
				if lex, err = lexicon.Load(lexPath); err != nil {
					return err
				}
			}

			n := workers
			if n <= 0 {
				n = cfg.Enrich.Workers
			}

			summary, err := pipeline.Run(pipeline.Options{
				Inputs:     inputs,
				OutputPath: out,
				ExtraXLSX:  extra,
				Workers:    n,
				Lexicon:    lex,
				BrandToken: cfg.Enrich.BrandToken,
				OrgKeyword: cfg.Enrich.OrgKeyword,
			})
			if err != nil {
				return err
			}

			printRunSummary(cmd.OutOrStdout(), summary)

			if push || cfg.CRM.Enabled {
				return pushRun(cmd, cfg, summary, out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Dataset output path (.csv or .xlsx)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write an extra XLSX copy to this path")
	cmd.Flags().StringVar(&lexiconPath, "lexicon", "", "YAML lexicon overriding the built-in keyword sets")
	cmd.Flags().IntVar(&workers, "workers", 0, "Enrichment workers (default from configuration)")
	cmd.Flags().BoolVar(&push, "push", false, "Push the run to the CRM webhook after export")
	return cmd
}

func pushRun(cmd *cobra.Command, cfg *config.Config, summary *pipeline.Summary, outputPath string) error {
	client, err := crm.New(cfg.CRM)
	if err != nil {
		return err
	}
	if err := client.PushRunSummary(cmd.Context(), summary); err != nil {
		return err
	}
	ds, err := dataset.Read(outputPath)
	if err != nil {
		return fmt.Errorf("reload dataset for crm push: %w", err)
	}
	if err := client.PushRecords(cmd.Context(), ds.Records); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pushed %d records to CRM\n", len(ds.Records))
	return nil
}

func wantsFormat(formats []string, want string) bool {
	for _, f := range formats {
		if f == want {
			return true
		}
	}
	return false
}

// printRunSummary mirrors the batch summary the pipeline logs, shaped for a
// terminal reader.
func printRunSummary(w io.Writer, s *pipeline.Summary) {
	fmt.Fprintln(w)
	printSection(w, "Processing Summary")
	fmt.Fprintf(w, "Total Conversations Processed: %d\n", s.RecordsWritten)
	fmt.Fprintf(w, "Date Range: %s to %s\n", s.DateRangeStart, s.DateRangeEnd)
	fmt.Fprintf(w, "Unique Agents: %d\n", s.UniqueAgents)
	fmt.Fprintf(w, "Unique Locations: %d\n", s.UniqueLocations)
	fmt.Fprintf(w, "Files Scanned: %d (%d failed, %d records skipped)\n", s.FilesScanned, s.FilesFailed, s.RecordsSkipped)
	fmt.Fprintf(w, "Output: %s\n", s.OutputPath)

	for _, section := range []struct {
		title  string
		counts map[string]int
	}{
		{"Conversation Types", s.ConversationTypes},
		{"Sentiment Distribution", s.Sentiments},
		{"Call Outcomes", s.Outcomes},
	} {
		if len(section.counts) == 0 {
			continue
		}
		fmt.Fprintln(w)
		printSection(w, section.title)
		fmt.Fprintln(w, renderTable([]string{"Category", "Calls"}, countRows(section.counts), []columnAlignment{alignLeft, alignRight}))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Average Call Quality Score: %.1f\n", s.AvgQualityScore)
	fmt.Fprintf(w, "Average Script Adherence: %.1f%%\n", s.AvgAdherenceRate*100)
	fmt.Fprintf(w, "Average Customer Satisfaction: %.1f\n", s.AvgSatisfaction)
}
