package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vcon-insights/internal/dataset"
	"vcon-insights/internal/insights"
)

func newAskCommand(ctx *commandContext) *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "ask \"question\"",
		Short: "Answer a business question from an enriched dataset",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ds, err := dataset.Read(datasetPath(inputPath, cfg))
			if err != nil {
				return err
			}

			answer := insights.New(ds.Records).Ask(strings.Join(args, " "))

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, answer.Text)
			if len(answer.Data) > 0 {
				rows := make([][]string, 0, len(answer.Data))
				for _, m := range answer.Data {
					rows = append(rows, []string{m.Name, formatMetric(m.Value)})
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable([]string{"Name", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
			}
			if len(answer.Suggestions) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Try one of:")
				printList(out, answer.Suggestions)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Enriched dataset path (default from configuration)")
	return cmd
}
