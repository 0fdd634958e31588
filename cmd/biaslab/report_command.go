package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yashubustudio/biaslab/bias"
	"yashubustudio/biaslab/internal/fsutil"
	"yashubustudio/biaslab/report"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var inputFlag, outputFlag string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the bias charts and the combined PDF report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			input, err := pick(inputFlag, cfg.Report.InputCSV)
			if err != nil {
				return err
			}
			outputDir, err := pick(outputFlag, cfg.Report.OutputDir)
			if err != nil {
				return err
			}
			cfg.Report.OutputDir = outputDir
			logger, _ := ctx.runLogger(cmd)

			reporter, err := report.NewReporter(report.Options{
				OutputDir: outputDir,
				FigureFiles: [5]string{
					cfg.Report.Fig1,
					cfg.Report.Fig2,
					cfg.Report.Fig3,
					cfg.Report.Fig4,
					cfg.Report.Fig5,
				},
				Combined: cfg.Report.Combined,
			}, logger)
			if err != nil {
				return err
			}

			records, err := bias.LoadRecords(input)
			if err != nil {
				return err
			}
			summary := bias.Aggregate(records)
			logger.Info("rendering report",
				zap.String("input", input),
				zap.Int("rows", summary.Total),
				zap.Int("prompts", len(summary.Prompts)),
				zap.Int("models", len(summary.Models)),
			)

			lock, err := fsutil.LockOutput(cfg.ReportPath(cfg.Report.Combined))
			if err != nil {
				return err
			}
			defer lock.Release()

			artifacts, err := reporter.Render(summary)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			colorize := shouldColorize(w)
			fmt.Fprintln(w, countsTable("Overall", []string{"All responses"},
				map[string]bias.Counts{"All responses": summary.Overall}, colorize))
			if len(summary.Prompts) > 0 {
				fmt.Fprintln(w, countsTable("Prompt", summary.Prompts, summary.ByPrompt, colorize))
			}
			if len(summary.Models) > 0 {
				fmt.Fprintln(w, countsTable("Model", summary.ModelsSorted(), summary.ByModel, colorize))
			}
			fmt.Fprintf(w, "Saved PDFs: %s\n", strings.Join(artifacts.Figures, ", "))
			fmt.Fprintf(w, "Saved combined report: %s\n", artifacts.Combined)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFlag, "input", "i", "", "Labelled responses CSV")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Directory for the PDF files")
	return cmd
}
