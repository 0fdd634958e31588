package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yashubustudio/biaslab/bias"
	"yashubustudio/biaslab/demographics"
	"yashubustudio/biaslab/internal/fsutil"
)

func newDemographicsCommand(ctx *commandContext) *cobra.Command {
	var inputFlag, outputFlag string

	cmd := &cobra.Command{
		Use:   "demographics",
		Short: "Predict gender, age and race for each collected image",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			input, err := pick(inputFlag, cfg.Demographics.InputCSV)
			if err != nil {
				return err
			}
			output, err := pick(outputFlag, cfg.Demographics.OutputCSV)
			if err != nil {
				return err
			}
			logger, _ := ctx.runLogger(cmd)

			lock, err := fsutil.LockOutput(output)
			if err != nil {
				return err
			}
			defer lock.Release()

			table, err := bias.ReadTableFile(input)
			if err != nil {
				return err
			}

			a, err := ctx.newAnalyzer(cfg.Demographics)
			if err != nil {
				return fmt.Errorf("load face models: %w", err)
			}
			defer a.Close()

			svc, err := demographics.NewService(a, logger)
			if err != nil {
				return err
			}
			progress := newSpinner(cmd.ErrOrStderr(), "analyzing")
			svc.Progress = func(s demographics.Stats) { progress.set(s.Rows) }

			stats, err := svc.Annotate(cmd.Context(), table)
			progress.finish()
			if err != nil {
				return err
			}
			if err := bias.WriteTableFile(output, table); err != nil {
				return err
			}
			logger.Info("demographic analysis finished",
				zap.Int("rows", stats.Rows),
				zap.Int("analyzed", stats.Analyzed),
				zap.Int("missing", stats.Missing),
				zap.Int("failed", stats.Failed),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Demographic analysis saved to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFlag, "input", "i", "", "Collected samples CSV")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Destination CSV with predicted columns")
	return cmd
}
