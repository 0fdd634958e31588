package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yashubustudio/biaslab/bias"
	"yashubustudio/biaslab/internal/fsutil"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var inputFlag, outputFlag string

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Label each response with Left, Center or Right",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			input, err := pick(inputFlag, cfg.Classify.InputCSV)
			if err != nil {
				return err
			}
			output, err := pick(outputFlag, cfg.Classify.OutputCSV)
			if err != nil {
				return err
			}
			logger, runID := ctx.runLogger(cmd)

			lock, err := fsutil.LockOutput(output)
			if err != nil {
				return err
			}
			defer lock.Release()

			in, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer in.Close()

			classifier, err := ctx.newClassifier(cfg.Classify.Model)
			if err != nil {
				return fmt.Errorf("load classifier: %w", err)
			}

			progress := newSpinner(cmd.ErrOrStderr(), "classifying")
			svc, err := bias.NewService(classifier, bias.ServiceConfig{
				TextColumn: cfg.Classify.TextColumn,
				Progress:   func(s bias.Stats) { progress.set(s.Rows) },
			}, logger)
			if err != nil {
				_ = classifier.Close()
				return err
			}
			defer svc.Close()

			var cache *bias.LabelCache
			if cfg.Classify.LabelCache != "" {
				cache, err = bias.OpenLabelCache(cmd.Context(), cfg.Classify.LabelCache, classifier.ModelID())
				if err != nil {
					return err
				}
				defer cache.Close()
				svc.SetCache(cache)
			}

			out, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer out.Close()

			logger.Info("classifying responses",
				zap.String("input", input),
				zap.String("output", output),
				zap.String("model", classifier.ModelID()),
			)
			started := time.Now()
			stats, err := svc.Annotate(cmd.Context(), in, out)
			progress.finish()
			if err != nil {
				return err
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("close output: %w", err)
			}
			finished := time.Now()
			logger.Info("classification finished",
				zap.Int("rows", stats.Rows),
				zap.Int("failed", stats.Failed),
				zap.Duration("elapsed", finished.Sub(started)),
			)

			if cache != nil {
				run := bias.Run{
					ID:         runID,
					Command:    cmd.CommandPath(),
					StartedAt:  started,
					FinishedAt: finished,
					Rows:       stats.Rows,
					Failed:     stats.Failed,
				}
				if err := cache.RecordRun(cmd.Context(), run); err != nil {
					logger.Warn("failed to record run", zap.Error(err))
				}
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, renderTable(
				[]string{"Rows", "Classified", "Empty", "Failed", "Cache hits"},
				[][]string{{
					strconv.Itoa(stats.Rows),
					strconv.Itoa(stats.Classified),
					strconv.Itoa(stats.Empty),
					strconv.Itoa(stats.Failed),
					strconv.Itoa(stats.CacheHits),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
				shouldColorize(w),
			))
			fmt.Fprintf(w, "Done - bias results written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFlag, "input", "i", "", "Responses CSV to classify")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Destination CSV for labelled responses")
	return cmd
}
