package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yashubustudio/biaslab/collect"
	"yashubustudio/biaslab/internal/fsutil"
)

func newCollectCommand(ctx *commandContext) *cobra.Command {
	var outputFlag, imagesFlag string
	var seed int64

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Generate synthetic prompt samples and download their images",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			output, err := pick(outputFlag, cfg.Collect.OutputCSV)
			if err != nil {
				return err
			}
			imagesDir, err := pick(imagesFlag, cfg.Collect.ImagesDir)
			if err != nil {
				return err
			}
			if err := fsutil.EnsureDir(imagesDir); err != nil {
				return err
			}
			logger, _ := ctx.runLogger(cmd)

			lock, err := fsutil.LockOutput(output)
			if err != nil {
				return err
			}
			defer lock.Release()

			var rng *rand.Rand
			if cmd.Flags().Changed("seed") {
				rng = rand.New(rand.NewSource(seed))
			}
			downloader := collect.NewDownloader(collect.DownloaderConfig{
				UserAgent: cfg.Collect.UserAgent,
				Timeout:   time.Duration(cfg.Collect.TimeoutSeconds) * time.Second,
				Logger:    logger,
			})
			collector, err := collect.New(collect.Options{
				Prompts:           cfg.Collect.Prompts,
				TextsPerPrompt:    cfg.Collect.TextsPerPrompt,
				FirstNames:        cfg.Collect.FirstNames,
				Surnames:          cfg.Collect.Surnames,
				ImagesDir:         imagesDir,
				PlaceholderURL:    cfg.Collect.PlaceholderURL,
				Workers:           cfg.Collect.Workers,
				RequestsPerSecond: cfg.Collect.RequestsPerSecond,
			}, downloader, rng, logger)
			if err != nil {
				return err
			}

			out, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer out.Close()

			stats, err := collector.Run(cmd.Context(), out)
			if err != nil {
				return err
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("close output: %w", err)
			}
			logger.Info("collection finished",
				zap.Int("rows", stats.Rows),
				zap.Int("downloaded", stats.Downloaded),
				zap.Int("failed", stats.Failed),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Data collection complete: %d rows written to %s (%d images saved, %d failed)\n",
				stats.Rows, output, stats.Downloaded, stats.Failed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Destination CSV for collected samples")
	cmd.Flags().StringVar(&imagesFlag, "images", "", "Directory for downloaded images")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for reproducible name and file draws")
	return cmd
}
