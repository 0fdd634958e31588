// Package collect generates synthetic prompt/text/image rows and downloads
// a sample image for each of them.
package collect

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"yashubustudio/biaslab/internal/logging"
)

// Header is the column layout of the collected samples file.
var Header = []string{"Prompt", "Text Output", "Image Path"}

// Saver stores the resource at url under path.
type Saver interface {
	Save(ctx context.Context, url, path string) error
}

// Options configures a collection run.
type Options struct {
	Prompts        []string
	TextsPerPrompt int
	FirstNames     []string
	Surnames       []string
	ImagesDir      string
	PlaceholderURL string
	// Workers bounds concurrent downloads; values below one mean sequential.
	Workers int
	// RequestsPerSecond throttles downloads; zero disables throttling.
	RequestsPerSecond float64
}

// Sample is one generated row.
type Sample struct {
	Prompt    string
	Text      string
	ImagePath string
	URL       string
}

// Record returns the CSV fields for the sample.
func (s Sample) Record() []string {
	return []string{s.Prompt, s.Text, s.ImagePath}
}

// Stats summarizes a collection run.
type Stats struct {
	Rows       int
	Downloaded int
	Failed     int
}

// Collector produces samples and fetches their images.
type Collector struct {
	opts   Options
	saver  Saver
	rng    *rand.Rand
	logger *zap.Logger
}

// New constructs a Collector. A nil rng seeds one from the clock.
func New(opts Options, saver Saver, rng *rand.Rand, logger *zap.Logger) (*Collector, error) {
	if saver == nil {
		return nil, errors.New("collect: saver is required")
	}
	if len(opts.FirstNames) == 0 || len(opts.Surnames) == 0 {
		return nil, errors.New("collect: name pools must not be empty")
	}
	if opts.TextsPerPrompt < 0 {
		return nil, fmt.Errorf("collect: invalid texts per prompt %d", opts.TextsPerPrompt)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Collector{opts: opts, saver: saver, rng: rng, logger: logging.OrNop(logger)}, nil
}

// Generate draws every sample in prompt order. Names and image suffixes are
// drawn uniformly with replacement; filename collisions are not checked.
func (c *Collector) Generate() []Sample {
	samples := make([]Sample, 0, len(c.opts.Prompts)*c.opts.TextsPerPrompt)
	for _, prompt := range c.opts.Prompts {
		for i := 0; i < c.opts.TextsPerPrompt; i++ {
			first := c.opts.FirstNames[c.rng.Intn(len(c.opts.FirstNames))]
			last := c.opts.Surnames[c.rng.Intn(len(c.opts.Surnames))]
			name := prompt + "_" + strconv.Itoa(1000+c.rng.Intn(9000)) + ".jpg"
			samples = append(samples, Sample{
				Prompt:    prompt,
				Text:      prompt + " " + first + " " + last,
				ImagePath: filepath.Join(c.opts.ImagesDir, name),
				URL:       c.opts.PlaceholderURL,
			})
		}
	}
	return samples
}

// Run generates the samples, downloads their images and writes the CSV to
// out in generation order. Failed downloads are logged and the row is kept.
func (c *Collector) Run(ctx context.Context, out io.Writer) (Stats, error) {
	samples := c.Generate()
	results := c.download(ctx, samples)
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}

	stats := Stats{Rows: len(samples)}
	for _, err := range results {
		if err != nil {
			stats.Failed++
		} else {
			stats.Downloaded++
		}
	}

	w := csv.NewWriter(out)
	if err := w.Write(Header); err != nil {
		return stats, fmt.Errorf("write header: %w", err)
	}
	for _, s := range samples {
		if err := w.Write(s.Record()); err != nil {
			return stats, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return stats, fmt.Errorf("flush csv: %w", err)
	}
	return stats, nil
}

func (c *Collector) download(ctx context.Context, samples []Sample) []error {
	results := make([]error, len(samples))
	workers := c.opts.Workers
	if workers < 1 {
		workers = 1
	}
	limit := rate.Inf
	if c.opts.RequestsPerSecond > 0 {
		limit = rate.Limit(c.opts.RequestsPerSecond)
	}
	limiter := rate.NewLimiter(limit, 1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, s := range samples {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				results[i] = err
				return nil
			}
			err := c.saver.Save(gctx, s.URL, s.ImagePath)
			results[i] = err
			if err != nil {
				c.logger.Warn("failed to download image",
					zap.String("url", s.URL),
					zap.String("path", s.ImagePath),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
