// Package demographics attaches predicted gender, age and race to each row
// of a collected-samples table.
package demographics

import (
	"context"
	"errors"
	"os"

	"go.uber.org/zap"

	"yashubustudio/biaslab/bias"
	"yashubustudio/biaslab/internal/logging"
)

// Column names read and written by the analyzer.
const (
	ColumnImagePath = "Image Path"
	ColumnGender    = "Predicted Gender"
	ColumnAge       = "Predicted Age"
	ColumnRace      = "Predicted Race"
)

// Attributes are the predicted fields for one image.
type Attributes struct {
	Gender string
	Age    string
	Race   string
}

// Analyzer predicts attributes for the image at path. Implementations are
// expected to return a best-effort guess even when no face is detected.
type Analyzer interface {
	Analyze(ctx context.Context, path string) (Attributes, error)
}

// Stats summarizes an annotation pass.
type Stats struct {
	Rows     int
	Analyzed int
	Missing  int
	Failed   int
}

// Service fills the predicted columns of a table.
type Service struct {
	analyzer Analyzer
	logger   *zap.Logger
	// Progress, when set, is called after each row.
	Progress func(Stats)
}

// NewService constructs a service around analyzer.
func NewService(analyzer Analyzer, logger *zap.Logger) (*Service, error) {
	if analyzer == nil {
		return nil, errors.New("analyzer is required")
	}
	return &Service{analyzer: analyzer, logger: logging.OrNop(logger)}, nil
}

// Annotate adds the three predicted columns when absent (empty strings) and
// fills them for every row whose image exists. Missing images are skipped and
// failed analyses leave the row untouched; both are logged. Only a missing
// image path column or context cancellation return an error.
func (s *Service) Annotate(ctx context.Context, t *bias.Table) (Stats, error) {
	var stats Stats
	pathCol, err := t.Column(ColumnImagePath)
	if err != nil {
		return stats, err
	}
	genderCol := t.EnsureColumn(ColumnGender)
	ageCol := t.EnsureColumn(ColumnAge)
	raceCol := t.EnsureColumn(ColumnRace)

	for i := range t.Rows {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Rows++
		path := t.Get(i, pathCol)
		if !imageExists(path) {
			stats.Missing++
			s.logger.Info("skipping missing image", zap.Int("row", i+1), zap.String("path", path))
			s.progress(stats)
			continue
		}
		attrs, err := s.analyzer.Analyze(ctx, path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return stats, ctxErr
			}
			stats.Failed++
			s.logger.Warn("failed to analyze image", zap.String("path", path), zap.Error(err))
			s.progress(stats)
			continue
		}
		t.Set(i, genderCol, attrs.Gender)
		t.Set(i, ageCol, attrs.Age)
		t.Set(i, raceCol, attrs.Race)
		stats.Analyzed++
		s.logger.Debug("analyzed image", zap.String("path", path))
		s.progress(stats)
	}
	return stats, nil
}

func (s *Service) progress(stats Stats) {
	if s.Progress != nil {
		s.Progress(stats)
	}
}

func imageExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
