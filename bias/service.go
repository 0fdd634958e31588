package bias

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"yashubustudio/biaslab/internal/logging"
	"yashubustudio/biaslab/internal/textutil"
)

// ServiceConfig selects the columns the service reads and writes.
type ServiceConfig struct {
	// TextColumn holds the response text. Defaults to "response".
	TextColumn string
	// LabelColumn receives the predicted label. Defaults to "bias".
	LabelColumn string
	// Progress, when set, is called after each row is written.
	Progress func(Stats)
}

// Stats summarizes an annotation run.
type Stats struct {
	Rows       int
	Classified int
	Empty      int
	Failed     int
	CacheHits  int
}

// Service labels each response of a table with the classifier's top label.
type Service struct {
	classifier Classifier
	cache      *LabelCache
	cfg        ServiceConfig
	logger     *zap.Logger
}

// NewService constructs a service with the given classifier and configuration.
func NewService(classifier Classifier, cfg ServiceConfig, logger *zap.Logger) (*Service, error) {
	if classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if strings.TrimSpace(cfg.TextColumn) == "" {
		cfg.TextColumn = ColumnResponse
	}
	if strings.TrimSpace(cfg.LabelColumn) == "" {
		cfg.LabelColumn = ColumnBias
	}
	return &Service{
		classifier: classifier,
		cfg:        cfg,
		logger:     logging.OrNop(logger),
	}, nil
}

// SetCache enables label caching. A nil cache disables it.
func (s *Service) SetCache(cache *LabelCache) {
	s.cache = cache
}

// Close releases classifier resources.
func (s *Service) Close() error {
	if s.classifier != nil {
		return s.classifier.Close()
	}
	return nil
}

// Annotate streams in to out row by row, appending the label column. Each
// row is flushed as soon as it is labelled. Empty responses get an empty
// label without a model call, and a failed classification is logged with
// the input line number and also gets an empty label; neither stops the
// run. Only read/write errors and context cancellation abort.
func (s *Service) Annotate(ctx context.Context, in io.Reader, out io.Writer) (Stats, error) {
	var stats Stats
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return stats, errors.New("read header: empty input")
		}
		return stats, fmt.Errorf("read header: %w", err)
	}
	outHeader := make([]string, len(header))
	for i, cell := range header {
		outHeader[i] = textutil.CleanCell(cell)
	}

	textIdx, err := ResolveColumn(outHeader, s.cfg.TextColumn)
	if err != nil {
		s.logger.Warn("text column not found; every row will get an empty label",
			zap.String("column", s.cfg.TextColumn))
		textIdx = -1
	}
	labelIdx, err := ResolveColumn(outHeader, s.cfg.LabelColumn)
	if err != nil {
		outHeader = append(outHeader, s.cfg.LabelColumn)
		labelIdx = len(outHeader) - 1
	}

	writer := csv.NewWriter(out)
	if err := writer.Write(outHeader); err != nil {
		return stats, fmt.Errorf("write header: %w", err)
	}
	writer.Flush()

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read row %d: %w", stats.Rows+1, err)
		}
		line := lastLine(reader, record)
		stats.Rows++

		text := ""
		if textIdx >= 0 && textIdx < len(record) {
			text = strings.TrimSpace(record[textIdx])
		}
		label, err := s.label(ctx, text, line, &stats)
		if err != nil {
			return stats, err
		}

		row := padRow(record, len(outHeader))
		row[labelIdx] = label
		if err := writer.Write(row); err != nil {
			return stats, fmt.Errorf("write row %d: %w", stats.Rows, err)
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return stats, fmt.Errorf("flush row %d: %w", stats.Rows, err)
		}
		if s.cfg.Progress != nil {
			s.cfg.Progress(stats)
		}
	}
	return stats, nil
}

// lastLine returns the input line on which record ends, counting newlines
// inside a quoted final field.
func lastLine(reader *csv.Reader, record []string) int {
	if len(record) == 0 {
		line, _ := reader.FieldPos(0)
		return line
	}
	last := len(record) - 1
	line, _ := reader.FieldPos(last)
	return line + strings.Count(record[last], "\n")
}

func (s *Service) label(ctx context.Context, text string, line int, stats *Stats) (string, error) {
	if text == "" {
		stats.Empty++
		return "", nil
	}
	if s.cache != nil {
		label, ok, err := s.cache.Get(ctx, text)
		if err != nil {
			s.logger.Warn("label cache lookup failed", zap.Int("line", line), zap.Error(err))
		} else if ok {
			stats.CacheHits++
			stats.Classified++
			return label, nil
		}
	}
	pred, err := s.classifier.Classify(ctx, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		stats.Failed++
		s.logger.Warn("classification failed",
			zap.Int("line", line),
			zap.String("text", textutil.Truncate(text, 80)),
			zap.Error(err),
		)
		return "", nil
	}
	stats.Classified++
	if s.cache != nil {
		if err := s.cache.Put(ctx, text, pred); err != nil {
			s.logger.Warn("label cache store failed", zap.Int("line", line), zap.Error(err))
		}
	}
	return pred.Label, nil
}
