// Package report renders the bias charts as individual PDF files and as a
// single multi-page report.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"yashubustudio/biaslab/bias"
	"yashubustudio/biaslab/internal/fsutil"
	"yashubustudio/biaslab/internal/logging"
)

// Options names the files written by a Reporter.
type Options struct {
	OutputDir string
	// FigureFiles holds the five per-figure file names in report order.
	FigureFiles [5]string
	Combined    string
}

// Artifacts lists the files written by Render.
type Artifacts struct {
	Figures  []string
	Combined string
}

// Reporter draws a Summary to PDF files.
type Reporter struct {
	opts   Options
	logger *zap.Logger
}

// NewReporter validates opts and returns a Reporter.
func NewReporter(opts Options, logger *zap.Logger) (*Reporter, error) {
	for i, name := range opts.FigureFiles {
		if name == "" {
			return nil, fmt.Errorf("figure %d has no file name", i+1)
		}
	}
	if opts.Combined == "" {
		return nil, errors.New("combined report has no file name")
	}
	return &Reporter{opts: opts, logger: logging.OrNop(logger)}, nil
}

func (r *Reporter) path(name string) string {
	if filepath.IsAbs(name) || r.opts.OutputDir == "" {
		return name
	}
	return filepath.Join(r.opts.OutputDir, name)
}

// Render builds the figures once and writes each to its own PDF, then all
// five, one per page, to the combined report. Every document is encoded
// before the first file is written, so a drawing error leaves no output.
func (r *Reporter) Render(s bias.Summary) (Artifacts, error) {
	figs, err := Figures(s)
	if err != nil {
		return Artifacts{}, err
	}
	return r.render(figs)
}

type document struct {
	path  string
	name  string
	pages int
	data  []byte
}

func (r *Reporter) render(figs []Figure) (Artifacts, error) {
	if len(figs) != len(r.opts.FigureFiles) {
		return Artifacts{}, fmt.Errorf("got %d figures for %d files", len(figs), len(r.opts.FigureFiles))
	}
	docs := make([]document, 0, len(figs)+1)
	for i, f := range figs {
		path := r.path(r.opts.FigureFiles[i])
		data, err := encodePDF(path, f.Width, f.Height, f)
		if err != nil {
			return Artifacts{}, err
		}
		docs = append(docs, document{path: path, name: f.Name, pages: 1, data: data})
	}

	var w, h vg.Length
	for _, f := range figs {
		w = max(w, f.Width)
		h = max(h, f.Height)
	}
	combined := r.path(r.opts.Combined)
	data, err := encodePDF(combined, w, h, figs...)
	if err != nil {
		return Artifacts{}, err
	}
	docs = append(docs, document{path: combined, name: "combined", pages: len(figs), data: data})

	if err := fsutil.EnsureDir(r.opts.OutputDir); err != nil {
		return Artifacts{}, err
	}
	var out Artifacts
	for i, d := range docs {
		if err := fsutil.WriteFileAtomic(d.path, d.data); err != nil {
			return out, fmt.Errorf("write %s: %w", filepath.Base(d.path), err)
		}
		r.logger.Debug("wrote report document",
			zap.String("document", d.name),
			zap.String("path", d.path),
			zap.Int("pages", d.pages),
		)
		if i == len(docs)-1 {
			out.Combined = d.path
		} else {
			out.Figures = append(out.Figures, d.path)
		}
	}
	return out, nil
}

// encodePDF draws each figure on its own page of a w x h document.
func encodePDF(path string, w, h vg.Length, figs ...Figure) ([]byte, error) {
	c := vgpdf.New(w, h)
	for i, f := range figs {
		if i > 0 {
			c.NextPage()
		}
		if err := f.Draw(draw.New(c)); err != nil {
			return nil, fmt.Errorf("draw %s: %w", f.Name, err)
		}
	}
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return buf.Bytes(), nil
}
