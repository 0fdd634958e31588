package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration contains usable values.
func (c *Config) Validate() error {
	var errs []error
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level))
	}
	if c.Collect.TextsPerPrompt < 0 {
		errs = append(errs, errors.New("collect.texts_per_prompt must not be negative"))
	}
	if c.Collect.Workers < 0 {
		errs = append(errs, errors.New("collect.workers must not be negative"))
	}
	if c.Collect.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("collect.requests_per_second must not be negative"))
	}
	if c.Collect.TimeoutSeconds < 0 {
		errs = append(errs, errors.New("collect.timeout_seconds must not be negative"))
	}
	if u, err := url.Parse(c.Collect.PlaceholderURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("collect.placeholder_url is not an absolute URL: %q", c.Collect.PlaceholderURL))
	}
	if c.Classify.Model.MaxSeqLen < 2 {
		errs = append(errs, errors.New("classify.model.max_seq_len must be at least 2"))
	}
	if c.Demographics.InputSize <= 0 {
		errs = append(errs, errors.New("demographics.input_size must be positive"))
	}
	for name, value := range map[string]string{
		"report.fig1":     c.Report.Fig1,
		"report.fig2":     c.Report.Fig2,
		"report.fig3":     c.Report.Fig3,
		"report.fig4":     c.Report.Fig4,
		"report.fig5":     c.Report.Fig5,
		"report.combined": c.Report.Combined,
	} {
		if !strings.EqualFold(filepath.Ext(value), ".pdf") {
			errs = append(errs, fmt.Errorf("%s must be a .pdf file, got %q", name, value))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
