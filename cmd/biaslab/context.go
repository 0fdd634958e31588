package main

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"yashubustudio/biaslab/bias"
	"yashubustudio/biaslab/demographics"
	"yashubustudio/biaslab/infer"
	"yashubustudio/biaslab/internal/config"
	"yashubustudio/biaslab/internal/logging"
)

type commandContext struct {
	configFlag string
	verbose    bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logger *zap.Logger

	// Model constructors; tests replace them to avoid native onnxruntime.
	newClassifier func(config.Model) (bias.Classifier, error)
	newAnalyzer   func(config.Demographics) (analyzer, error)
}

type analyzer interface {
	demographics.Analyzer
	Close() error
}

func newCommandContext() *commandContext {
	return &commandContext{
		newClassifier: openTextClassifier,
		newAnalyzer:   openFaceAnalyzer,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*zap.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	settings := cfg.Logging
	if c.verbose {
		settings.Level = zapcore.DebugLevel.String()
	}
	logger, err := logging.New(settings)
	if err != nil {
		return nil, err
	}
	c.logger = logger
	return logger, nil
}

// runLogger returns the command logger tagged with a fresh run id.
func (c *commandContext) runLogger(cmd *cobra.Command) (*zap.Logger, string) {
	id := uuid.NewString()
	return logging.OrNop(c.logger).With(zap.String("command", cmd.Name()), zap.String("run_id", id)), id
}

func (c *commandContext) syncLogger() {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

func openTextClassifier(m config.Model) (bias.Classifier, error) {
	c, err := infer.NewTextClassifier(infer.TextConfig{
		LibraryPath:   m.LibraryPath,
		ModelPath:     m.ModelPath,
		TokenizerPath: m.TokenizerPath,
		ModelID:       m.ModelID,
		MaxSeqLen:     m.MaxSeqLen,
		Labels:        m.Labels,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func openFaceAnalyzer(d config.Demographics) (analyzer, error) {
	fa, err := infer.NewFaceAnalyzer(infer.FaceConfig{
		LibraryPath: d.LibraryPath,
		AgeModel:    d.AgeModel,
		GenderModel: d.GenderModel,
		RaceModel:   d.RaceModel,
		InputSize:   d.InputSize,
	})
	if err != nil {
		return nil, err
	}
	return fa, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// pick returns the flag override when set, otherwise the configured value.
func pick(flagValue, configured string) (string, error) {
	if v := strings.TrimSpace(flagValue); v != "" {
		return config.ExpandPath(v)
	}
	return configured, nil
}
