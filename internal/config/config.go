package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Collect contains configuration for the synthetic sample collector.
type Collect struct {
	OutputCSV         string   `toml:"output_csv"`
	ImagesDir         string   `toml:"images_dir"`
	PlaceholderURL    string   `toml:"placeholder_url"`
	Prompts           []string `toml:"prompts"`
	TextsPerPrompt    int      `toml:"texts_per_prompt"`
	FirstNames        []string `toml:"first_names"`
	Surnames          []string `toml:"surnames"`
	Workers           int      `toml:"workers"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	TimeoutSeconds    int      `toml:"timeout_seconds"`
	UserAgent         string   `toml:"user_agent"`
}

// Model describes an ONNX sequence classification model and its tokenizer.
type Model struct {
	LibraryPath   string   `toml:"library_path"`
	ModelPath     string   `toml:"model_path"`
	TokenizerPath string   `toml:"tokenizer_path"`
	ModelID       string   `toml:"model_id"`
	MaxSeqLen     int      `toml:"max_seq_len"`
	Labels        []string `toml:"labels"`
}

// Classify contains configuration for the bias classifier.
type Classify struct {
	InputCSV   string `toml:"input_csv"`
	OutputCSV  string `toml:"output_csv"`
	TextColumn string `toml:"text_column"`
	LabelCache string `toml:"label_cache"`
	Model      Model  `toml:"model"`
}

// Report contains configuration for the figure renderer.
type Report struct {
	InputCSV  string `toml:"input_csv"`
	OutputDir string `toml:"output_dir"`
	Fig1      string `toml:"fig1"`
	Fig2      string `toml:"fig2"`
	Fig3      string `toml:"fig3"`
	Fig4      string `toml:"fig4"`
	Fig5      string `toml:"fig5"`
	Combined  string `toml:"combined"`
}

// Demographics contains configuration for the face attribute analyzer.
type Demographics struct {
	InputCSV    string `toml:"input_csv"`
	OutputCSV   string `toml:"output_csv"`
	LibraryPath string `toml:"library_path"`
	AgeModel    string `toml:"age_model"`
	GenderModel string `toml:"gender_model"`
	RaceModel   string `toml:"race_model"`
	InputSize   int    `toml:"input_size"`
}

// Config encapsulates all configuration values for biaslab.
//
// Sections by pipeline:
//   - Logging: log format and level
//   - Collect: synthetic prompt/text/image rows
//   - Classify: political bias labelling of responses
//   - Report: charts and the combined PDF report
//   - Demographics: age, gender and race prediction for collected images
type Config struct {
	Logging      Logging      `toml:"logging"`
	Collect      Collect      `toml:"collect"`
	Classify     Classify     `toml:"classify"`
	Report       Report       `toml:"report"`
	Demographics Demographics `toml:"demographics"`
}

// Load locates, parses, and validates a configuration file. When no file is
// found the defaults are returned. The second return value is the resolved
// path and the third reports whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s not found", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	projectPath, err := filepath.Abs(defaultConfigFile)
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return projectPath, false, nil
}

// EnsureDirectories creates the output directories every pipeline writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Collect.OutputCSV),
		c.Collect.ImagesDir,
		filepath.Dir(c.Classify.OutputCSV),
		c.Report.OutputDir,
		filepath.Dir(c.Demographics.OutputCSV),
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Marshal renders the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

// ExpandPath resolves a leading "~" and cleans the path. Relative paths stay
// relative so the defaults keep working from the project directory.
func ExpandPath(pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	return filepath.Clean(pathValue), nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ReportPath joins a report artifact name onto the report output directory.
func (c *Config) ReportPath(name string) string {
	if filepath.IsAbs(name) || c.Report.OutputDir == "" {
		return name
	}
	return filepath.Join(c.Report.OutputDir, name)
}
