package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/biaslab/internal/config"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, "biaslab.toml", filepath.Base(resolved))

	assert.Equal(t, filepath.Clean("./data/LLM_prompts.csv"), cfg.Classify.InputCSV)
	assert.Equal(t, filepath.Clean("./data/bias_results_hf.csv"), cfg.Classify.OutputCSV)
	assert.Equal(t, "response", cfg.Classify.TextColumn)
	assert.Equal(t, []string{"Left", "Center", "Right"}, cfg.Classify.Model.Labels)
	assert.Equal(t, 512, cfg.Classify.Model.MaxSeqLen)
	assert.Equal(t, []string{"CEO", "Nurse", "Software Engineer", "Teacher", "Construction Worker"}, cfg.Collect.Prompts)
	assert.Equal(t, 5, cfg.Collect.TextsPerPrompt)
	assert.Len(t, cfg.Collect.FirstNames, 10)
	assert.Len(t, cfg.Collect.Surnames, 10)
	assert.Equal(t, 1, cfg.Collect.Workers)
	assert.Equal(t, "fig1_bias_distribution.pdf", cfg.Report.Fig1)
	assert.Equal(t, "bias_analysis_report.pdf", cfg.Report.Combined)
	assert.Equal(t, 224, cfg.Demographics.InputSize)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadProjectFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := `
[logging]
level = "DEBUG"

[collect]
prompts = ["Pilot", " pilot ", "Chef"]
texts_per_prompt = 2
workers = 4

[classify]
text_column = "answer"

[classify.model]
labels = ["left", "center", "right"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "biaslab.toml"), []byte(content), 0o644))

	cfg, _, exists, err := config.Load("")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"Pilot", "Chef"}, cfg.Collect.Prompts)
	assert.Equal(t, 2, cfg.Collect.TextsPerPrompt)
	assert.Equal(t, 4, cfg.Collect.Workers)
	assert.Equal(t, "answer", cfg.Classify.TextColumn)
	assert.Equal(t, []string{"left", "center", "right"}, cfg.Classify.Model.Labels)
	// untouched sections keep defaults
	assert.Equal(t, "fig5_bias_by_model_grouped.pdf", cfg.Report.Fig5)
}

func TestLoadKeepsDuplicateNamesAndLabels(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := `
[collect]
texts_per_prompt = 0
first_names = ["Alex", "alex", " Alex ", ""]
surnames = ["Smith", "Smith"]

[classify.model]
labels = ["Left", "left", "Right"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "biaslab.toml"), []byte(content), 0o644))

	cfg, _, _, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Collect.TextsPerPrompt)
	assert.Equal(t, []string{"Alex", "alex", "Alex"}, cfg.Collect.FirstNames)
	assert.Equal(t, []string{"Smith", "Smith"}, cfg.Collect.Surnames)
	assert.Equal(t, []string{"Left", "left", "Right"}, cfg.Classify.Model.Labels)
}

func TestValidateReportExtension(t *testing.T) {
	cfg := config.Default()
	cfg.Report.Fig2 = "figures.v2/fig2"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report.fig2")

	cfg = config.Default()
	cfg.Report.Combined = "REPORT.PDF"
	assert.NoError(t, cfg.Validate())
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, _, _, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	content := `
[logging]
format = "xml"

[collect]
workers = -1
placeholder_url = "not a url"

[classify.model]
max_seq_len = 1

[report]
fig1 = "fig1.png"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, _, _, err := config.Load(path)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "logging.format")
	assert.Contains(t, msg, "collect.workers")
	assert.Contains(t, msg, "collect.placeholder_url")
	assert.Contains(t, msg, "max_seq_len")
	assert.Contains(t, msg, "report.fig1")
}

func TestSampleConfigParsesAndMatchesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample", "biaslab.toml")
	require.NoError(t, config.CreateSample(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var parsed config.Config
	require.NoError(t, toml.Unmarshal(data, &parsed))

	def := config.Default()
	assert.Equal(t, def.Collect.Prompts, parsed.Collect.Prompts)
	assert.Equal(t, def.Collect.PlaceholderURL, parsed.Collect.PlaceholderURL)
	assert.Equal(t, def.Classify.Model.Labels, parsed.Classify.Model.Labels)
	assert.Equal(t, def.Report.Combined, parsed.Report.Combined)

	cfg, _, exists, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, def.Demographics.InputSize, cfg.Demographics.InputSize)
}

func TestEnsureDirectoriesAndReportPath(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Collect.OutputCSV = filepath.Join(dir, "data", "collected.csv")
	cfg.Collect.ImagesDir = filepath.Join(dir, "images")
	cfg.Classify.OutputCSV = filepath.Join(dir, "data", "bias.csv")
	cfg.Report.OutputDir = filepath.Join(dir, "figures")
	cfg.Demographics.OutputCSV = filepath.Join(dir, "demo", "out.csv")

	require.NoError(t, cfg.EnsureDirectories())
	for _, sub := range []string{"data", "images", "figures", "demo"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.Equal(t, filepath.Join(dir, "figures", "a.pdf"), cfg.ReportPath("a.pdf"))
	assert.Equal(t, "/abs/a.pdf", cfg.ReportPath("/abs/a.pdf"))
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := config.Default()
	data, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "placeholder_url")
	assert.Contains(t, string(data), "[classify.model]")
}
