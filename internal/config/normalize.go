package config

import (
	"strings"

	"yashubustudio/biaslab/internal/textutil"
)

func (c *Config) normalize() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	col := &c.Collect
	col.OutputCSV = pathOr(col.OutputCSV, defaultCollectOutputCSV)
	col.ImagesDir = pathOr(col.ImagesDir, defaultCollectImagesDir)
	col.PlaceholderURL = stringOr(col.PlaceholderURL, defaultPlaceholderURL)
	col.Prompts = uniqueListOr(col.Prompts, defaultPrompts)
	col.FirstNames = listOr(col.FirstNames, defaultFirstNames)
	col.Surnames = listOr(col.Surnames, defaultSurnames)
	if col.Workers == 0 {
		col.Workers = defaultCollectWorkers
	}
	if col.TimeoutSeconds == 0 {
		col.TimeoutSeconds = defaultCollectTimeout
	}
	col.UserAgent = stringOr(col.UserAgent, defaultCollectUserAgent)

	cls := &c.Classify
	cls.InputCSV = pathOr(cls.InputCSV, defaultClassifyInputCSV)
	cls.OutputCSV = pathOr(cls.OutputCSV, defaultClassifyOutputCSV)
	cls.TextColumn = stringOr(cls.TextColumn, defaultClassifyTextColumn)
	cls.LabelCache = pathOr(cls.LabelCache, "")
	cls.Model.LibraryPath = pathOr(cls.Model.LibraryPath, "")
	cls.Model.ModelPath = pathOr(cls.Model.ModelPath, defaultModelPath)
	cls.Model.TokenizerPath = pathOr(cls.Model.TokenizerPath, defaultTokenizerPath)
	cls.Model.ModelID = stringOr(cls.Model.ModelID, defaultModelID)
	if cls.Model.MaxSeqLen == 0 {
		cls.Model.MaxSeqLen = defaultMaxSeqLen
	}
	cls.Model.Labels = listOr(cls.Model.Labels, defaultBiasLabels)

	rep := &c.Report
	rep.InputCSV = pathOr(rep.InputCSV, defaultReportInputCSV)
	rep.OutputDir = pathOr(rep.OutputDir, defaultReportOutputDir)
	rep.Fig1 = stringOr(rep.Fig1, defaultFig1)
	rep.Fig2 = stringOr(rep.Fig2, defaultFig2)
	rep.Fig3 = stringOr(rep.Fig3, defaultFig3)
	rep.Fig4 = stringOr(rep.Fig4, defaultFig4)
	rep.Fig5 = stringOr(rep.Fig5, defaultFig5)
	rep.Combined = stringOr(rep.Combined, defaultCombinedReport)

	demo := &c.Demographics
	demo.InputCSV = pathOr(demo.InputCSV, defaultDemoInputCSV)
	demo.OutputCSV = pathOr(demo.OutputCSV, defaultDemoOutputCSV)
	demo.LibraryPath = pathOr(demo.LibraryPath, "")
	demo.AgeModel = pathOr(demo.AgeModel, defaultAgeModel)
	demo.GenderModel = pathOr(demo.GenderModel, defaultGenderModel)
	demo.RaceModel = pathOr(demo.RaceModel, defaultRaceModel)
	if demo.InputSize == 0 {
		demo.InputSize = defaultFaceInputSize
	}
}

func stringOr(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}

// pathOr picks value or fallback and expands a leading "~".
func pathOr(value, fallback string) string {
	chosen := stringOr(value, fallback)
	if chosen == "" {
		return ""
	}
	expanded, err := ExpandPath(chosen)
	if err != nil {
		return chosen
	}
	return expanded
}

// listOr normalizes each entry and drops empty ones, keeping order and
// duplicates. Label lists map positionally onto model outputs, and repeated
// names weight the draws.
func listOr(values, fallback []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v = textutil.Normalize(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	if len(cleaned) == 0 {
		return append([]string(nil), fallback...)
	}
	return cleaned
}

// uniqueListOr is listOr with case-insensitive duplicates removed.
func uniqueListOr(values, fallback []string) []string {
	cleaned := textutil.UniqueNormalized(values)
	if len(cleaned) == 0 {
		return append([]string(nil), fallback...)
	}
	return cleaned
}
