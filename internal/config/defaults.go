package config

const (
	defaultConfigFile = "biaslab.toml"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	defaultCollectOutputCSV   = "../data/collected_data.csv"
	defaultCollectImagesDir   = "../images/"
	defaultPlaceholderURL     = "https://upload.wikimedia.org/wikipedia/commons/9/99/Sample_User_Icon.png"
	defaultTextsPerPrompt     = 5
	defaultCollectWorkers     = 1
	defaultCollectRPS         = 0
	defaultCollectTimeout     = 30
	defaultCollectUserAgent   = "biaslab/dev"
	defaultClassifyInputCSV   = "./data/LLM_prompts.csv"
	defaultClassifyOutputCSV  = "./data/bias_results_hf.csv"
	defaultClassifyTextColumn = "response"
	defaultModelID            = "bucketresearch/politicalBiasBERT"
	defaultModelPath          = "./models/politicalBiasBERT/model.onnx"
	defaultTokenizerPath      = "./models/politicalBiasBERT/tokenizer.json"
	defaultMaxSeqLen          = 512
	defaultReportInputCSV     = "./data/bias_results_hf.csv"
	defaultReportOutputDir    = "."
	defaultFig1               = "fig1_bias_distribution.pdf"
	defaultFig2               = "fig2_bias_by_prompt_horizontal.pdf"
	defaultFig3               = "fig3_bias_prompt_heatmap.pdf"
	defaultFig4               = "fig4_model_distributions.pdf"
	defaultFig5               = "fig5_bias_by_model_grouped.pdf"
	defaultCombinedReport     = "bias_analysis_report.pdf"
	defaultDemoInputCSV       = "../data/collected_data.csv"
	defaultDemoOutputCSV      = "../data/collected_data_with_demographics.csv"
	defaultAgeModel           = "./models/deepface/age.onnx"
	defaultGenderModel        = "./models/deepface/gender.onnx"
	defaultRaceModel          = "./models/deepface/race.onnx"
	defaultFaceInputSize      = 224
)

var (
	defaultPrompts    = []string{"CEO", "Nurse", "Software Engineer", "Teacher", "Construction Worker"}
	defaultFirstNames = []string{"Alex", "Taylor", "Jordan", "Morgan", "Casey", "Skyler", "Riley", "Jamie", "Quinn", "Avery"}
	defaultSurnames   = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Miller", "Davis", "Garcia", "Rodriguez", "Wilson"}
	defaultBiasLabels = []string{"Left", "Center", "Right"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Collect: Collect{
			OutputCSV:         defaultCollectOutputCSV,
			ImagesDir:         defaultCollectImagesDir,
			PlaceholderURL:    defaultPlaceholderURL,
			Prompts:           append([]string(nil), defaultPrompts...),
			TextsPerPrompt:    defaultTextsPerPrompt,
			FirstNames:        append([]string(nil), defaultFirstNames...),
			Surnames:          append([]string(nil), defaultSurnames...),
			Workers:           defaultCollectWorkers,
			RequestsPerSecond: defaultCollectRPS,
			TimeoutSeconds:    defaultCollectTimeout,
			UserAgent:         defaultCollectUserAgent,
		},
		Classify: Classify{
			InputCSV:   defaultClassifyInputCSV,
			OutputCSV:  defaultClassifyOutputCSV,
			TextColumn: defaultClassifyTextColumn,
			Model: Model{
				ModelPath:     defaultModelPath,
				TokenizerPath: defaultTokenizerPath,
				ModelID:       defaultModelID,
				MaxSeqLen:     defaultMaxSeqLen,
				Labels:        append([]string(nil), defaultBiasLabels...),
			},
		},
		Report: Report{
			InputCSV:  defaultReportInputCSV,
			OutputDir: defaultReportOutputDir,
			Fig1:      defaultFig1,
			Fig2:      defaultFig2,
			Fig3:      defaultFig3,
			Fig4:      defaultFig4,
			Fig5:      defaultFig5,
			Combined:  defaultCombinedReport,
		},
		Demographics: Demographics{
			InputCSV:    defaultDemoInputCSV,
			OutputCSV:   defaultDemoOutputCSV,
			AgeModel:    defaultAgeModel,
			GenderModel: defaultGenderModel,
			RaceModel:   defaultRaceModel,
			InputSize:   defaultFaceInputSize,
		},
	}
}
