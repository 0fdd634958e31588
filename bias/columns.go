package bias

// Column names of the classifier input and output tables.
const (
	ColumnPrompt   = "prompt"
	ColumnModel    = "model"
	ColumnResponse = "response"
	ColumnBias     = "bias"
)
