package bias

import "context"

// Prediction is the single top-scoring label for a text.
type Prediction struct {
	Label string
	Score float32
}

// Classifier exposes the minimal surface required by the service layer.
type Classifier interface {
	Classify(ctx context.Context, text string) (Prediction, error)
	ModelID() string
	Close() error
}
