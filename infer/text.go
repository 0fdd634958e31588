package infer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"yashubustudio/biaslab/bias"
	"yashubustudio/biaslab/internal/textutil"
)

// TextConfig configures a sequence classification model.
type TextConfig struct {
	LibraryPath   string
	ModelPath     string
	TokenizerPath string
	ModelID       string
	MaxSeqLen     int
	// Labels maps logit index to label, e.g. Left, Center, Right.
	Labels []string
}

// TextClassifier runs a transformer sequence classifier and keeps the single
// top-scoring label. It implements bias.Classifier.
type TextClassifier struct {
	mu        sync.Mutex
	cfg       TextConfig
	tokenizer Tokenizer
	session   *ort.DynamicAdvancedSession
	inputs    []string
	output    string
}

var _ bias.Classifier = (*TextClassifier)(nil)

// NewTextClassifier initializes onnxruntime, loads the tokenizer and opens a
// session on the model.
func NewTextClassifier(cfg TextConfig) (*TextClassifier, error) {
	if len(cfg.Labels) == 0 {
		return nil, errors.New("text classifier needs at least one label")
	}
	if cfg.MaxSeqLen < 2 {
		cfg.MaxSeqLen = 512
	}
	if cfg.ModelID == "" && cfg.ModelPath != "" {
		cfg.ModelID = filepath.Base(cfg.ModelPath)
	}
	tk, err := LoadTokenizer(cfg.TokenizerPath)
	if err != nil {
		return nil, err
	}
	if err := Init(cfg.LibraryPath); err != nil {
		return nil, err
	}
	model, err := inspectModel(cfg.ModelPath)
	if err != nil {
		Shutdown()
		return nil, err
	}
	inputs := []string{"input_ids", "attention_mask"}
	for _, name := range inputs {
		if !model.hasInput(name) {
			Shutdown()
			return nil, fmt.Errorf("model %s has no %q input", cfg.ModelPath, name)
		}
	}
	if model.hasInput("token_type_ids") {
		inputs = append(inputs, "token_type_ids")
	}
	output := model.outputs[0].Name
	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, inputs, []string{output}, nil)
	if err != nil {
		Shutdown()
		return nil, fmt.Errorf("open session %s: %w", cfg.ModelPath, err)
	}
	return &TextClassifier{
		cfg:       cfg,
		tokenizer: tk,
		session:   session,
		inputs:    inputs,
		output:    output,
	}, nil
}

// ModelID identifies the model for cache keys.
func (c *TextClassifier) ModelID() string {
	return c.cfg.ModelID
}

// Labels returns the label list in logit order.
func (c *TextClassifier) Labels() []string {
	return append([]string(nil), c.cfg.Labels...)
}

// Close destroys the session and releases the onnxruntime environment.
func (c *TextClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	err := c.session.Destroy()
	c.session = nil
	Shutdown()
	return err
}

// Classify tokenizes text with truncation and returns the top label.
func (c *TextClassifier) Classify(ctx context.Context, text string) (bias.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return bias.Prediction{}, err
	}
	clean := textutil.StripControl(strings.TrimSpace(text))
	enc, err := c.tokenizer.Encode(clean)
	if err != nil {
		return bias.Prediction{}, err
	}
	enc = Truncate(enc, c.cfg.MaxSeqLen)
	if enc.Len() == 0 {
		return bias.Prediction{}, errors.New("tokenizer produced no tokens")
	}
	logits, err := c.run(enc)
	if err != nil {
		return bias.Prediction{}, err
	}
	return pickLabel(logits, c.cfg.Labels)
}

func (c *TextClassifier) run(enc Encoding) ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, ErrNotInitialized
	}
	shape := ort.NewShape(1, int64(enc.Len()))
	data := map[string][]int64{
		"input_ids":      enc.IDs,
		"attention_mask": enc.AttentionMask,
		"token_type_ids": enc.TypeIDs,
	}
	values := make([]ort.Value, 0, len(c.inputs))
	for _, name := range c.inputs {
		t, err := ort.NewTensor(shape, data[name])
		if err != nil {
			destroyAll(values...)
			return nil, fmt.Errorf("create %s tensor: %w", name, err)
		}
		values = append(values, t)
	}
	defer destroyAll(values...)

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(c.cfg.Labels))))
	if err != nil {
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	defer out.Destroy()

	if err := c.session.Run(values, []ort.Value{out}); err != nil {
		return nil, fmt.Errorf("run model: %w", err)
	}
	logits := make([]float32, len(c.cfg.Labels))
	copy(logits, out.GetData())
	return logits, nil
}

func pickLabel(logits []float32, labels []string) (bias.Prediction, error) {
	if len(logits) != len(labels) {
		return bias.Prediction{}, fmt.Errorf("model returned %d scores for %d labels", len(logits), len(labels))
	}
	probs := Softmax(logits)
	best := Argmax(probs)
	if best < 0 {
		return bias.Prediction{}, errors.New("model returned no scores")
	}
	return bias.Prediction{Label: labels[best], Score: probs[best]}, nil
}
