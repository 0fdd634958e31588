package infer

import (
	"fmt"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// Encoding is a tokenized text ready to be fed to a transformer.
type Encoding struct {
	IDs           []int64
	AttentionMask []int64
	TypeIDs       []int64
}

// Len returns the number of tokens.
func (e Encoding) Len() int {
	return len(e.IDs)
}

// Tokenizer turns text into model inputs.
type Tokenizer interface {
	Encode(text string) (Encoding, error)
}

// HFTokenizer loads a Hugging Face tokenizer.json.
type HFTokenizer struct {
	tk *tokenizer.Tokenizer
}

// LoadTokenizer reads a tokenizer.json file.
func LoadTokenizer(path string) (*HFTokenizer, error) {
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", path, err)
	}
	return &HFTokenizer{tk: tk}, nil
}

// Encode tokenizes text with the tokenizer's special tokens added.
func (h *HFTokenizer) Encode(text string) (Encoding, error) {
	en, err := h.tk.EncodeSingle(text, true)
	if err != nil {
		return Encoding{}, fmt.Errorf("tokenize: %w", err)
	}
	out := Encoding{
		IDs:           toInt64(en.Ids),
		AttentionMask: toInt64(en.AttentionMask),
		TypeIDs:       toInt64(en.TypeIds),
	}
	if len(out.AttentionMask) != len(out.IDs) {
		out.AttentionMask = ones(len(out.IDs))
	}
	if len(out.TypeIDs) != len(out.IDs) {
		out.TypeIDs = make([]int64, len(out.IDs))
	}
	return out, nil
}

// Truncate shortens e to maxLen tokens, keeping the final token so the
// closing special token survives.
func Truncate(e Encoding, maxLen int) Encoding {
	if maxLen < 2 || e.Len() <= maxLen {
		return e
	}
	cut := func(v []int64) []int64 {
		if len(v) <= maxLen {
			return v
		}
		out := make([]int64, maxLen)
		copy(out, v[:maxLen-1])
		out[maxLen-1] = v[len(v)-1]
		return out
	}
	return Encoding{
		IDs:           cut(e.IDs),
		AttentionMask: cut(e.AttentionMask),
		TypeIDs:       cut(e.TypeIDs),
	}
}

func toInt64(v []int) []int64 {
	out := make([]int64, len(v))
	for i, x := range v {
		out[i] = int64(x)
	}
	return out
}

func ones(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
