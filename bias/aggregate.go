package bias

import (
	"fmt"
	"sort"
)

// Counts holds one occurrence count per label, indexed by Label.
type Counts [NumLabels]int

// Total sums the counts.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Get returns the count for l.
func (c Counts) Get(l Label) int {
	return c[l]
}

// Record is a normalized row of the classifier output.
type Record struct {
	Prompt string
	Model  string
	Bias   Label
}

// Summary is the single aggregation step every chart is drawn from. It is
// derived from the records on each render and never persisted.
type Summary struct {
	Total   int
	Overall Counts

	// Prompts is sorted; ByPrompt is the prompt x bias cross tabulation.
	Prompts  []string
	ByPrompt map[string]Counts

	// Models keeps first-appearance order; ByModel is the model x bias cross
	// tabulation.
	Models  []string
	ByModel map[string]Counts
}

// Aggregate counts labels overall, per prompt and per model.
func Aggregate(records []Record) Summary {
	s := Summary{
		ByPrompt: make(map[string]Counts),
		ByModel:  make(map[string]Counts),
	}
	for _, r := range records {
		s.Total++
		s.Overall[r.Bias]++

		pc, ok := s.ByPrompt[r.Prompt]
		if !ok {
			s.Prompts = append(s.Prompts, r.Prompt)
		}
		pc[r.Bias]++
		s.ByPrompt[r.Prompt] = pc

		mc, ok := s.ByModel[r.Model]
		if !ok {
			s.Models = append(s.Models, r.Model)
		}
		mc[r.Bias]++
		s.ByModel[r.Model] = mc
	}
	sort.Strings(s.Prompts)
	return s
}

// ModelsSorted returns the model names in lexical order, the row order of the
// model cross tabulation.
func (s Summary) ModelsSorted() []string {
	out := append([]string(nil), s.Models...)
	sort.Strings(out)
	return out
}

// PromptMatrix returns the prompt x label counts in Prompts order.
func (s Summary) PromptMatrix() [][NumLabels]int {
	out := make([][NumLabels]int, len(s.Prompts))
	for i, p := range s.Prompts {
		out[i] = s.ByPrompt[p]
	}
	return out
}

// MaxPromptCount returns the largest single prompt x label cell.
func (s Summary) MaxPromptCount() int {
	max := 0
	for _, c := range s.ByPrompt {
		for _, v := range c {
			if v > max {
				max = v
			}
		}
	}
	return max
}

// RecordsFromTable normalizes the bias column and extracts the prompt, model
// and bias fields. The table is modified in place.
func RecordsFromTable(t *Table, promptCol, modelCol, biasCol string) ([]Record, error) {
	cols, err := t.RequireColumns(promptCol, modelCol, biasCol)
	if err != nil {
		return nil, err
	}
	if err := NormalizeColumn(t, biasCol); err != nil {
		return nil, err
	}
	records := make([]Record, t.Len())
	for i := range t.Rows {
		records[i] = Record{
			Prompt: t.Get(i, cols[0]),
			Model:  t.Get(i, cols[1]),
			Bias:   NormalizeLabel(t.Get(i, cols[2])),
		}
	}
	return records, nil
}

// LoadRecords reads a classifier output file and returns its normalized records.
func LoadRecords(path string) ([]Record, error) {
	t, err := ReadTableFile(path)
	if err != nil {
		return nil, err
	}
	records, err := RecordsFromTable(t, ColumnPrompt, ColumnModel, ColumnBias)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}
