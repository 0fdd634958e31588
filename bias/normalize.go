package bias

// NormalizeColumn rewrites column so every cell is exactly one of the label
// names. Unknown, empty and missing cells become DefaultLabel. Applying it
// twice gives the same table as applying it once.
func NormalizeColumn(t *Table, column string) error {
	idx, err := t.Column(column)
	if err != nil {
		return err
	}
	for i := range t.Rows {
		t.Set(i, idx, NormalizeLabel(t.Get(i, idx)).String())
	}
	return nil
}
