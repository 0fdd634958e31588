package report

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"yashubustudio/biaslab/bias"
)

// Figure titles.
const (
	TitleOverall  = "Overall Political Bias Distribution"
	TitleByPrompt = "Bias Distribution by Prompt"
	TitleHeatmap  = "Annotated Heatmap of Bias vs. Prompt"
	TitleByModel  = "Comparison of Bias Across Models"
)

const noData = "No data"

// Figure is one chart with its page size and drawing routine.
type Figure struct {
	Name   string
	Width  vg.Length
	Height vg.Length
	draw   func(dc draw.Canvas) error
}

// Draw renders the figure onto dc.
func (f Figure) Draw(dc draw.Canvas) error {
	return f.draw(dc)
}

// Figures builds the five report figures from s, in report order.
func Figures(s bias.Summary) ([]Figure, error) {
	builders := []func(bias.Summary) (Figure, error){
		overallFigure,
		byPromptFigure,
		heatmapFigure,
		perModelFigure,
		byModelFigure,
	}
	figs := make([]Figure, 0, len(builders))
	for _, build := range builders {
		f, err := build(s)
		if err != nil {
			return nil, err
		}
		figs = append(figs, f)
	}
	return figs, nil
}

func singlePlot(name string, w, h vg.Length, p *plot.Plot) Figure {
	return Figure{Name: name, Width: w, Height: h, draw: func(dc draw.Canvas) error {
		p.Draw(dc)
		return nil
	}}
}

func countValues(c bias.Counts) plotter.Values {
	vs := make(plotter.Values, len(c))
	for i, v := range c {
		vs[i] = float64(v)
	}
	return vs
}

// placeholder returns an empty plot carrying title and a centred notice.
func placeholder(title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	p.HideAxes()
	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: 0.5, Y: 0.5}},
		Labels: []string{noData},
	})
	if err != nil {
		return nil, fmt.Errorf("build placeholder: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
		labels.TextStyle[i].Font.Size = vg.Points(14)
	}
	p.Add(labels)
	return p, nil
}

func countBars(title string, c bias.Counts, width vg.Length) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	bars, err := plotter.NewBarChart(countValues(c), width)
	if err != nil {
		return nil, fmt.Errorf("build bars for %q: %w", title, err)
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(bias.LabelNames()...)
	p.Y.Min = 0
	return p, nil
}

func overallFigure(s bias.Summary) (Figure, error) {
	p, err := countBars(TitleOverall, s.Overall, vg.Points(60))
	if err != nil {
		return Figure{}, err
	}
	p.X.Label.Text = "Bias Label"
	p.Y.Label.Text = "Number of Responses"
	return singlePlot("overall", 6*vg.Inch, 4*vg.Inch, p), nil
}

// promptHeight is the figure height for n prompts: 0.3in each, at least 6in.
func promptHeight(n int) vg.Length {
	return vg.Length(math.Max(6, 0.3*float64(n))) * vg.Inch
}

func byPromptFigure(s bias.Summary) (Figure, error) {
	w, h := 10*vg.Inch, promptHeight(len(s.Prompts))
	if len(s.Prompts) == 0 {
		p, err := placeholder(TitleByPrompt)
		if err != nil {
			return Figure{}, err
		}
		return singlePlot("by_prompt", w, h, p), nil
	}
	p := plot.New()
	p.Title.Text = TitleByPrompt
	p.X.Label.Text = "Count of Responses"
	p.Y.Label.Text = "Prompt"
	p.Legend.Top = true
	p.Legend.Add("Bias")

	barWidth := vg.Length(math.Min(20, 0.6*float64(h)/float64(len(s.Prompts))))
	matrix := s.PromptMatrix()
	var below *plotter.BarChart
	for _, l := range bias.Labels() {
		vs := make(plotter.Values, len(matrix))
		for i, row := range matrix {
			vs[i] = float64(row[l])
		}
		bars, err := plotter.NewBarChart(vs, barWidth)
		if err != nil {
			return Figure{}, fmt.Errorf("build %s bars: %w", l, err)
		}
		bars.Horizontal = true
		bars.Color = plotutil.Color(int(l))
		bars.LineStyle.Width = 0
		if below != nil {
			bars.StackOn(below)
		}
		below = bars
		p.Add(bars)
		p.Legend.Add(l.String(), bars)
	}
	p.NominalY(s.Prompts...)
	p.X.Min = 0
	return singlePlot("by_prompt", w, h, p), nil
}

// countGrid adapts the prompt x label matrix to plotter.GridXYZ. Row zero is
// drawn at the top, matching the prompt order of the other charts.
type countGrid struct {
	rows [][bias.NumLabels]int
}

func (g countGrid) Dims() (c, r int) { return bias.NumLabels, len(g.rows) }
func (g countGrid) X(c int) float64  { return float64(c) }
func (g countGrid) Y(r int) float64  { return float64(r) }
func (g countGrid) Z(c, r int) float64 {
	return float64(g.rows[len(g.rows)-1-r][c])
}

const colorBarSteps = 64

// scaleGrid is a two column strip running from min to max, drawn as a vector
// heat map for the colour bar. plotter.ColorBar draws a 16-bit image, which
// vgpdf cannot embed.
type scaleGrid struct {
	min, max float64
	steps    int
}

func (g scaleGrid) Dims() (c, r int) { return 2, g.steps }
func (g scaleGrid) X(c int) float64  { return float64(c) }
func (g scaleGrid) Y(r int) float64 {
	return g.min + (float64(r)+0.5)*(g.max-g.min)/float64(g.steps)
}
func (g scaleGrid) Z(_, r int) float64 { return g.Y(r) }

func heatmapFigure(s bias.Summary) (Figure, error) {
	w, h := 10*vg.Inch, promptHeight(len(s.Prompts))
	if len(s.Prompts) == 0 {
		p, err := placeholder(TitleHeatmap)
		if err != nil {
			return Figure{}, err
		}
		return singlePlot("heatmap", w, h, p), nil
	}

	grid := countGrid{rows: s.PromptMatrix()}
	minCount, maxCount := math.Inf(1), math.Inf(-1)
	for _, row := range grid.rows {
		for _, v := range row {
			minCount = math.Min(minCount, float64(v))
			maxCount = math.Max(maxCount, float64(v))
		}
	}
	if maxCount <= minCount {
		maxCount = minCount + 1
	}
	cmap := moreland.ExtendedBlackBody()
	cmap.SetMin(minCount)
	cmap.SetMax(maxCount)

	pal := cmap.Palette(255)
	heat := plotter.NewHeatMap(grid, pal)
	heat.Min, heat.Max = minCount, maxCount

	p := plot.New()
	p.Title.Text = TitleHeatmap
	p.Add(heat)

	nrows := len(grid.rows)
	xys := make(plotter.XYs, 0, nrows*bias.NumLabels)
	texts := make([]string, 0, nrows*bias.NumLabels)
	for r := 0; r < nrows; r++ {
		for c := 0; c < bias.NumLabels; c++ {
			xys = append(xys, plotter.XY{X: grid.X(c), Y: grid.Y(r)})
			texts = append(texts, strconv.Itoa(int(grid.Z(c, r))))
		}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return Figure{}, fmt.Errorf("build heatmap annotations: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
		labels.TextStyle[i].Font.Size = vg.Points(8)
		labels.TextStyle[i].Color = plotutil.Color(2)
	}
	p.Add(labels)

	reversed := make([]string, nrows)
	for i, prompt := range s.Prompts {
		reversed[nrows-1-i] = prompt
	}
	p.NominalX(bias.LabelNames()...)
	p.NominalY(reversed...)
	p.Y.Tick.Label.Font.Size = vg.Points(8)

	scale := plotter.NewHeatMap(scaleGrid{min: minCount, max: maxCount, steps: colorBarSteps}, pal)
	scale.Min, scale.Max = minCount, maxCount
	bar := plot.New()
	bar.Add(scale)
	bar.HideX()
	bar.Y.Label.Text = "Count"
	bar.Y.Min, bar.Y.Max = minCount, maxCount
	bar.Title.Text = " "

	barWidth := vg.Inch
	return Figure{Name: "heatmap", Width: w, Height: h, draw: func(dc draw.Canvas) error {
		p.Draw(draw.Crop(dc, 0, -barWidth, 0, 0))
		bar.Draw(draw.Crop(dc, dc.Max.X-dc.Min.X-barWidth, 0, 0, 0))
		return nil
	}}, nil
}

func perModelFigure(s bias.Summary) (Figure, error) {
	const cols = 2
	n := len(s.Models)
	if n == 0 {
		p, err := placeholder("Bias by Model")
		if err != nil {
			return Figure{}, err
		}
		return singlePlot("per_model", 12*vg.Inch, 4*vg.Inch, p), nil
	}
	rows := (n + cols - 1) / cols
	plots := make([]*plot.Plot, n)
	for i, model := range s.Models {
		p, err := countBars("Bias for "+model, s.ByModel[model], vg.Points(40))
		if err != nil {
			return Figure{}, err
		}
		p.Y.Label.Text = "Count"
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		plots[i] = p
	}
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	return Figure{Name: "per_model", Width: 12 * vg.Inch, Height: vg.Length(4*rows) * vg.Inch, draw: func(dc draw.Canvas) error {
		for i, p := range plots {
			p.Draw(tiles.At(dc, i%cols, i/cols))
		}
		return nil
	}}, nil
}

func byModelFigure(s bias.Summary) (Figure, error) {
	w, h := 8*vg.Inch, 5*vg.Inch
	models := s.ModelsSorted()
	if len(models) == 0 {
		p, err := placeholder(TitleByModel)
		if err != nil {
			return Figure{}, err
		}
		return singlePlot("by_model", w, h, p), nil
	}
	p := plot.New()
	p.Title.Text = TitleByModel
	p.X.Label.Text = "Model"
	p.Y.Label.Text = "Count"
	p.Legend.Top = true
	p.Legend.Add("Bias")

	// Each group spans 80% of the space a model gets on the x axis.
	barWidth := vg.Length(math.Min(20, 0.8*0.75*float64(w)/float64(len(models)*bias.NumLabels)))
	for _, l := range bias.Labels() {
		vs := make(plotter.Values, len(models))
		for i, m := range models {
			vs[i] = float64(s.ByModel[m][l])
		}
		bars, err := plotter.NewBarChart(vs, barWidth)
		if err != nil {
			return Figure{}, fmt.Errorf("build %s bars: %w", l, err)
		}
		bars.Color = plotutil.Color(int(l))
		bars.LineStyle.Width = 0
		bars.Offset = vg.Length(int(l)-1) * barWidth
		p.Add(bars)
		p.Legend.Add(l.String(), bars)
	}
	p.NominalX(models...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.Y.Min = 0
	return singlePlot("by_model", w, h, p), nil
}
