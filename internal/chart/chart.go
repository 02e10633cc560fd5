// Package chart renders the yearly trend dataset as a bar chart image.
package chart

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/stromning/scholartrend/internal/dataset"
)

// Config controls the rendered image.
type Config struct {
	Title  string
	Footer string
	Width  int
	Height int
}

// Renderer draws the dataset as a PNG bar chart with years on the x-axis
// and approximate counts on the y-axis.
type Renderer struct {
	cfg Config
}

// NewRenderer returns a Renderer, applying sane defaults for zero values.
func NewRenderer(cfg Config) *Renderer {
	if cfg.Width <= 0 {
		cfg.Width = 1200
	}
	if cfg.Height <= 0 {
		cfg.Height = 600
	}
	return &Renderer{cfg: cfg}
}

// Render writes the chart PNG to w. An empty dataset is an error; there is
// nothing meaningful to draw.
func (r *Renderer) Render(d dataset.Dataset, updatedAt time.Time, w io.Writer) error {
	if len(d) == 0 {
		return fmt.Errorf("dataset is empty")
	}

	bars := make([]chart.Value, 0, len(d))
	maxCount := 0
	for _, row := range d {
		bars = append(bars, chart.Value{
			Value: float64(row.Count),
			Label: strconv.Itoa(row.Year),
		})
		if row.Count > maxCount {
			maxCount = row.Count
		}
	}

	// go-chart rejects a degenerate auto-computed range, which happens
	// whenever every bar has the same height (a one-row dataset included).
	// Pinning the range to [0, max] keeps those datasets renderable.
	yMax := float64(maxCount)
	if yMax <= 0 {
		yMax = 1
	}

	barWidth := (r.cfg.Width - 100) / (len(bars) + 1)
	if barWidth < 4 {
		barWidth = 4
	}
	if barWidth > 60 {
		barWidth = 60
	}

	graph := chart.BarChart{
		Title:    r.cfg.Title,
		Width:    r.cfg.Width,
		Height:   r.cfg.Height,
		BarWidth: barWidth,
		Bars:     bars,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.Style{
			TextRotationDegrees: 45,
		},
		YAxis: chart.YAxis{
			Name:  "Approximate results",
			Range: &chart.ContinuousRange{Min: 0, Max: yMax},
		},
	}

	footer := r.cfg.Footer
	if footer != "" {
		graph.Elements = []chart.Renderable{annotation(footer, updatedAt)}
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

// RenderFile renders the chart and atomically replaces the file at path.
func (r *Renderer) RenderFile(d dataset.Dataset, updatedAt time.Time, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create chart dir %s: %w", dir, err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".chart-*")
	if err != nil {
		return fmt.Errorf("create temp chart: %w", err)
	}
	tmpName := tmp.Name()

	if err := r.Render(d, updatedAt, tmp); err != nil {
		tmp.Close()        //nolint:errcheck // already failing
		os.Remove(tmpName) //nolint:errcheck // best effort
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck // best effort
		return fmt.Errorf("close temp chart: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName) //nolint:errcheck // best effort
		return fmt.Errorf("replace chart %s: %w", path, err)
	}
	return nil
}

// annotation draws the footer text plus the update timestamp in the
// top-left corner of the canvas.
func annotation(footer string, updatedAt time.Time) chart.Renderable {
	return func(r chart.Renderer, _ chart.Box, defaults chart.Style) {
		style := chart.Style{
			FontSize:  9.0,
			FontColor: drawing.ColorBlack,
			Font:      defaults.Font,
		}
		style.WriteTextOptionsToRenderer(r)
		line := fmt.Sprintf("Last updated: %s | %s", updatedAt.UTC().Format("2006-01-02 15:04 UTC"), footer)
		r.Text(line, 25, 22)
	}
}
