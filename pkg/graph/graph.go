// Package graph draws the PNG charts summarising a scoring run and the per-season results.
package graph

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/richard-senior/formscore/internal/logger"
	"github.com/richard-senior/formscore/pkg/analysis"
	"github.com/richard-senior/formscore/pkg/scoring"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	logColour      = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	brierColour    = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	homeWinColour  = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	drawColour     = color.RGBA{R: 127, G: 127, B: 127, A: 255}
	homeLossColour = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// Size is the size of a chart in centimetres
type Size struct {
	Width  float64
	Height float64
}

func (s Size) lengths() (vg.Length, vg.Length) {
	return vg.Length(s.Width) * vg.Centimeter, vg.Length(s.Height) * vg.Centimeter
}

// Summary draws a horizontal bar per method showing its normalised log and Brier scores, best
// log score at the top. The scores are not reordered in place.
func Summary(scores []scoring.Score, path string, size Size) error {
	if len(scores) == 0 {
		return errors.New("no scores to chart")
	}
	sorted := append([]scoring.Score(nil), scores...)
	scoring.SortByLogNorm(sorted)

	// nominal axes count upwards from the bottom
	n := len(sorted)
	names := make([]string, n)
	logs := make(plotter.Values, n)
	briers := make(plotter.Values, n)
	for i, s := range sorted {
		j := n - 1 - i
		names[j] = s.Type
		logs[j] = s.LogNorm
		briers[j] = s.BrierNorm
	}

	p := plot.New()
	p.Title.Text = "Normalised scores (1 is best)"
	p.X.Min = 0
	p.X.Max = 1

	barWidth := vg.Points(6)
	logBars, err := plotter.NewBarChart(logs, barWidth)
	if err != nil {
		return fmt.Errorf("failed to build log bars: %w", err)
	}
	logBars.Horizontal = true
	logBars.Color = logColour
	logBars.LineStyle.Width = 0
	logBars.Offset = -barWidth / 2

	brierBars, err := plotter.NewBarChart(briers, barWidth)
	if err != nil {
		return fmt.Errorf("failed to build brier bars: %w", err)
	}
	brierBars.Horizontal = true
	brierBars.Color = brierColour
	brierBars.LineStyle.Width = 0
	brierBars.Offset = barWidth / 2

	p.Add(logBars, brierBars)
	p.Legend.Add("log_norm", logBars)
	p.Legend.Add("brier_norm", brierBars)
	p.Legend.Top = true
	p.NominalY(names...)

	return save(p, path, size)
}

// HomeAdvantage draws the share of home wins, draws and home losses per season
func HomeAdvantage(avgs []analysis.SeasonAverage, path string, size Size) error {
	if len(avgs) == 0 {
		return errors.New("no seasons to chart")
	}
	series := []struct {
		name   string
		colour color.Color
		value  func(analysis.SeasonAverage) float64
	}{
		{"home_win", homeWinColour, func(a analysis.SeasonAverage) float64 { return a.HomeWin }},
		{"draw", drawColour, func(a analysis.SeasonAverage) float64 { return a.Draw }},
		{"home_loss", homeLossColour, func(a analysis.SeasonAverage) float64 { return a.HomeLoss }},
	}

	p := plot.New()
	p.Title.Text = "Results by season"
	p.X.Label.Text = "Season"
	p.Y.Label.Text = "Share of matches"
	p.Y.Min = 0
	p.Y.Max = 1

	for _, s := range series {
		xys := make(plotter.XYs, len(avgs))
		for i, a := range avgs {
			xys[i].X = float64(a.Season)
			xys[i].Y = s.value(a)
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("failed to build %s line: %w", s.name, err)
		}
		line.LineStyle.Color = s.colour
		line.LineStyle.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	return save(p, path, size)
}

func save(p *plot.Plot, path string, size Size) error {
	w, h := size.lengths()
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	logger.Info("Saved chart", path)
	return nil
}
