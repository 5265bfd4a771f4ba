package rest

import (
	"fmt"
	"math"

	"github.com/davidleathers/cnp-fraud-console/internal/service/fraud"
)

// Attribution chart geometry, in SVG user units.
const (
	chartLabelWidth = 250
	chartPlotWidth  = 440
	chartValueWidth = 70
	chartRowHeight  = 26
	chartBarHeight  = 18
	chartPadding    = 10
)

// barChart is a signed horizontal bar chart of feature attributions.
// Positive bars extend right of the zero axis, negative bars left.
type barChart struct {
	Width     int
	Height    int
	ZeroX     float64
	BaseValue float64
	Bars      []chartBar
}

type chartBar struct {
	Label    string
	Value    float64
	X        float64
	Y        float64
	Width    float64
	Height   float64
	TextY    float64
	LabelX   float64
	ValueX   float64
	Positive bool
}

// ValueText renders the attribution with its sign
func (b chartBar) ValueText() string {
	return fmt.Sprintf("%+.4f", b.Value)
}

// newBarChart lays out one bar per attribution, in the given order. Bars
// are scaled against the largest magnitude so the longest fills half the plot.
func newBarChart(exp *fraud.Explanation) *barChart {
	if exp == nil || len(exp.Attributions) == 0 {
		return nil
	}

	maxAbs := 0.0
	for _, a := range exp.Attributions {
		maxAbs = math.Max(maxAbs, math.Abs(a.Value))
	}
	if maxAbs == 0 {
		maxAbs = 1
	}

	half := float64(chartPlotWidth) / 2
	zeroX := float64(chartLabelWidth) + half
	chart := &barChart{
		Width:     chartLabelWidth + chartPlotWidth + chartValueWidth,
		Height:    len(exp.Attributions)*chartRowHeight + 2*chartPadding,
		ZeroX:     zeroX,
		BaseValue: exp.BaseValue,
		Bars:      make([]chartBar, 0, len(exp.Attributions)),
	}

	for i, a := range exp.Attributions {
		length := math.Abs(a.Value) / maxAbs * half
		y := float64(chartPadding + i*chartRowHeight)
		bar := chartBar{
			Label:    a.Feature,
			Value:    a.Value,
			Y:        y + float64(chartRowHeight-chartBarHeight)/2,
			Width:    length,
			Height:   chartBarHeight,
			TextY:    y + float64(chartRowHeight)/2 + 4,
			LabelX:   chartLabelWidth - 8,
			Positive: a.Value > 0,
		}
		if bar.Positive {
			bar.X = zeroX
			bar.ValueX = zeroX + length + 4
		} else {
			bar.X = zeroX - length
			bar.ValueX = zeroX + 4
		}
		chart.Bars = append(chart.Bars, bar)
	}
	return chart
}
