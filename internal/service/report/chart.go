package report

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"AlgoReport/internal/domain/models"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartWidth  = 1000
	chartHeight = 400
)

var errTooFewPoints = errors.New("need at least two closes to draw a chart")

var (
	closeColor = drawing.ColorFromHex("1f77b4")
	fastColor  = drawing.ColorFromHex("ff7f0e")
	slowColor  = drawing.ColorFromHex("2ca02c")
	pivotColor = drawing.ColorFromHex("888888")
)

func (r *Renderer) writeChart(path string, o models.SymbolOutcome) error {
	graph, err := buildChart(o)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	if err := graph.Render(chart.PNG, f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("render chart: %w", err)
	}
	return f.Close()
}

// buildChart plots close, EMA20 and EMA50 with dashed pivot levels of the signal bar.
func buildChart(o models.SymbolOutcome) (*chart.Chart, error) {
	hist := o.History
	closeX, closeY := line(hist, func(s models.IndicatorSnapshot) float64 { return s.Close })
	if len(closeX) < 2 {
		return nil, errTooFewPoints
	}

	series := []chart.Series{
		chart.TimeSeries{
			Name:    "Close",
			Style:   chart.Style{StrokeColor: closeColor, StrokeWidth: 1.5},
			XValues: closeX,
			YValues: closeY,
		},
	}
	for _, ema := range []struct {
		name  string
		color drawing.Color
		pick  func(models.IndicatorSnapshot) float64
	}{
		{"EMA20", fastColor, func(s models.IndicatorSnapshot) float64 { return s.EMA20 }},
		{"EMA50", slowColor, func(s models.IndicatorSnapshot) float64 { return s.EMA50 }},
	} {
		x, y := line(hist, ema.pick)
		if len(x) < 2 {
			continue
		}
		series = append(series, chart.TimeSeries{
			Name:    ema.name,
			Style:   chart.Style{StrokeColor: ema.color, StrokeWidth: 1},
			XValues: x,
			YValues: y,
		})
	}

	if o.Signal != nil {
		snap := o.Signal.Snapshot
		first, last := closeX[0], closeX[len(closeX)-1]
		for _, lvl := range []struct {
			name string
			v    float64
		}{{"S2", snap.S2}, {"S1", snap.S1}, {"P", snap.P}, {"R1", snap.R1}, {"R2", snap.R2}} {
			if !finite(lvl.v) {
				continue
			}
			series = append(series, chart.TimeSeries{
				Name: lvl.name,
				Style: chart.Style{
					StrokeColor:     pivotColor,
					StrokeWidth:     1,
					StrokeDashArray: []float64{5, 5},
				},
				XValues: []time.Time{first, last},
				YValues: []float64{lvl.v, lvl.v},
			})
		}
	}

	graph := &chart.Chart{
		Title:  o.Symbol.String() + " close / EMA & pivots",
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("01-02 15:04"),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(graph)}
	return graph, nil
}

// line collects the finite points of one field.
func line(hist []models.IndicatorSnapshot, pick func(models.IndicatorSnapshot) float64) ([]time.Time, []float64) {
	xs := make([]time.Time, 0, len(hist))
	ys := make([]float64, 0, len(hist))
	for _, s := range hist {
		v := pick(s)
		if !finite(v) {
			continue
		}
		xs = append(xs, s.Timestamp)
		ys = append(ys, v)
	}
	return xs, ys
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
