package report

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/liao/internal/domain/model"
)

const (
	chartWidth      = 800
	chartHeight     = 400
	placeholderW    = 400
	placeholderH    = 200
	placeholderText = "No teams yet"
)

var (
	positiveBar = drawing.ColorFromHex("2e7d32")
	negativeBar = drawing.ColorFromHex("c62828")
	background  = drawing.ColorWhite
	textColor   = drawing.ColorFromHex("212121")
)

// LeaderboardChart renders team totals as a PNG bar chart. Without teams a
// small placeholder image is returned.
func LeaderboardChart(entries []model.LeaderboardEntry) ([]byte, error) {
	if len(entries) == 0 {
		return renderPlaceholder()
	}

	bars := make([]chart.Value, 0, len(entries))
	lo, hi := 0.0, 0.0
	for _, e := range entries {
		v := float64(e.TotalScore)
		lo, hi = min(lo, v), max(hi, v)
		fill := positiveBar
		if e.TotalScore < 0 {
			fill = negativeBar
		}
		bars = append(bars, chart.Value{
			Label: e.Team.Name,
			Value: v,
			Style: chart.Style{FillColor: fill, StrokeColor: fill},
		})
	}
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = 1000
	}

	graph := chart.BarChart{
		Title:        "Leaderboard",
		Width:        chartWidth,
		Height:       chartHeight,
		BarWidth:     max(4, chartWidth*7/10/len(bars)),
		BarSpacing:   max(2, chartWidth*2/10/len(bars)),
		UseBaseValue: true,
		BaseValue:    0,
		Background:   chart.Style{FillColor: background},
		Canvas:       chart.Style{FillColor: background},
		XAxis:        chart.Style{FontColor: textColor},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: textColor},
			Range: &chart.ContinuousRange{Min: lo - pad, Max: hi + pad},
		},
		Bars: bars,
	}

	buf := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("report.LeaderboardChart: %w", err)
	}
	return buf.Bytes(), nil
}

func renderPlaceholder() ([]byte, error) {
	r, err := chart.PNG(placeholderW, placeholderH)
	if err != nil {
		return nil, fmt.Errorf("report.renderPlaceholder: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("report.renderPlaceholder: %w", err)
	}

	chart.Draw.Box(r, chart.NewBox(0, 0, placeholderW, placeholderH), chart.Style{
		FillColor:   background,
		StrokeColor: background,
		StrokeWidth: 1,
	})

	r.SetFont(font)
	r.SetFontColor(textColor)
	r.SetFontSize(12)
	tb := r.MeasureText(placeholderText)
	r.Text(placeholderText, (placeholderW-tb.Width())/2, (placeholderH+tb.Height())/2)

	buf := bytes.NewBuffer(nil)
	if err := r.Save(buf); err != nil {
		return nil, fmt.Errorf("report.renderPlaceholder: %w", err)
	}
	return buf.Bytes(), nil
}
