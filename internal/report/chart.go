package report

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartWidth  = 512
	chartHeight = 512
)

var (
	matchedColor = drawing.ColorFromHex("2E8B57")
	missingColor = drawing.ColorFromHex("CD5C5C")
)

// RenderChart draws a matched-vs-missing pie chart as PNG.
// It returns nil bytes when there is nothing to draw.
func RenderChart(matched, missing int) ([]byte, error) {
	if matched <= 0 && missing <= 0 {
		return nil, nil
	}
	var values []chart.Value
	if matched > 0 {
		values = append(values, chart.Value{
			Value: float64(matched),
			Label: fmt.Sprintf("Matched (%d)", matched),
			Style: chart.Style{FillColor: matchedColor, StrokeColor: drawing.ColorWhite, StrokeWidth: 2},
		})
	}
	if missing > 0 {
		values = append(values, chart.Value{
			Value: float64(missing),
			Label: fmt.Sprintf("Missing (%d)", missing),
			Style: chart.Style{FillColor: missingColor, StrokeColor: drawing.ColorWhite, StrokeWidth: 2},
		})
	}

	pie := chart.PieChart{
		Title:  "Technical Skill Match",
		Width:  chartWidth,
		Height: chartHeight,
		Values: values,
	}
	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}
