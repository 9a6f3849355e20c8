// Package charts renders trend reports as interactive HTML charts.
package charts

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/ptcg-meta/internal/trend"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string // Chart title
	Subtitle   string // Chart subtitle
	Width      string // Chart width (e.g., "900px")
	Height     string // Chart height (e.g., "500px")
	Theme      string // Chart theme
	ShowLegend bool   // Show legend
	Smooth     bool   // Smooth lines
	MaxSeries  int    // Maximum series plotted (0 = all)
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Smooth:     true,
		MaxSeries:  12,
	}
}

// RenderTrendChart renders a trend report as a multi-series line chart,
// one line per archetype (or card) series, dates on the X axis and share
// on the Y axis.
func RenderTrendChart(report *trend.Report, config ChartConfig, outputPath string) error {
	if report == nil || len(report.Series) == 0 {
		return fmt.Errorf("no trend series to render")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
	)

	// All series share the dense timeline, so the first one provides
	// the X axis.
	xLabels := make([]string, len(report.Series[0].Timeline))
	for i, bucket := range report.Series[0].Timeline {
		xLabels[i] = bucket.Date
	}
	line.SetXAxis(xLabels)

	plotted := report.Series
	if config.MaxSeries > 0 && len(plotted) > config.MaxSeries {
		plotted = plotted[:config.MaxSeries]
	}
	for _, s := range plotted {
		yData := make([]opts.LineData, len(s.Timeline))
		for i, bucket := range s.Timeline {
			yData[i] = opts.LineData{Value: bucket.Share}
		}
		line.AddSeries(s.DisplayName, yData).
			SetSeriesOptions(
				charts.WithLineChartOpts(opts.LineChart{
					Smooth: opts.Bool(config.Smooth),
				}),
				charts.WithLabelOpts(opts.Label{
					Show: opts.Bool(false),
				}),
			)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()

	if err := line.Render(f); err != nil {
		return fmt.Errorf("render trend chart: %w", err)
	}
	return nil
}

// RenderMovementChart renders a rising/falling ranking as a bar chart
// of playrate deltas.
func RenderMovementChart(ranking *trend.Ranking, config ChartConfig, outputPath string) error {
	if ranking == nil || (len(ranking.Rising) == 0 && len(ranking.Falling) == 0) {
		return fmt.Errorf("no card movements to render")
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
	)

	movements := append(append([]trend.Movement{}, ranking.Rising...), ranking.Falling...)
	xLabels := make([]string, len(movements))
	yData := make([]opts.BarData, len(movements))
	for i, m := range movements {
		xLabels[i] = m.Name
		yData[i] = opts.BarData{Value: m.Delta}
	}

	bar.SetXAxis(xLabels).
		AddSeries("Playrate delta", yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		return fmt.Errorf("render movement chart: %w", err)
	}
	return nil
}
