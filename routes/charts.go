/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"bytes"
	htmltemplate "html/template"
	"io"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/humaidq/intake/api"
	"github.com/humaidq/intake/dashboard"
)

type chartRenderer interface {
	Render(w io.Writer) error
}

func renderChart(c chartRenderer) (htmltemplate.HTML, error) {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return "", err
	}

	return htmltemplate.HTML(buf.String()), nil //nolint:gosec // go-echarts output with escaped series data.
}

func chartInit(chartID string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		Width:   "100%",
		Height:  "320px",
		ChartID: chartID,
	})
}

// bucketBarChart draws one bar per bucket, in bucket order.
func bucketBarChart(title, chartID string, buckets []dashboard.Bucket) (htmltemplate.HTML, error) {
	xAxis := make([]string, 0, len(buckets))
	yData := make([]opts.BarData, 0, len(buckets))

	for _, b := range buckets {
		xAxis = append(xAxis, b.Label)
		yData = append(yData, opts.BarData{Value: b.Count})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		chartInit(chartID),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Records"}),
	)
	bar.SetXAxis(xAxis).AddSeries("Records", yData)

	return renderChart(bar)
}

// bucketPieChart draws the share of each non-empty bucket.
func bucketPieChart(title, chartID string, buckets []dashboard.Bucket) (htmltemplate.HTML, error) {
	items := make([]opts.PieData, 0, len(buckets))

	for _, b := range buckets {
		if b.Count == 0 {
			continue
		}

		items = append(items, opts.PieData{Name: b.Label, Value: b.Count})
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		chartInit(chartID),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
	)
	pie.AddSeries("Records", items).
		SetSeriesOptions(charts.WithPieChartOpts(opts.PieChart{Radius: []string{"35%", "65%"}}))

	return renderChart(pie)
}

// glucoseLineChart plots glucose per record, labelled by record ID.
func glucoseLineChart(records []api.HealthRecord) (htmltemplate.HTML, error) {
	xAxis := make([]string, 0, len(records))
	yData := make([]opts.LineData, 0, len(records))

	for _, r := range records {
		xAxis = append(xAxis, "#"+strconv.FormatInt(r.ID, 10))
		yData = append(yData, opts.LineData{Value: r.Glucose})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		chartInit("dashboard_glucose"),
		charts.WithTitleOpts(opts.Title{Title: "Glucose Levels"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{HideOverlap: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "mg/dL", Scale: opts.Bool(true)}),
	)

	line.SetXAxis(xAxis).
		AddSeries("Glucose", yData).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{
				Smooth:     opts.Bool(true),
				ShowSymbol: opts.Bool(false),
			}),
			charts.WithMarkLineNameTypeItemOpts(
				opts.MarkLineNameTypeItem{Name: "Average", Type: "average"},
			),
		)

	return renderChart(line)
}

// rateBarChart draws diabetes rates in percent. Labels follow order, and any
// rate missing from order is appended in sorted order.
func rateBarChart(title, chartID string, rates map[string]float64, order []string) (htmltemplate.HTML, error) {
	labels := make([]string, 0, len(rates))
	seen := make(map[string]bool, len(rates))

	for _, label := range order {
		if _, ok := rates[label]; ok {
			labels = append(labels, label)
			seen[label] = true
		}
	}

	var rest []string

	for label := range rates {
		if !seen[label] {
			rest = append(rest, label)
		}
	}

	sort.Strings(rest)
	labels = append(labels, rest...)

	yData := make([]opts.BarData, 0, len(labels))
	for _, label := range labels {
		yData = append(yData, opts.BarData{Value: rates[label]})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		chartInit(chartID),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Diabetes rate (%)"}),
	)
	bar.SetXAxis(labels).AddSeries("Diabetes rate", yData)

	return renderChart(bar)
}
