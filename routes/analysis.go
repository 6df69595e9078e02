/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"net/http"

	"github.com/flamego/flamego"
	"github.com/flamego/template"
	"golang.org/x/sync/errgroup"

	"github.com/humaidq/intake/api"
	"github.com/humaidq/intake/dashboard"
)

// RecentAttemptLimit is how many upload attempts the analysis page lists.
const RecentAttemptLimit = 5

func ageRates(in *api.InsightsResult) map[string]float64 {
	rates := make(map[string]float64, len(in.AgeGroups))
	for _, g := range in.AgeGroups {
		rates[g.AgeRange] = g.DiabetesRate
	}

	return rates
}

func bmiRates(in *api.InsightsResult) map[string]float64 {
	rates := make(map[string]float64, len(in.BMICategories))
	for _, c := range in.BMICategories {
		rates[c.Category] = c.DiabetesRate
	}

	return rates
}

// glucoseCorrelation reads the coefficient the backend reports under
// age_risk and bmi_risk. Those maps hold a correlation with glucose, not
// rates, so they are shown as text and never charted.
func glucoseCorrelation(risk map[string]float64) *float64 {
	v, ok := risk["correlation"]
	if !ok {
		return nil
	}

	return &v
}

// Analysis renders the insights and the recent upload attempts. The two
// sections load concurrently and fail independently.
func Analysis(c flamego.Context, t template.Template, data template.Data, backend Backend) {
	data["IsAnalysis"] = true

	ctx := c.Request().Context()

	var (
		insights    *api.InsightsResult
		insightsErr error
		attempts    []api.UploadAttempt
		attemptsErr error
		g           errgroup.Group
	)

	g.Go(func() error {
		insights, insightsErr = backend.GetInsights(ctx)
		return nil
	})
	g.Go(func() error {
		attempts, attemptsErr = backend.GetUploadAttempts(ctx)
		return nil
	})

	_ = g.Wait()

	if insightsErr != nil {
		logger.Warn("Failed to load insights", "error", insightsErr)
		data["InsightsError"] = "Error loading insights"
	} else {
		data["Insights"] = insights
		data["AgeCorrelation"] = glucoseCorrelation(insights.AgeRisk)
		data["BMICorrelation"] = glucoseCorrelation(insights.BMIRisk)

		if rates := ageRates(insights); len(rates) > 0 {
			if chart, err := rateBarChart("Diabetes Rate by Age Group", "analysis_age", rates, dashboard.AgeGroups()); err != nil {
				logger.Error("Error rendering age insight chart", "error", err)
			} else {
				data["AgeChart"] = chart
			}
		}

		if rates := bmiRates(insights); len(rates) > 0 {
			if chart, err := rateBarChart("Diabetes Rate by BMI Category", "analysis_bmi", rates, dashboard.BMICategories()); err != nil {
				logger.Error("Error rendering BMI insight chart", "error", err)
			} else {
				data["BMIChart"] = chart
			}
		}
	}

	if attemptsErr != nil {
		logger.Warn("Failed to load upload attempts", "error", attemptsErr)
		data["AttemptsError"] = "Failed to load attempts"
	} else {
		data["Attempts"] = attempts[:min(len(attempts), RecentAttemptLimit)]
	}

	t.HTML(http.StatusOK, "analysis")
}
