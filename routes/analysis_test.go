// SPDX-FileCopyrightText: 2026 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/humaidq/intake/api"
	"github.com/humaidq/intake/dashboard"
)

func uploadAttempts(n int) []api.UploadAttempt {
	attempts := make([]api.UploadAttempt, 0, n)
	for i := range n {
		attempts = append(attempts, api.UploadAttempt{
			ID:           int64(i + 1),
			Filename:     fmt.Sprintf("batch-%02d.csv", i+1),
			RecordsCount: 10,
			Status:       api.UploadSuccess,
			CreatedAt:    api.Timestamp{Time: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		})
	}

	return attempts
}

func TestAnalysisRendersInsightsAndRecentAttempts(t *testing.T) {
	t.Parallel()

	failure := "Missing glucose column"
	attempts := uploadAttempts(7)
	attempts[0].Status = api.UploadFailed
	attempts[0].ErrorMessage = &failure

	app := newTestApp(t, &fakeBackend{
		insights: &api.InsightsResult{
			AgeGroups:     []api.AgeGroupInsight{{AgeRange: "21-40", Count: 12, DiabetesRate: 35}},
			BMICategories: []api.BMICategoryInsight{{Category: "Obese", Count: 4, DiabetesRate: 50}},
		},
		attempts: attempts,
	})
	rec := performGET(t, app, "/analysis")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	assertBodyContains(t, rec,
		"analysis_age", "analysis_bmi",
		"21-40 years", "Diabetes Rate: 35.0%",
		"Diabetes Rate: 50.0%",
		"batch-01.csv", "batch-05.csv",
		"badge-error", "Missing glucose column",
	)

	if strings.Contains(rec.Body.String(), "batch-06.csv") {
		t.Fatalf("expected only the %d most recent attempts", RecentAttemptLimit)
	}
}

func TestAnalysisSectionsFailIndependently(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeBackend{
		insightsErr: errTestBoom,
		attempts:    uploadAttempts(1),
	})
	rec := performGET(t, app, "/analysis")

	assertBodyContains(t, rec, "Error loading insights", "batch-01.csv")

	app = newTestApp(t, &fakeBackend{
		insights:    &api.InsightsResult{},
		attemptsErr: errTestBoom,
	})
	rec = performGET(t, app, "/analysis")

	assertBodyContains(t, rec, "Failed to load attempts", "No age group data available.")
}

func TestAnalysisWithoutAttempts(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeBackend{insights: &api.InsightsResult{}})
	rec := performGET(t, app, "/analysis")

	assertBodyContains(t, rec, "No upload attempts found")
}

func TestAnalysisShowsCorrelationsWithoutCharting(t *testing.T) {
	t.Parallel()

	in := &api.InsightsResult{
		AgeRisk: map[string]float64{"correlation": 0.42},
		BMIRisk: map[string]float64{"correlation": -0.1},
	}

	if got := ageRates(in); len(got) != 0 {
		t.Fatalf("expected no age rates without groups, got %v", got)
	}

	if got := bmiRates(in); len(got) != 0 {
		t.Fatalf("expected no bmi rates without categories, got %v", got)
	}

	app := newTestApp(t, &fakeBackend{insights: in})
	rec := performGET(t, app, "/analysis")

	assertBodyContains(t, rec,
		"Age and glucose correlation: 0.42",
		"BMI and glucose correlation: -0.10",
	)

	body := rec.Body.String()
	if strings.Contains(body, "analysis_age") || strings.Contains(body, "analysis_bmi") {
		t.Fatal("expected correlations not to be drawn as rate charts")
	}

	if got := glucoseCorrelation(nil); got != nil {
		t.Fatalf("expected no correlation for a missing map, got %v", *got)
	}
}

func TestRateBarChartOrdersLabels(t *testing.T) {
	t.Parallel()

	html, err := rateBarChart("Rates", "rates_test", map[string]float64{
		"zeta":  1,
		"61-80": 40,
		"21-40": 10,
		"alpha": 2,
	}, dashboard.AgeGroups())
	if err != nil {
		t.Fatalf("failed to render chart: %v", err)
	}

	out := string(html)

	order := []string{"21-40", "61-80", "alpha", "zeta"}
	last := -1

	for _, label := range order {
		idx := strings.Index(out, label)
		if idx <= last {
			t.Fatalf("expected %q after previous label in %q", label, out)
		}

		last = idx
	}
}

func TestBucketPieChartSkipsEmptyBuckets(t *testing.T) {
	t.Parallel()

	html, err := bucketPieChart("Ages", "pie_test", []dashboard.Bucket{
		{Label: "21-40", Count: 3},
		{Label: "81+", Count: 0},
	})
	if err != nil {
		t.Fatalf("failed to render chart: %v", err)
	}

	out := string(html)
	if !strings.Contains(out, "21-40") || strings.Contains(out, "81+") {
		t.Fatalf("unexpected pie chart output: %q", out)
	}
}

func TestTemplateFuncs(t *testing.T) {
	t.Parallel()

	funcs := TemplateFuncs()

	decimal := funcs["decimal"].(func(float64) string)
	if got := decimal(28.46); got != "28.5" {
		t.Fatalf("unexpected decimal: %q", got)
	}

	number := funcs["number"].(func(float64) string)
	if got := number(120); got != "120" {
		t.Fatalf("unexpected number: %q", got)
	}

	riskClass := funcs["riskClass"].(func(api.RiskLevel) string)
	if got := riskClass(api.RiskMedium); got != "risk-medium" {
		t.Fatalf("unexpected risk class: %q", got)
	}

	statusClass := funcs["statusClass"].(func(api.UploadStatus) string)
	if got := statusClass(api.UploadProcessing); got != "badge-info" {
		t.Fatalf("unexpected status class: %q", got)
	}

	derefInt := funcs["derefInt"].(func(*int) string)
	two := 2

	if derefInt(nil) != "-" || derefInt(&two) != "2" {
		t.Fatal("unexpected derefInt output")
	}

	datetimePtr := funcs["datetimePtr"].(func(*api.Timestamp) string)
	if got := datetimePtr(nil); got != "-" {
		t.Fatalf("unexpected datetimePtr for nil: %q", got)
	}

	if got := formatTimestamp(api.Timestamp{}); got != "-" {
		t.Fatalf("unexpected zero timestamp format: %q", got)
	}
}
