// SPDX-FileCopyrightText: 2026 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/humaidq/intake/api"
)

func TestParseAssessmentID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "12", want: 12},
		{in: " 7 ", want: 7},
		{in: "0", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseAssessmentID(tt.in)
		if tt.wantErr {
			if !errors.Is(err, errInvalidAssessmentID) {
				t.Fatalf("parseAssessmentID(%q): expected invalid id error, got %v", tt.in, err)
			}

			continue
		}

		if err != nil || got != tt.want {
			t.Fatalf("parseAssessmentID(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestRenderMarkdownDropsRawHTML(t *testing.T) {
	t.Parallel()

	out := string(renderMarkdown("<script>alert(1)</script>\n\nRisk is *elevated*."))

	if strings.Contains(out, "<script>") {
		t.Fatalf("expected raw html to be dropped, got %q", out)
	}

	if !strings.Contains(out, "<em>elevated</em>") {
		t.Fatalf("expected markdown emphasis, got %q", out)
	}

	if got := renderMarkdown("   "); got != "" {
		t.Fatalf("expected empty output for blank text, got %q", got)
	}
}

func TestAbsoluteURL(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "http://intake.example/assessment/3", nil)
	if got := absoluteURL(req, "/assessment/3"); got != "http://intake.example/assessment/3" {
		t.Fatalf("unexpected url: %q", got)
	}

	req.Header.Set("X-Forwarded-Proto", "https")
	if got := absoluteURL(req, "/assessment/3"); got != "https://intake.example/assessment/3" {
		t.Fatalf("unexpected forwarded url: %q", got)
	}

	req.Header.Set("X-Forwarded-Proto", "gopher")
	if got := absoluteURL(req, "/x"); got != "http://intake.example/x" {
		t.Fatalf("expected unknown scheme to be ignored, got %q", got)
	}
}

func TestAssessmentLookupRedirects(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeBackend{})
	rec := performGET(t, app, "/assessment?id=+42")

	assertRedirect(t, rec, "/assessment/42")
	assertNoFlash(t, app.session)
}

func TestAssessmentLookupRejectsInvalidID(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeBackend{})
	rec := performGET(t, app, "/assessment?id=abc")

	assertRedirect(t, rec, "/confirmation")
	assertFlash(t, app.session, FlashError, "Please enter a valid assessment ID")
}

func TestViewAssessmentInvalidID(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeBackend{})
	rec := performGET(t, app, "/assessment/abc")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	assertBodyContains(t, rec, "Invalid assessment ID")
}

func TestViewAssessmentNotFound(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeBackend{
		assessmentErr: &api.Error{Kind: api.KindNotFound, StatusCode: http.StatusNotFound, Message: "Assessment not found"},
	})
	rec := performGET(t, app, "/assessment/99")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}

	assertBodyContains(t, rec, "Assessment not found")
}

func TestViewAssessmentBackendFailure(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeBackend{assessmentErr: errTestBoom})
	rec := performGET(t, app, "/assessment/99")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	assertBodyContains(t, rec, "An unexpected error occurred")
}

func TestViewAssessmentRendersRiskAndQRCode(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeBackend{
		assessment: &api.HealthAssessment{
			ID:        12,
			RiskScore: 0.82,
			RiskLevel: api.RiskHigh,
			Recommendations: api.Recommendations{
				RiskAssessment:  "Risk is **high**.",
				Recommendations: []string{"Reduce sugar intake"},
			},
		},
	})
	rec := performGET(t, app, "/assessment/12")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	assertBodyContains(t, rec,
		"risk-high",
		"82%",
		"<strong>high</strong>",
		"Reduce sugar intake",
		"No preventive measures available.",
		"data:image/png;base64,",
		"http://example.com/assessment/12",
	)
}
