// SPDX-FileCopyrightText: 2026 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/humaidq/intake/api"
	"github.com/humaidq/intake/upload"
)

func dashboardBackend() *fakeBackend {
	return &fakeBackend{
		records: []api.HealthRecord{
			{ID: 101, Age: 25, BMI: 22, Glucose: 90},
			{ID: 202, Age: 55, BMI: 31, Glucose: 160, Outcome: true},
			{ID: 303, Age: 70, BMI: 27.5, Glucose: 140},
		},
		analysis: api.AnalysisResult{
			TotalRecords:    3,
			RiskAssessment:  "Overall risk is *moderate*.",
			Recommendations: []string{"Screen annually"},
		},
	}
}

func TestDashboardRendersRecordsAndCharts(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, dashboardBackend())
	rec := performGET(t, app, "/dashboard")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	assertBodyContains(t, rec,
		`<span class="stat-value">3</span>`,
		"<td>101</td>", "<td>202</td>", "<td>303</td>",
		"dashboard_bmi", "dashboard_age", "dashboard_glucose",
		"<em>moderate</em>",
		"Screen annually",
	)
}

func TestDashboardSearchFiltersTableOnly(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, dashboardBackend())
	rec := performGET(t, app, "/dashboard?q=160")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	assertBodyContains(t, rec, "<td>202</td>", `<span class="stat-value">3</span>`, `value="160"`)

	if strings.Contains(rec.Body.String(), "<td>101</td>") {
		t.Fatal("expected record 101 to be filtered out of the table")
	}
}

func TestDashboardEmptyRecords(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeBackend{})
	rec := performGET(t, app, "/dashboard")

	assertBodyContains(t, rec, "No records found.", "No risk assessment available.")

	if strings.Contains(rec.Body.String(), "dashboard_glucose") {
		t.Fatal("expected no charts without records")
	}
}

func TestDashboardLoadFailureShowsError(t *testing.T) {
	t.Parallel()

	backend := dashboardBackend()
	backend.analysisErr = &api.Error{Kind: api.KindNetwork, Message: "Failed to load analysis data"}

	app := newTestApp(t, backend)
	rec := performGET(t, app, "/dashboard")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	assertBodyContains(t, rec, "Failed to load analysis data")

	if strings.Contains(rec.Body.String(), "<td>101</td>") {
		t.Fatal("expected no records when the load fails")
	}
}

func TestDashboardURL(t *testing.T) {
	t.Parallel()

	if got := dashboardURL(""); got != "/dashboard" {
		t.Fatalf("unexpected url: %q", got)
	}

	if got := dashboardURL("a b&c"); got != "/dashboard?q=a+b%26c" {
		t.Fatalf("unexpected url: %q", got)
	}
}

func TestDashboardReportPDF(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, dashboardBackend())
	rec := performGET(t, app, "/dashboard/report.pdf?q=160")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("unexpected content type: %q", got)
	}

	disposition := rec.Header().Get("Content-Disposition")
	if !strings.HasPrefix(disposition, `attachment; filename="dashboard-report-`) {
		t.Fatalf("unexpected content disposition: %q", disposition)
	}

	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Fatal("expected a PDF document")
	}
}

func TestDashboardRecordsXLSX(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, dashboardBackend())
	rec := performGET(t, app, "/dashboard/records.xlsx")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "spreadsheetml") {
		t.Fatalf("unexpected content type: %q", got)
	}

	// Workbooks are zip archives.
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Fatal("expected a zip archive")
	}
}

func TestDashboardExportFailureRedirects(t *testing.T) {
	t.Parallel()

	backend := dashboardBackend()
	backend.recordsErr = errTestBoom

	app := newTestApp(t, backend)
	rec := performGET(t, app, "/dashboard/report.pdf?q=160")

	assertRedirect(t, rec, "/dashboard?q=160")
	assertFlash(t, app.session, FlashError, "An unexpected error occurred")
}

func TestUploadDatasetSuccess(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeBackend{})
	rec := performFileUpload(t, app, "/dashboard/upload", "diabetes.csv", []byte("glucose,bmi\n120,28.5\n"))

	assertRedirect(t, rec, "/dashboard")
	assertFlash(t, app.session, FlashSuccess, "Successfully uploaded 2 records")

	if app.backend.invalidated != 1 {
		t.Fatalf("expected cached reads to be invalidated once, got %d", app.backend.invalidated)
	}
}

func TestUploadDatasetMissingFile(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeBackend{})
	rec := performFormPOST(t, app, "/dashboard/upload", url.Values{})

	assertRedirect(t, rec, "/dashboard")
	assertFlash(t, app.session, FlashError, "Please select a file first")
}

func TestUploadDatasetRejectsNonCSV(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeBackend{})
	rec := performFileUpload(t, app, "/dashboard/upload", "notes.txt", []byte("hello"))

	assertRedirect(t, rec, "/dashboard")
	assertFlash(t, app.session, FlashError, "Please select a CSV file")

	if len(app.backend.uploaded) != 0 {
		t.Fatalf("expected nothing sent to the backend, got %v", app.backend.uploaded)
	}

	if _, ok := app.uploads.Pending(app.session.ID()); ok {
		t.Fatal("expected a rejected name not to be kept for retry")
	}
}

func TestUploadFailureCanBeRetried(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{uploadErr: &api.Error{Kind: api.KindNetwork, Message: "Failed to upload dataset"}}
	app := newTestApp(t, backend)

	rec := performFileUpload(t, app, "/dashboard/upload", "diabetes.csv", []byte("glucose\n120\n"))
	assertRedirect(t, rec, "/dashboard")
	assertFlash(t, app.session, FlashError, "Failed to upload dataset")

	page := performGET(t, app, "/dashboard")
	assertBodyContains(t, page, "<strong>diabetes.csv</strong>", `action="/dashboard/upload/retry"`)

	backend.uploadErr = nil

	rec = performFormPOST(t, app, "/dashboard/upload/retry", url.Values{})
	assertRedirect(t, rec, "/dashboard")
	assertFlash(t, app.session, FlashSuccess, "Successfully uploaded 2 records")

	if got := strings.Join(backend.uploaded, ","); got != "diabetes.csv,diabetes.csv" {
		t.Fatalf("unexpected uploads: %q", got)
	}

	if _, ok := app.uploads.Pending(app.session.ID()); ok {
		t.Fatal("expected pending upload to be cleared after a successful retry")
	}
}

func TestRetryUploadWithNothingPending(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeBackend{})
	rec := performFormPOST(t, app, "/dashboard/upload/retry", url.Values{})

	assertRedirect(t, rec, "/dashboard")
	assertFlash(t, app.session, FlashWarning, "There is no failed upload to retry")
}

func TestDiscardUpload(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{uploadErr: errTestBoom}
	app := newTestApp(t, backend)

	performFileUpload(t, app, "/dashboard/upload", "diabetes.csv", []byte("glucose\n120\n"))

	rec := performFormPOST(t, app, "/dashboard/upload/discard", url.Values{})
	assertRedirect(t, rec, "/dashboard")
	assertFlash(t, app.session, FlashInfo, "The failed upload was discarded")

	if _, ok := app.uploads.Pending(app.session.ID()); ok {
		t.Fatal("expected pending upload to be discarded")
	}
}

func TestUploadErrorMessage(t *testing.T) {
	t.Parallel()

	if got := uploadErrorMessage(upload.ErrTooLarge); got != "The file is too large (maximum 10 MB)" {
		t.Fatalf("unexpected message: %q", got)
	}

	if got := uploadErrorMessage(errTestBoom); got != "An unexpected error occurred" {
		t.Fatalf("unexpected message: %q", got)
	}
}
