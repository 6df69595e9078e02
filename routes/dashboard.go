/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"bytes"
	"errors"
	htmltemplate "html/template"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"

	"github.com/humaidq/intake/api"
	"github.com/humaidq/intake/dashboard"
	"github.com/humaidq/intake/report"
	"github.com/humaidq/intake/upload"
)

// exportViewer keeps export loads from cancelling the viewer's page load.
func exportViewer(s session.Session) string {
	return s.ID() + ":export"
}

// Dashboard renders statistics, charts and the searchable record table.
// Charts and statistics always cover every loaded record; the search term
// only filters the table.
func Dashboard(
	c flamego.Context,
	t template.Template,
	data template.Data,
	s session.Session,
	loader *dashboard.Loader,
	uploads *upload.Service,
) {
	data["IsDashboard"] = true

	search := strings.TrimSpace(c.Query("q"))
	data["Search"] = search

	if pending, ok := uploads.Pending(s.ID()); ok {
		data["PendingUpload"] = pending.Name
	}

	snap, err := loader.Load(c.Request().Context(), s.ID())
	if err != nil {
		if errors.Is(err, dashboard.ErrSuperseded) {
			logger.Debug("Dashboard load superseded by a newer request")
			data["Error"] = "This view was replaced by a newer request"
			t.HTML(http.StatusConflict, "dashboard")

			return
		}

		logger.Warn("Failed to load dashboard", "error", err)
		data["Error"] = api.Message(err)
		t.HTML(http.StatusOK, "dashboard")

		return
	}

	records := dashboard.Search(snap.Records, search)

	data["Snapshot"] = snap
	data["Stats"] = snap.Stats
	data["Analysis"] = snap.Analysis
	data["Records"] = records
	data["RiskNarrative"] = renderMarkdown(snap.Analysis.RiskAssessment)

	chartData := []struct {
		key    string
		render func() (htmltemplate.HTML, error)
	}{
		{"BMIChart", func() (htmltemplate.HTML, error) {
			return bucketBarChart("BMI Distribution", "dashboard_bmi", snap.BMIBuckets)
		}},
		{"AgeChart", func() (htmltemplate.HTML, error) {
			return bucketPieChart("Age Distribution", "dashboard_age", snap.AgeBuckets)
		}},
		{"GlucoseChart", func() (htmltemplate.HTML, error) {
			return glucoseLineChart(snap.Records)
		}},
	}

	if len(snap.Records) > 0 {
		for _, chart := range chartData {
			html, err := chart.render()
			if err != nil {
				logger.Error("Error rendering dashboard chart", "chart", chart.key, "error", err)
				continue
			}

			data[chart.key] = html
		}
	}

	t.HTML(http.StatusOK, "dashboard")
}

func writeDownload(c flamego.Context, contentType, filename string, body []byte) {
	header := c.ResponseWriter().Header()
	header.Set("Content-Type", contentType)
	header.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	header.Set("Content-Length", strconv.Itoa(len(body)))

	c.ResponseWriter().WriteHeader(http.StatusOK)

	if _, err := c.ResponseWriter().Write(body); err != nil {
		logger.Warn("Failed to write download", "filename", filename, "error", err)
	}
}

// exportSummary loads a fresh snapshot for an export and applies the
// dashboard's search term. On failure the user is sent back to the
// dashboard with the error.
func exportSummary(c flamego.Context, s session.Session, loader *dashboard.Loader, now time.Time) (report.Summary, bool) {
	search := strings.TrimSpace(c.Query("q"))

	snap, err := loader.Load(c.Request().Context(), exportViewer(s))
	if err != nil {
		logger.Warn("Failed to load dashboard for export", "error", err)
		SetErrorFlash(s, api.Message(err))
		c.Redirect(dashboardURL(search), http.StatusSeeOther)

		return report.Summary{}, false
	}

	return report.NewSummary(snap, search, now), true
}

func dashboardURL(search string) string {
	if search == "" {
		return "/dashboard"
	}

	return "/dashboard?q=" + url.QueryEscape(search)
}

func exportDocument(
	c flamego.Context,
	s session.Session,
	loader *dashboard.Loader,
	contentType string,
	filename func(time.Time) string,
	write func(io.Writer, report.Summary) error,
) {
	now := time.Now()

	summary, ok := exportSummary(c, s, loader, now)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, summary); err != nil {
		logger.Error("Failed to generate export", "filename", filename(now), "error", err)
		SetErrorFlash(s, "Failed to generate the export")
		c.Redirect(dashboardURL(summary.Search), http.StatusSeeOther)

		return
	}

	writeDownload(c, contentType, filename(now), buf.Bytes())
}

// DashboardReportPDF downloads the dashboard as a PDF report.
func DashboardReportPDF(c flamego.Context, s session.Session, loader *dashboard.Loader) {
	exportDocument(c, s, loader, "application/pdf", report.PDFFilename, report.WritePDF)
}

// DashboardRecordsXLSX downloads the filtered record table as a workbook.
func DashboardRecordsXLSX(c flamego.Context, s session.Session, loader *dashboard.Loader) {
	exportDocument(c, s, loader,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		report.XLSXFilename, report.WriteRecordsXLSX)
}
