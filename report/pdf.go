/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

// Package report exports the dashboard as documents: a paginated PDF summary
// and a spreadsheet of the record table.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/humaidq/intake/api"
	"github.com/humaidq/intake/dashboard"
)

// A4 portrait, in millimetres.
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	margin       = 15.0
	footerHeight = 10.0
	contentWidth = pageWidth - 2*margin
	rowHeight    = 6.0
)

// Summary is everything the PDF report shows.
type Summary struct {
	GeneratedAt time.Time
	Search      string
	Stats       dashboard.Stats
	BMIBuckets  []dashboard.Bucket
	AgeBuckets  []dashboard.Bucket
	Analysis    api.AnalysisResult
	Records     []api.HealthRecord
}

// NewSummary builds a report from a dashboard snapshot and the records left
// after applying search.
func NewSummary(snap *dashboard.Snapshot, search string, now time.Time) Summary {
	records := dashboard.Search(snap.Records, search)

	return Summary{
		GeneratedAt: now,
		Search:      search,
		Stats:       snap.Stats,
		BMIBuckets:  snap.BMIBuckets,
		AgeBuckets:  snap.AgeBuckets,
		Analysis:    snap.Analysis,
		Records:     records,
	}
}

// PDFFilename names the report after the day it was generated.
func PDFFilename(now time.Time) string {
	return "dashboard-report-" + now.Format("2006-01-02") + ".pdf"
}

// WritePDF renders s as an A4 document to w.
func WritePDF(w io.Writer, s Summary) error {
	pdf, err := renderPDF(s)
	if err != nil {
		return err
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}

	return nil
}

type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func renderPDF(s Summary) (*fpdf.Fpdf, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle("Health Data Dashboard Report", true)
	pdf.SetCreator("intake", true)

	pw := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-footerHeight)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, "Page "+strconv.Itoa(pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(20, 20, 20)
	pdf.CellFormat(contentWidth, 10, "Health Data Dashboard Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(contentWidth, 6, "Generated on: "+s.GeneratedAt.Format("2006-01-02"), "", 1, "L", false, 0, "")

	if s.Search != "" {
		pdf.CellFormat(contentWidth, 6, pw.tr("Filtered by: "+s.Search), "", 1, "L", false, 0, "")
	}

	pdf.Ln(4)

	pw.statistics(s.Stats)
	pw.histogram("BMI Distribution", s.BMIBuckets)
	pw.histogram("Age Distribution", s.AgeBuckets)
	pw.narrative(s.Analysis)
	pw.records(s.Records)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	return pdf, nil
}

// ensure starts a new page when h more millimetres would run into the footer.
// It reports whether a page was added.
func (pw *pdfWriter) ensure(h float64) bool {
	if pw.pdf.GetY()+h <= pageHeight-margin-footerHeight {
		return false
	}

	pw.pdf.AddPage()

	return true
}

func (pw *pdfWriter) heading(title string) {
	pw.ensure(14)
	pw.pdf.SetFont("Helvetica", "B", 13)
	pw.pdf.SetTextColor(20, 20, 20)
	pw.pdf.CellFormat(contentWidth, 8, pw.tr(title), "", 1, "L", false, 0, "")
}

func (pw *pdfWriter) statistics(st dashboard.Stats) {
	pw.heading("Summary")

	cells := []struct{ label, value string }{
		{"Total records", strconv.Itoa(st.Count)},
		{"Average glucose", fmt.Sprintf("%.1f mg/dL", st.MeanGlucose)},
		{"Average BMI", fmt.Sprintf("%.1f", st.MeanBMI)},
		{"Average age", fmt.Sprintf("%.1f years", st.MeanAge)},
		{"Diabetes rate", fmt.Sprintf("%.1f%%", st.PositiveRate)},
	}

	pw.pdf.SetFont("Helvetica", "", 10)
	pw.pdf.SetTextColor(40, 40, 40)

	for _, c := range cells {
		pw.ensure(rowHeight)
		pw.pdf.CellFormat(60, rowHeight, c.label, "B", 0, "L", false, 0, "")
		pw.pdf.CellFormat(contentWidth-60, rowHeight, c.value, "B", 1, "R", false, 0, "")
	}

	pw.pdf.Ln(4)
}

func (pw *pdfWriter) histogram(title string, buckets []dashboard.Bucket) {
	const (
		labelWidth = 35.0
		barMax     = contentWidth - labelWidth - 15
	)

	pw.heading(title)

	peak := 0
	for _, b := range buckets {
		peak = max(peak, b.Count)
	}

	pw.pdf.SetFont("Helvetica", "", 9)
	pw.pdf.SetFillColor(84, 112, 198)

	for _, b := range buckets {
		pw.ensure(rowHeight)

		x, y := pw.pdf.GetXY()
		pw.pdf.CellFormat(labelWidth, rowHeight, b.Label, "", 0, "L", false, 0, "")

		width := 0.0
		if peak > 0 {
			width = barMax * float64(b.Count) / float64(peak)
		}

		if width > 0 {
			pw.pdf.Rect(x+labelWidth, y+1, width, rowHeight-2, "F")
		}

		pw.pdf.SetXY(x+labelWidth+width+2, y)
		pw.pdf.CellFormat(13, rowHeight, strconv.Itoa(b.Count), "", 1, "L", false, 0, "")
	}

	pw.pdf.Ln(4)
}

func (pw *pdfWriter) paragraph(text string) {
	pw.pdf.SetFont("Helvetica", "", 10)
	pw.pdf.SetTextColor(40, 40, 40)

	for _, line := range pw.pdf.SplitText(text, contentWidth) {
		pw.ensure(5)
		pw.pdf.CellFormat(contentWidth, 5, pw.tr(line), "", 1, "L", false, 0, "")
	}
}

func (pw *pdfWriter) list(items []string, empty string) {
	if len(items) == 0 {
		pw.paragraph(empty)
		return
	}

	for _, item := range items {
		pw.paragraph("- " + item)
	}
}

func (pw *pdfWriter) narrative(a api.AnalysisResult) {
	pw.heading("Risk Assessment")

	if a.RiskAssessment == "" {
		pw.paragraph("No risk assessment available.")
	} else {
		pw.paragraph(a.RiskAssessment)
	}

	pw.pdf.Ln(2)
	pw.heading("Recommendations")
	pw.list(a.Recommendations, "No recommendations available.")

	pw.pdf.Ln(2)
	pw.heading("Preventive Measures")
	pw.list(a.PreventiveMeasures, "No preventive measures available.")

	pw.pdf.Ln(4)
}

var recordColumns = []struct {
	title string
	width float64
	align string
}{
	{"ID", 30, "L"},
	{"Age", 30, "R"},
	{"BMI", 40, "R"},
	{"Glucose", 40, "R"},
	{"Diabetes", 40, "C"},
}

func (pw *pdfWriter) recordHeader() {
	pw.pdf.SetFont("Helvetica", "B", 10)
	pw.pdf.SetFillColor(235, 238, 245)
	pw.pdf.SetTextColor(20, 20, 20)

	for _, col := range recordColumns {
		pw.pdf.CellFormat(col.width, rowHeight+1, col.title, "1", 0, col.align, true, 0, "")
	}

	pw.pdf.Ln(-1)
	pw.pdf.SetFont("Helvetica", "", 9)
	pw.pdf.SetTextColor(40, 40, 40)
}

func (pw *pdfWriter) records(records []api.HealthRecord) {
	pw.heading(fmt.Sprintf("Patient Records (%d)", len(records)))

	if len(records) == 0 {
		pw.paragraph("No records found.")
		return
	}

	pw.ensure(2 * rowHeight)
	pw.recordHeader()

	for _, r := range records {
		if pw.ensure(rowHeight) {
			pw.recordHeader()
		}

		values := []string{
			strconv.FormatInt(r.ID, 10),
			strconv.FormatFloat(r.Age, 'f', -1, 64),
			fmt.Sprintf("%.1f", r.BMI),
			strconv.FormatFloat(r.Glucose, 'f', -1, 64),
			dashboard.OutcomeLabel(r.Outcome),
		}

		for i, col := range recordColumns {
			pw.pdf.CellFormat(col.width, rowHeight, values[i], "1", 0, col.align, false, 0, "")
		}

		pw.pdf.Ln(-1)
	}
}
