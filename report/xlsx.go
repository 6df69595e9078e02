/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/humaidq/intake/api"
	"github.com/humaidq/intake/dashboard"
)

const (
	recordsSheet = "Records"
	summarySheet = "Summary"
)

var recordHeader = []interface{}{
	"ID", "User ID", "Pregnancies", "Glucose", "Blood Pressure", "Skin Thickness",
	"Insulin", "BMI", "Diabetes Pedigree", "Age", "Diabetes", "Source", "Created At",
}

// XLSXFilename names the spreadsheet after the day it was generated.
func XLSXFilename(now time.Time) string {
	return "patient-records-" + now.Format("2006-01-02") + ".xlsx"
}

// WriteRecordsXLSX writes the record table and its summary as a workbook.
func WriteRecordsXLSX(w io.Writer, s Summary) (err error) {
	f := excelize.NewFile()

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return fmt.Errorf("failed to name records sheet: %w", err)
	}

	if err := writeRecordRows(f, s.Records); err != nil {
		return err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}

	if err := writeSummaryRows(f, s); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return nil
}

func writeRecordRows(f *excelize.File, records []api.HealthRecord) error {
	if err := f.SetSheetRow(recordsSheet, "A1", &recordHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetCellStyle(recordsSheet, "A1", "M1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	if err := f.SetColWidth(recordsSheet, "A", "M", 15); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		var pregnancies interface{}
		if r.Pregnancies != nil {
			pregnancies = *r.Pregnancies
		}

		var created interface{}
		if r.CreatedAt != nil && !r.CreatedAt.IsZero() {
			created = r.CreatedAt.Format("2006-01-02 15:04:05")
		}

		row := []interface{}{
			r.ID, r.UserID, pregnancies, r.Glucose, r.BloodPressure, r.SkinThickness,
			r.Insulin, r.BMI, r.DiabetesPedigree, r.Age, dashboard.OutcomeLabel(r.Outcome), r.Source, created,
		}

		if err := f.SetSheetRow(recordsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", r.ID, err)
		}
	}

	return nil
}

func writeSummaryRows(f *excelize.File, s Summary) error {
	rows := [][]interface{}{
		{"Generated on", s.GeneratedAt.Format("2006-01-02")},
		{"Filter", s.Search},
		{"Total records", s.Stats.Count},
		{"Average glucose", s.Stats.MeanGlucose},
		{"Average BMI", s.Stats.MeanBMI},
		{"Average age", s.Stats.MeanAge},
		{"Diabetes rate (%)", s.Stats.PositiveRate},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}

	return f.SetColWidth(summarySheet, "A", "B", 20)
}
