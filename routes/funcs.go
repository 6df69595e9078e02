/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	htmltemplate "html/template"
	"strconv"
	"time"

	"github.com/humaidq/intake/api"
	"github.com/humaidq/intake/dashboard"
)

// TemplateFuncs are the helpers available to every page template.
func TemplateFuncs() htmltemplate.FuncMap {
	return htmltemplate.FuncMap{
		"decimal": func(v float64) string {
			return strconv.FormatFloat(v, 'f', 1, 64)
		},
		"decimal2": func(v *float64) string {
			if v == nil {
				return "-"
			}

			return strconv.FormatFloat(*v, 'f', 2, 64)
		},
		"number": func(v float64) string {
			return strconv.FormatFloat(v, 'f', -1, 64)
		},
		"outcome": dashboard.OutcomeLabel,
		"datetime": formatTimestamp,
		"datetimePtr": func(ts *api.Timestamp) string {
			if ts == nil {
				return "-"
			}

			return formatTimestamp(*ts)
		},
		"date": func(t time.Time) string {
			return t.Format("2006-01-02")
		},
		"riskClass": func(level api.RiskLevel) string {
			switch level {
			case api.RiskHigh:
				return "risk-high"
			case api.RiskMedium:
				return "risk-medium"
			default:
				return "risk-low"
			}
		},
		"statusClass": func(status api.UploadStatus) string {
			switch status {
			case api.UploadSuccess:
				return "badge-success"
			case api.UploadFailed:
				return "badge-error"
			default:
				return "badge-info"
			}
		},
		"derefInt": func(v *int) string {
			if v == nil {
				return "-"
			}

			return strconv.Itoa(*v)
		},
		"derefString": func(v *string) string {
			if v == nil {
				return ""
			}

			return *v
		},
	}
}

func formatTimestamp(ts api.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}

	return ts.Local().Format("2006-01-02 15:04")
}
