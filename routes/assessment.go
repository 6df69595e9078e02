/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"encoding/base64"
	"fmt"
	htmltemplate "html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/skip2/go-qrcode"

	"github.com/humaidq/intake/api"
)

func parseAssessmentID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidAssessmentID, value)
	}

	return id, nil
}

// renderMarkdown turns backend narrative text into HTML. Raw HTML in the
// source is dropped.
func renderMarkdown(text string) htmltemplate.HTML {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})

	return htmltemplate.HTML(markdown.ToHTML([]byte(text), p, renderer)) //nolint:gosec // Renderer drops raw HTML.
}

func generateQRCodeBase64(value string) (string, error) {
	png, err := qrcode.Encode(value, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("failed to generate qr code: %w", err)
	}

	return base64.StdEncoding.EncodeToString(png), nil
}

// absoluteURL rebuilds the public URL of path from the request, honouring a
// reverse proxy's forwarded scheme.
func absoluteURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}

	return scheme + "://" + r.Host + path
}

// AssessmentLookup redirects the lookup form to the assessment page.
func AssessmentLookup(c flamego.Context, s session.Session) {
	id, err := parseAssessmentID(c.Query("id"))
	if err != nil {
		SetErrorFlash(s, "Please enter a valid assessment ID")
		c.Redirect("/confirmation", http.StatusSeeOther)

		return
	}

	c.Redirect("/assessment/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

// ViewAssessment fetches one health assessment and renders it with a QR
// code linking back to the page.
func ViewAssessment(c flamego.Context, t template.Template, data template.Data, backend Backend) {
	data["IsAssessment"] = true

	id, err := parseAssessmentID(c.Param("id"))
	if err != nil {
		data["Error"] = "Invalid assessment ID"
		t.HTML(http.StatusBadRequest, "assessment")

		return
	}

	data["AssessmentID"] = id

	assessment, err := backend.GetHealthAssessment(c.Request().Context(), id)
	if err != nil {
		logger.Warn("Failed to fetch assessment", "id", id, "error", err)
		data["Error"] = api.Message(err)

		status := http.StatusOK
		if api.KindOf(err) == api.KindNotFound {
			status = http.StatusNotFound
		}

		t.HTML(status, "assessment")

		return
	}

	data["Assessment"] = assessment
	data["RiskNarrative"] = renderMarkdown(assessment.Recommendations.RiskAssessment)

	shareURL := absoluteURL(c.Request().Request, "/assessment/"+strconv.FormatInt(id, 10))
	data["ShareURL"] = shareURL

	if qr, err := generateQRCodeBase64(shareURL); err != nil {
		logger.Warn("Failed to generate assessment QR code", "error", err)
	} else {
		data["ShareQR"] = qr
	}

	t.HTML(http.StatusOK, "assessment")
}
