// SPDX-FileCopyrightText: 2026 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/urfave/cli/v3"

	"github.com/humaidq/intake/api"
	"github.com/humaidq/intake/dashboard"
	"github.com/humaidq/intake/upload"
)

func newTestWebApp(t *testing.T) *flamego.Flame {
	t.Helper()

	client, err := api.NewClient("http://127.0.0.1:1")
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	f, err := newWebApp(webConfig{
		CSRFSecret: "test-secret",
		Session:    session.Options{},
		Backend:    client,
		Loader:     dashboard.NewLoader(client, api.RecordQuery{}),
		Uploads:    upload.NewService(client, 0),
	})
	if err != nil {
		t.Fatalf("failed to build web app: %v", err)
	}

	return f
}

func TestConfigureEmptyNotFoundHandlerReturnsStatusOnly(t *testing.T) {
	t.Parallel()

	f := flamego.New()
	configureEmptyNotFoundHandler(f)

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}

	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty 404 body, got %q", rec.Body.String())
	}
}

func TestWebAppServesIntakeForm(t *testing.T) {
	t.Parallel()

	f := newTestWebApp(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, `name="_csrf"`) || !strings.Contains(body, `action="/intake/next"`) {
		t.Fatalf("expected the first intake step with a csrf field, got:\n%s", body)
	}

	if got := rec.Header().Get("Cache-Control"); got != "no-store, max-age=0" {
		t.Fatalf("unexpected Cache-Control: %q", got)
	}
}

func TestIntakeNextFormSkipsBrowserValidation(t *testing.T) {
	t.Parallel()

	f := newTestWebApp(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	body := rec.Body.String()

	start := strings.Index(body, `action="/intake/next"`)
	if start < 0 {
		t.Fatalf("expected the next form, got:\n%s", body)
	}

	end := strings.Index(body[start:], "</form>")
	if end < 0 {
		t.Fatal("expected the next form to be closed")
	}

	form := body[start : start+end]

	if strings.Contains(form, "required") {
		t.Fatalf("expected no required inputs before next, got:\n%s", form)
	}

	if !strings.Contains(form, "novalidate") {
		t.Fatalf("expected the next form to skip browser validation, got:\n%s", form)
	}
}

func TestWebAppServesHealthzAndStylesheet(t *testing.T) {
	t.Parallel()

	f := newTestWebApp(t)

	for _, path := range []string{"/healthz", "/style.css"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		f.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected status %d, got %d", path, http.StatusOK, rec.Code)
		}
	}
}

func TestWebAppRejectsPostWithoutCSRFToken(t *testing.T) {
	t.Parallel()

	f := newTestWebApp(t)

	form := url.Values{"first_name": {"Jane"}}
	req := httptest.NewRequest(http.MethodPost, "/intake/next", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	if rec.Code == http.StatusSeeOther {
		t.Fatal("expected the transition to be rejected without a csrf token")
	}
}

func TestStartRequiresCSRFSecret(t *testing.T) {
	t.Setenv("CSRF_SECRET", "")

	c := &cli.Command{Name: "start", Flags: CmdStart.Flags, Action: start}

	err := c.Run(context.Background(), []string{"start"})
	if !errors.Is(err, errCSRFSecretRequired) {
		t.Fatalf("expected missing csrf secret error, got %v", err)
	}
}

func TestUploadCommandValidatesArguments(t *testing.T) {
	t.Parallel()

	newCmd := func() *cli.Command {
		return &cli.Command{Name: "upload", Flags: apiFlags(), Action: uploadDataset}
	}

	if err := newCmd().Run(context.Background(), []string{"upload"}); !errors.Is(err, errFileArgRequired) {
		t.Fatalf("expected missing file error, got %v", err)
	}

	if err := newCmd().Run(context.Background(), []string{"upload", "notes.txt"}); !errors.Is(err, api.ErrNotCSV) {
		t.Fatalf("expected non-csv error, got %v", err)
	}
}
