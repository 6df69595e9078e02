/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/flamego/flamego"
	"github.com/flamego/session"

	"github.com/humaidq/intake/api"
	"github.com/humaidq/intake/upload"
)

// multipartOverhead leaves room for the form envelope around a file of
// upload.MaxFileSize bytes.
const multipartOverhead = 1 << 20

// UploadBodyLimit caps the request body of upload routes. It must run
// before CSRF validation, which parses the form.
func UploadBodyLimit() flamego.Handler {
	return func(c flamego.Context) {
		r := c.Request().Request
		r.Body = http.MaxBytesReader(c.ResponseWriter(), r.Body, upload.MaxFileSize+multipartOverhead)
	}
}

func readUploadedFile(c flamego.Context) (upload.File, error) {
	r := c.Request().Request

	if err := r.ParseMultipartForm(upload.MaxFileSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return upload.File{}, upload.ErrTooLarge
		}

		if !errors.Is(err, http.ErrNotMultipart) {
			return upload.File{}, fmt.Errorf("failed to parse upload form: %w", err)
		}
	}

	file, header, err := r.FormFile(api.UploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return upload.File{}, errMissingUploadFile
		}

		return upload.File{}, fmt.Errorf("failed to read upload: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			logger.Warn("Failed to close uploaded file", "error", err)
		}
	}()

	return upload.ReadFile(header.Filename, file)
}

func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, errMissingUploadFile):
		return "Please select a file first"
	case errors.Is(err, upload.ErrTooLarge):
		return fmt.Sprintf("The file is too large (maximum %d MB)", upload.MaxFileSize>>20)
	case errors.Is(err, upload.ErrNothingPending):
		return "There is no failed upload to retry"
	default:
		return api.Message(err)
	}
}

// UploadDataset sends a CSV file from the dashboard form to the backend.
// A failed upload is kept so it can be retried without choosing the file
// again.
func UploadDataset(c flamego.Context, s session.Session, uploads *upload.Service) {
	f, err := readUploadedFile(c)
	if err != nil {
		logger.Warn("Rejected dataset upload", "error", err)
		SetErrorFlash(s, uploadErrorMessage(err))
		c.Redirect("/dashboard", http.StatusSeeOther)

		return
	}

	finishUpload(c, s, func() (*api.UploadResult, error) {
		return uploads.Upload(c.Request().Context(), s.ID(), f)
	})
}

// RetryUpload resends the session's last failed upload.
func RetryUpload(c flamego.Context, s session.Session, uploads *upload.Service) {
	finishUpload(c, s, func() (*api.UploadResult, error) {
		return uploads.Retry(c.Request().Context(), s.ID())
	})
}

// DiscardUpload forgets the session's failed upload.
func DiscardUpload(c flamego.Context, s session.Session, uploads *upload.Service) {
	uploads.Discard(s.ID())
	SetInfoFlash(s, "The failed upload was discarded")
	c.Redirect("/dashboard", http.StatusSeeOther)
}

func finishUpload(c flamego.Context, s session.Session, send func() (*api.UploadResult, error)) {
	result, err := send()
	if err != nil {
		if errors.Is(err, upload.ErrNothingPending) {
			SetWarningFlash(s, uploadErrorMessage(err))
		} else {
			SetErrorFlash(s, uploadErrorMessage(err))
		}

		c.Redirect("/dashboard", http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, upload.SuccessMessage(result))
	c.Redirect("/dashboard", http.StatusSeeOther)
}
