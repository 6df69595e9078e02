/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// UploadField is the multipart field the backend reads the dataset from.
const UploadField = "file"

// ValidateCSVName rejects empty names and names without a .csv extension.
func ValidateCSVName(filename string) error {
	name := strings.TrimSpace(filename)
	if name == "" {
		return newError(KindValidation, 0, "Please select a file first", ErrNoFile)
	}

	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		return newError(KindValidation, 0, "Please select a CSV file", ErrNotCSV)
	}

	return nil
}

// UploadDataset sends a CSV dataset as multipart form data. The name is
// checked before anything is read or sent.
func (c *Client) UploadDataset(ctx context.Context, filename string, content io.Reader) (*UploadResult, error) {
	if err := ValidateCSVName(filename); err != nil {
		return nil, err
	}

	var body bytes.Buffer

	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile(UploadField, filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart field: %w", err)
	}

	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/data/upload", nil), &body)
	if err != nil {
		return nil, newError(KindNetwork, 0, opUploadDataset.failure, err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	res, err := c.send(ctx, opUploadDataset, req)
	if err != nil {
		return nil, err
	}

	if res.status < 200 || res.status > 299 {
		return nil, classify(opUploadDataset, res)
	}

	var result UploadResult
	if err := json.Unmarshal(res.body, &result); err != nil {
		return nil, newError(KindNetwork, res.status, opUploadDataset.failure, err)
	}

	return &result, nil
}
