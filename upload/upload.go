/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

// Package upload runs dataset uploads and keeps a failed upload's file so
// the user can retry it without selecting it again.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/humaidq/intake/api"
	"github.com/humaidq/intake/logging"
)

var logger = logging.Logger(logging.SourceWeb)

// MaxFileSize is the largest dataset accepted, matching the multipart limit.
const MaxFileSize = 10 << 20

// DefaultPendingTTL is how long a failed upload stays available for retry.
const DefaultPendingTTL = 30 * time.Minute

const pendingSlots = 64

// File is a selected dataset held in memory.
type File struct {
	Name string
	Data []byte
}

// Size is the length of the file in bytes.
func (f File) Size() int {
	return len(f.Data)
}

// ReadFile reads a selected file, refusing anything over MaxFileSize.
func ReadFile(name string, r io.Reader) (File, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return File{}, fmt.Errorf("failed to read %q: %w", name, err)
	}

	if len(data) > MaxFileSize {
		return File{}, ErrTooLarge
	}

	return File{Name: name, Data: data}, nil
}

// Backend is the part of the API client an upload needs.
type Backend interface {
	UploadDataset(ctx context.Context, filename string, content io.Reader) (*api.UploadResult, error)
	InvalidateReads(ctx context.Context) error
}

// Service runs uploads for many owners (sessions).
type Service struct {
	backend Backend
	pending *expirable.LRU[string, File]
}

// NewService returns a service keeping failed uploads for ttl.
func NewService(backend Backend, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultPendingTTL
	}

	return &Service{
		backend: backend,
		pending: expirable.NewLRU[string, File](pendingSlots, nil, ttl),
	}
}

// Upload validates and sends f. A rejected name never reaches the backend.
// On success the owner's pending file is cleared and cached reads are
// invalidated so the dashboard refetches. On failure f is kept for Retry.
func (s *Service) Upload(ctx context.Context, owner string, f File) (*api.UploadResult, error) {
	if err := api.ValidateCSVName(f.Name); err != nil {
		return nil, err
	}

	result, err := s.backend.UploadDataset(ctx, f.Name, bytes.NewReader(f.Data))
	if err != nil {
		s.pending.Add(owner, f)
		logger.Warn("dataset upload failed", "filename", f.Name, "bytes", f.Size(), "error", err)

		return nil, err
	}

	s.pending.Remove(owner)

	if err := s.backend.InvalidateReads(ctx); err != nil {
		logger.Warn("failed to invalidate cached reads after upload", "error", err)
	}

	logger.Info("dataset uploaded", "filename", f.Name, "records", result.RecordsUploaded)

	return result, nil
}

// Retry resends the owner's last failed upload.
func (s *Service) Retry(ctx context.Context, owner string) (*api.UploadResult, error) {
	f, ok := s.pending.Get(owner)
	if !ok {
		return nil, ErrNothingPending
	}

	return s.Upload(ctx, owner, f)
}

// Pending returns the owner's failed upload, if one is held.
func (s *Service) Pending(owner string) (File, bool) {
	return s.pending.Get(owner)
}

// Discard drops the owner's failed upload.
func (s *Service) Discard(owner string) {
	s.pending.Remove(owner)
}

// SuccessMessage is the confirmation shown after an accepted upload.
func SuccessMessage(result *api.UploadResult) string {
	return fmt.Sprintf("Successfully uploaded %d records", result.RecordsUploaded)
}
