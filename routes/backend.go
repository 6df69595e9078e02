/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"context"

	"github.com/humaidq/intake/api"
	"github.com/humaidq/intake/wizard"
)

// Backend is the part of the API client the page handlers call directly.
// Dashboard loads and uploads go through dashboard.Loader and
// upload.Service, which are mapped separately.
type Backend interface {
	wizard.Submitter
	GetHealthAssessment(ctx context.Context, id int64) (*api.HealthAssessment, error)
	GetInsights(ctx context.Context) (*api.InsightsResult, error)
	GetUploadAttempts(ctx context.Context) ([]api.UploadAttempt, error)
}
