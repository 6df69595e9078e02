/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

// CreateUser registers a user. A 409 fails with a conflict *Error whose
// Existing field holds the already-registered user when the backend returned
// it.
func (c *Client) CreateUser(ctx context.Context, user UserCreate, opts ...CallOption) (*User, error) {
	res, err := c.postJSON(ctx, opCreateUser, "/users/", user, collectCallOptions(opts))
	if err != nil {
		return nil, err
	}

	if res.status == http.StatusConflict {
		apiErr := classify(opCreateUser, res)

		var existing User
		if err := json.Unmarshal(res.body, &existing); err == nil && existing.ID != 0 {
			apiErr.Existing = &existing
		}

		if apiErr.Message == opCreateUser.failure {
			apiErr.Message = "User already exists"
		}

		return nil, apiErr
	}

	if res.status < 200 || res.status > 299 {
		return nil, classify(opCreateUser, res)
	}

	var created User
	if err := json.Unmarshal(res.body, &created); err != nil {
		return nil, newError(KindNetwork, res.status, opCreateUser.failure, err)
	}

	return &created, nil
}

// CreateDiabetesRecord stores a health record for an existing user.
func (c *Client) CreateDiabetesRecord(ctx context.Context, record RecordCreate, opts ...CallOption) (*HealthRecord, error) {
	res, err := c.postJSON(ctx, opCreateRecord, "/diabetes/", record, collectCallOptions(opts))
	if err != nil {
		return nil, err
	}

	if res.status < 200 || res.status > 299 {
		return nil, classify(opCreateRecord, res)
	}

	var created HealthRecord
	if err := json.Unmarshal(res.body, &created); err != nil {
		return nil, newError(KindNetwork, res.status, opCreateRecord.failure, err)
	}

	return &created, nil
}

// CreateInitialUserWithRecord registers a user and stores their first record.
// An already-registered user (409) is reused. Any other user failure stops
// before the record call. A record failure after the user step returns a
// *PartialIntakeError. An idempotency key K is sent as K:user and K:record
// so each POST carries its own stable key.
func (c *Client) CreateInitialUserWithRecord(ctx context.Context, user UserCreate, record RecordCreate, opts ...CallOption) (*Intake, error) {
	o := collectCallOptions(opts)

	var userOpts, recordOpts []CallOption
	if o.idempotencyKey != "" {
		userOpts = append(userOpts, IdempotencyKey(o.idempotencyKey+":user"))
		recordOpts = append(recordOpts, IdempotencyKey(o.idempotencyKey+":record"))
	}

	intake := &Intake{}

	created, err := c.CreateUser(ctx, user, userOpts...)
	if err != nil {
		var apiErr *Error
		if !errors.As(err, &apiErr) || apiErr.Kind != KindConflict || apiErr.Existing == nil {
			logger.Warn("user registration failed", "error", err)
			return nil, newError(KindOf(err), statusOf(err), opCreateUser.failure, err)
		}

		logger.Info("user already registered, reusing", "user_id", apiErr.Existing.ID)

		created = apiErr.Existing
		intake.ExistingUser = true
	}

	intake.User = *created
	record.UserID = created.ID

	stored, err := c.CreateDiabetesRecord(ctx, record, recordOpts...)
	if err != nil {
		logger.Warn("record creation failed after user step", "user_id", created.ID, "error", err)
		return nil, &PartialIntakeError{User: *created, Err: err}
	}

	intake.Record = *stored

	return intake, nil
}

func statusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}

	return 0
}

// GetHealthAssessment fetches one assessment by its id.
func (c *Client) GetHealthAssessment(ctx context.Context, id int64) (*HealthAssessment, error) {
	var assessment HealthAssessment
	if err := c.getJSON(ctx, opGetAssessment, "/health/"+strconv.FormatInt(id, 10), nil, &assessment); err != nil {
		return nil, err
	}

	return &assessment, nil
}

// RecordQuery selects a page of records. Nil filters are not sent.
type RecordQuery struct {
	Limit   int
	Offset  int
	MinAge  *int
	MaxAge  *int
	Outcome *bool
}

// Values encodes the query. A zero limit becomes the backend default.
func (q RecordQuery) Values() url.Values {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultRecordLimit
	}

	v := url.Values{}
	v.Set("limit", strconv.Itoa(limit))
	v.Set("offset", strconv.Itoa(max(q.Offset, 0)))

	if q.MinAge != nil {
		v.Set("min_age", strconv.Itoa(*q.MinAge))
	}

	if q.MaxAge != nil {
		v.Set("max_age", strconv.Itoa(*q.MaxAge))
	}

	if q.Outcome != nil {
		v.Set("outcome", strconv.FormatBool(*q.Outcome))
	}

	return v
}

// GetDiabetesRecords lists stored records.
func (c *Client) GetDiabetesRecords(ctx context.Context, query RecordQuery) (*RecordList, error) {
	var list RecordList
	if err := c.getJSON(ctx, opGetRecords, "/data", query.Values(), &list); err != nil {
		return nil, err
	}

	if list.Data == nil {
		list.Data = []HealthRecord{}
	}

	return &list, nil
}

// GetAnalysisData fetches the backend's aggregate analysis.
func (c *Client) GetAnalysisData(ctx context.Context) (*AnalysisResult, error) {
	var result AnalysisResult
	if err := c.getJSON(ctx, opGetAnalysis, "/analyze", nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetInsights fetches diabetes rates by age group and BMI category.
func (c *Client) GetInsights(ctx context.Context) (*InsightsResult, error) {
	var result InsightsResult
	if err := c.getJSON(ctx, opGetInsights, "/insights", nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetUploadAttempts lists dataset uploads, newest first.
func (c *Client) GetUploadAttempts(ctx context.Context) ([]UploadAttempt, error) {
	var attempts []UploadAttempt
	if err := c.getJSON(ctx, opGetAttempts, "/attempts", nil, &attempts); err != nil {
		return nil, err
	}

	return attempts, nil
}
