/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RiskLevel is the coarse risk band the backend assigns to an assessment.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// UploadStatus is the processing state of a dataset upload attempt.
type UploadStatus string

const (
	UploadSuccess    UploadStatus = "success"
	UploadFailed     UploadStatus = "failed"
	UploadProcessing UploadStatus = "processing"
)

// User is a person registered with the backend.
type User struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Surname   string     `json:"surname"`
	Email     string     `json:"email"`
	CreatedAt Timestamp  `json:"created_at"`
	UpdatedAt *Timestamp `json:"updated_at,omitempty"`
}

// FullName joins the name and surname for display.
func (u User) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.Surname)
}

// UserCreate is the payload for registering a user.
type UserCreate struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
}

// RecordCreate is the payload for a new health record. Pregnancies is null
// for male subjects.
type RecordCreate struct {
	UserID           int64   `json:"user_id"`
	Pregnancies      *int    `json:"pregnancies"`
	Glucose          int     `json:"glucose"`
	BloodPressure    int     `json:"blood_pressure"`
	SkinThickness    int     `json:"skin_thickness"`
	Insulin          int     `json:"insulin"`
	BMI              float64 `json:"bmi"`
	DiabetesPedigree float64 `json:"diabetes_pedigree"`
	Age              int     `json:"age"`
}

// HealthRecord is a stored set of clinical measurements.
type HealthRecord struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id,omitempty"`
	Pregnancies      *int       `json:"pregnancies"`
	Glucose          float64    `json:"glucose"`
	BloodPressure    float64    `json:"blood_pressure"`
	SkinThickness    float64    `json:"skin_thickness"`
	Insulin          float64    `json:"insulin"`
	BMI              float64    `json:"bmi"`
	DiabetesPedigree float64    `json:"diabetes_pedigree"`
	Age              float64    `json:"age"`
	Outcome          bool       `json:"outcome"`
	Source           string     `json:"source,omitempty"`
	CreatedAt        *Timestamp `json:"created_at,omitempty"`
	UpdatedAt        *Timestamp `json:"updated_at,omitempty"`
}

// UnmarshalJSON accepts string identifiers and the "diabetes" alias for
// outcome used by dataset rows.
func (r *HealthRecord) UnmarshalJSON(data []byte) error {
	type plain HealthRecord

	aux := struct {
		*plain
		ID       json.Number `json:"id"`
		UserID   json.Number `json:"user_id"`
		Outcome  *bool       `json:"outcome"`
		Diabetes *bool       `json:"diabetes"`
	}{plain: (*plain)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if r.ID, err = parseID(aux.ID); err != nil {
		return fmt.Errorf("record id: %w", err)
	}

	if r.UserID, err = parseID(aux.UserID); err != nil {
		return fmt.Errorf("record user_id: %w", err)
	}

	switch {
	case aux.Outcome != nil:
		r.Outcome = *aux.Outcome
	case aux.Diabetes != nil:
		r.Outcome = *aux.Diabetes
	}

	return nil
}

func parseID(n json.Number) (int64, error) {
	if n == "" {
		return 0, nil
	}

	if id, err := n.Int64(); err == nil {
		return id, nil
	}

	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0, err
	}

	return int64(f), nil
}

// Recommendations is the narrative attached to a health assessment.
type Recommendations struct {
	RiskAssessment     string   `json:"risk_assessment"`
	Recommendations    []string `json:"recommendations"`
	PreventiveMeasures []string `json:"preventive_measures"`
}

// HealthAssessment is the backend's risk evaluation of one record.
type HealthAssessment struct {
	ID               int64           `json:"id"`
	UserID           int64           `json:"user_id"`
	DiabetesRecordID int64           `json:"diabetes_record_id"`
	RiskScore        float64         `json:"risk_score"`
	RiskLevel        RiskLevel       `json:"risk_level"`
	Recommendations  Recommendations `json:"recommendations"`
	CreatedAt        Timestamp       `json:"created_at"`
	UpdatedAt        *Timestamp      `json:"updated_at,omitempty"`
}

// RiskPercent returns the score as a whole percentage.
func (a HealthAssessment) RiskPercent() int {
	return int(a.RiskScore*100 + 0.5)
}

// UploadAttempt records one dataset upload and its processing state.
type UploadAttempt struct {
	ID           int64        `json:"id"`
	Filename     string       `json:"filename"`
	RecordsCount int          `json:"records_count"`
	Status       UploadStatus `json:"status"`
	ErrorMessage *string      `json:"error_message,omitempty"`
	CreatedAt    Timestamp    `json:"created_at"`
	CompletedAt  *Timestamp   `json:"completed_at,omitempty"`
}

// AnalysisResult is the backend's aggregate over the stored records.
type AnalysisResult struct {
	TotalRecords       int      `json:"total_records"`
	PositiveCases      int      `json:"positive_cases"`
	PositiveRate       float64  `json:"positive_rate"`
	AverageGlucose     float64  `json:"average_glucose"`
	AverageBMI         float64  `json:"average_bmi"`
	AverageAge         float64  `json:"average_age"`
	Recommendations    []string `json:"recommendations,omitempty"`
	RiskAssessment     string   `json:"risk_assessment,omitempty"`
	PreventiveMeasures []string `json:"preventive_measures,omitempty"`
}

// AgeGroupInsight is the diabetes rate within one age range.
type AgeGroupInsight struct {
	AgeRange     string  `json:"age_range"`
	Count        int     `json:"count"`
	DiabetesRate float64 `json:"diabetes_rate"`
}

// BMICategoryInsight is the diabetes rate within one BMI category.
type BMICategoryInsight struct {
	Category     string  `json:"category"`
	Count        int     `json:"count"`
	DiabetesRate float64 `json:"diabetes_rate"`
}

// InsightsResult groups diabetes rates by age and BMI.
type InsightsResult struct {
	AgeGroups     []AgeGroupInsight    `json:"age_groups"`
	BMICategories []BMICategoryInsight `json:"bmi_categories"`
	AgeRisk       map[string]float64   `json:"age_risk,omitempty"`
	BMIRisk       map[string]float64   `json:"bmi_risk,omitempty"`
}

// UploadResult is the backend's acknowledgement of an accepted dataset.
type UploadResult struct {
	Message         string `json:"message"`
	RecordsUploaded int    `json:"records_uploaded"`
}

// RecordList is one page of records.
type RecordList struct {
	Total  int            `json:"total"`
	Offset int            `json:"offset"`
	Limit  int            `json:"limit"`
	Data   []HealthRecord `json:"data"`
}

// UnmarshalJSON accepts the paged envelope or a bare array of records.
func (l *RecordList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []HealthRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return err
		}

		*l = RecordList{Total: len(records), Limit: len(records), Data: records}

		return nil
	}

	type plain RecordList

	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}

	*l = RecordList(p)

	return nil
}

// Intake is the outcome of registering a person together with their first
// record.
type Intake struct {
	User         User         `json:"user"`
	Record       HealthRecord `json:"record"`
	ExistingUser bool         `json:"existing_user"`
}

// Timestamp decodes both zoned RFC 3339 times and the naive ISO times the
// backend emits. Naive values are taken as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw == "" {
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}

	return fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(t.Format(time.RFC3339Nano))
}
