/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package wizard

import (
	"math"
	"strconv"
	"strings"

	"github.com/humaidq/intake/api"
)

// FieldError describes a value the form inputs would not have accepted.
type FieldError struct {
	Field  string
	Label  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Label + " " + e.Reason
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidField
}

// Payload builds the API payloads from the current draft. Pregnancies come
// from the current subject only, so a male subject always sends null.
//
// Numeric text follows the form inputs: empty is zero, values must not be
// negative and counts must be whole numbers. Ranges beyond that are left to
// the backend.
func (d *Draft) Payload() (api.UserCreate, api.RecordCreate, error) {
	var (
		user   api.UserCreate
		record api.RecordCreate
		err    error
	)

	user.Name = strings.TrimSpace(d.FirstName)
	user.Surname = strings.TrimSpace(d.LastName)
	user.Email = strings.TrimSpace(d.Email)

	for _, req := range []struct {
		field, label, value string
	}{
		{"first_name", "First name", user.Name},
		{"last_name", "Last name", user.Surname},
		{"email", "Email", user.Email},
	} {
		if req.value == "" {
			return user, record, &FieldError{Field: req.field, Label: req.label, Reason: "is required"}
		}
	}

	if f, ok := d.Subject.(Female); ok {
		n, err := parseWhole("pregnancies", "Pregnancies", f.Pregnancies)
		if err != nil {
			return user, record, err
		}

		record.Pregnancies = &n
	}

	m := d.Metrics

	if record.Glucose, err = parseWhole("glucose", "Glucose", m.Glucose); err != nil {
		return user, record, err
	}

	if record.BloodPressure, err = parseWhole("blood_pressure", "Blood pressure", m.BloodPressure); err != nil {
		return user, record, err
	}

	if record.SkinThickness, err = parseWhole("skin_thickness", "Skin thickness", m.SkinThickness); err != nil {
		return user, record, err
	}

	if record.Insulin, err = parseWhole("insulin", "Insulin", m.Insulin); err != nil {
		return user, record, err
	}

	if record.BMI, err = parseDecimal("bmi", "BMI", m.BMI); err != nil {
		return user, record, err
	}

	if record.DiabetesPedigree, err = parseDecimal("diabetes_pedigree", "Diabetes pedigree", m.DiabetesPedigree); err != nil {
		return user, record, err
	}

	if record.Age, err = parseWhole("age", "Age", m.Age); err != nil {
		return user, record, err
	}

	return user, record, nil
}

func parseDecimal(field, label, text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &FieldError{Field: field, Label: label, Reason: "must be a number"}
	}

	if v < 0 {
		return 0, &FieldError{Field: field, Label: label, Reason: "must not be negative"}
	}

	return v, nil
}

func parseWhole(field, label, text string) (int, error) {
	v, err := parseDecimal(field, label, text)
	if err != nil {
		return 0, err
	}

	if v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, &FieldError{Field: field, Label: label, Reason: "must be a whole number"}
	}

	return int(v), nil
}
