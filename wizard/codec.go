/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package wizard

import (
	"encoding/json"
	"fmt"
)

type draftWire struct {
	Step        Step    `json:"step"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       string  `json:"email"`
	Sex         Sex     `json:"sex"`
	Pregnancies *string `json:"pregnancies,omitempty"`
	Metrics     Metrics `json:"metrics"`
	Key         string  `json:"key"`
	Error       string  `json:"error,omitempty"`
}

// MarshalJSON writes the subject as a "sex" discriminator plus the
// female-only pregnancies field.
func (d Draft) MarshalJSON() ([]byte, error) {
	w := draftWire{
		Step:      d.Step,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Sex:       d.Sex(),
		Metrics:   d.Metrics,
		Key:       d.Key,
		Error:     d.Error,
	}

	if f, ok := d.Subject.(Female); ok {
		w.Pregnancies = &f.Pregnancies
	}

	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Draft) UnmarshalJSON(data []byte) error {
	var w draftWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	if w.Step < 0 || int(w.Step) >= StepCount() {
		return fmt.Errorf("%w: step %d", ErrCorruptDraft, w.Step)
	}

	var subject Subject

	switch w.Sex {
	case SexFemale:
		f := Female{Pregnancies: DefaultPregnancies}
		if w.Pregnancies != nil {
			f.Pregnancies = *w.Pregnancies
		}

		subject = f
	case SexMale, "":
		subject = Male{}
	default:
		return fmt.Errorf("%w: %w: %q", ErrCorruptDraft, ErrUnknownSex, w.Sex)
	}

	*d = Draft{
		Step:      w.Step,
		FirstName: w.FirstName,
		LastName:  w.LastName,
		Email:     w.Email,
		Subject:   subject,
		Metrics:   w.Metrics,
		Key:       w.Key,
		Error:     w.Error,
	}

	return nil
}

// Encode serialises the draft for storage in a session.
func (d *Draft) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// Decode restores a draft written by Encode.
func Decode(data []byte) (*Draft, error) {
	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}

	return &d, nil
}
