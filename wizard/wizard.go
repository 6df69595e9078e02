/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

// Package wizard holds the multi-step intake form as an explicit state
// machine over a draft. The draft keeps every value as entered text and is
// only parsed into an API payload at submission time.
package wizard

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/humaidq/intake/api"
)

// Step is a position in the form.
type Step int

const (
	StepPersonalInfo Step = iota
	StepHealthInfo
)

var stepTitles = []string{
	StepPersonalInfo: "Personal Information",
	StepHealthInfo:   "Health Information",
}

// StepCount is the number of steps in the form.
func StepCount() int {
	return len(stepTitles)
}

// Titles returns the step titles in order.
func Titles() []string {
	out := make([]string, len(stepTitles))
	copy(out, stepTitles)

	return out
}

// Title returns the display title of s.
func (s Step) Title() string {
	if s < 0 || int(s) >= len(stepTitles) {
		return ""
	}

	return stepTitles[s]
}

// Number is the 1-based position of s.
func (s Step) Number() int {
	return int(s) + 1
}

// IsFirst reports whether s is the first step.
func (s Step) IsFirst() bool {
	return s == 0
}

// IsLast reports whether s is the final step.
func (s Step) IsLast() bool {
	return int(s) == len(stepTitles)-1
}

// Event drives a transition.
type Event string

const (
	EventNext   Event = "next"
	EventBack   Event = "back"
	EventSubmit Event = "submit"
)

// next returns the step that follows ev from s. Next never looks at field
// values. Submit is only accepted on the last step and leaves the step
// unchanged.
func next(s Step, ev Event) (Step, error) {
	switch ev {
	case EventNext:
		if s.IsLast() {
			return s, fmt.Errorf("%w: %s from %q", ErrInvalidTransition, ev, s.Title())
		}

		return s + 1, nil
	case EventBack:
		if s.IsFirst() {
			return s, fmt.Errorf("%w: %s from %q", ErrInvalidTransition, ev, s.Title())
		}

		return s - 1, nil
	case EventSubmit:
		if !s.IsLast() {
			return s, fmt.Errorf("%w: %s from %q", ErrInvalidTransition, ev, s.Title())
		}

		return s, nil
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownEvent, ev)
	}
}

// Metrics are the clinical measurements exactly as typed.
type Metrics struct {
	Glucose          string `json:"glucose"`
	BloodPressure    string `json:"blood_pressure"`
	SkinThickness    string `json:"skin_thickness"`
	Insulin          string `json:"insulin"`
	BMI              string `json:"bmi"`
	DiabetesPedigree string `json:"diabetes_pedigree"`
	Age              string `json:"age"`
}

// Draft is the in-progress form.
type Draft struct {
	Step      Step
	FirstName string
	LastName  string
	Email     string
	Subject   Subject
	Metrics   Metrics

	// Key identifies this submission to the backend across retries.
	Key string
	// Error is the message of the last failed submission.
	Error string
}

// NewDraft returns an empty draft on the first step.
func NewDraft() *Draft {
	return &Draft{
		Step:    StepPersonalInfo,
		Subject: Male{},
		Key:     uuid.NewString(),
	}
}

// Apply performs the transition for ev.
func (d *Draft) Apply(ev Event) error {
	to, err := next(d.Step, ev)
	if err != nil {
		return err
	}

	if to != d.Step {
		d.Error = ""
	}

	d.Step = to

	return nil
}

// SetPersonal records the first step's fields. Changing sex replaces the
// subject, which discards any pregnancies value held for a female subject.
func (d *Draft) SetPersonal(firstName, lastName, email string, sex Sex) {
	d.FirstName = firstName
	d.LastName = lastName
	d.Email = email
	d.Subject = SubjectFor(sex, d.Subject)
}

// SetHealth records the second step's fields. The pregnancies value is kept
// only while the subject is female.
func (d *Draft) SetHealth(pregnancies string, m Metrics) {
	d.Metrics = m

	if f, ok := d.Subject.(Female); ok {
		f.Pregnancies = pregnancies
		d.Subject = f
	}
}

// Sex returns the sex of the current subject.
func (d *Draft) Sex() Sex {
	if d.Subject == nil {
		return SexMale
	}

	return d.Subject.Sex()
}

// IsFemale reports whether the pregnancies field applies.
func (d *Draft) IsFemale() bool {
	return d.Sex() == SexFemale
}

// Pregnancies returns the pregnancies text for a female subject.
func (d *Draft) Pregnancies() string {
	if f, ok := d.Subject.(Female); ok {
		return f.Pregnancies
	}

	return ""
}

// Submitter sends a completed intake to the backend.
type Submitter interface {
	CreateInitialUserWithRecord(ctx context.Context, user api.UserCreate, record api.RecordCreate, opts ...api.CallOption) (*api.Intake, error)
}

// Submit parses the draft and sends it. On failure the draft stays on the
// last step with its data and Error set.
func Submit(ctx context.Context, s Submitter, d *Draft) (*api.Intake, error) {
	if err := d.Apply(EventSubmit); err != nil {
		return nil, err
	}

	user, record, err := d.Payload()
	if err != nil {
		d.Error = err.Error()
		return nil, err
	}

	if d.Key == "" {
		d.Key = uuid.NewString()
	}

	intake, err := s.CreateInitialUserWithRecord(ctx, user, record, api.IdempotencyKey(d.Key))
	if err != nil {
		d.Error = api.Message(err)
		return nil, err
	}

	d.Error = ""

	return intake, nil
}
