/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package wizard

import (
	"fmt"
	"strings"
)

// Sex is the subject's sex as chosen on the first step.
type Sex string

const (
	SexFemale Sex = "female"
	SexMale   Sex = "male"
)

// ParseSex reads a form value.
func ParseSex(value string) (Sex, error) {
	switch Sex(strings.ToLower(strings.TrimSpace(value))) {
	case SexFemale:
		return SexFemale, nil
	case SexMale:
		return SexMale, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSex, value)
	}
}

// Subject is the sex-dependent part of the draft. Only a female subject
// carries a pregnancies value.
type Subject interface {
	Sex() Sex
	isSubject()
}

// Female is a subject for whom pregnancies apply.
type Female struct {
	Pregnancies string
}

// Male is a subject with no pregnancies field.
type Male struct{}

func (Female) Sex() Sex { return SexFemale }
func (Male) Sex() Sex   { return SexMale }

func (Female) isSubject() {}
func (Male) isSubject()   {}

// DefaultPregnancies is shown when a subject becomes female.
const DefaultPregnancies = "0"

// SubjectFor returns the subject for sex. A female subject that stays
// female keeps its value. Any other change starts fresh.
func SubjectFor(sex Sex, current Subject) Subject {
	if sex == SexFemale {
		if f, ok := current.(Female); ok {
			return f
		}

		return Female{Pregnancies: DefaultPregnancies}
	}

	return Male{}
}
