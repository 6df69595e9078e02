/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"

	"github.com/humaidq/intake/api"
	"github.com/humaidq/intake/wizard"
)

const (
	draftSessionKey      = "intake_draft"
	lastIntakeSessionKey = "last_intake"
)

// StepView is one entry of the progress indicator.
type StepView struct {
	Number  int
	Title   string
	Current bool
	Done    bool
}

func stepViews(current wizard.Step) []StepView {
	titles := wizard.Titles()
	views := make([]StepView, 0, len(titles))

	for i, title := range titles {
		views = append(views, StepView{
			Number:  i + 1,
			Title:   title,
			Current: i == int(current),
			Done:    i < int(current),
		})
	}

	return views
}

// loadDraft returns the session's draft, or a new one when there is none or
// it cannot be decoded.
func loadDraft(s session.Session) *wizard.Draft {
	raw, ok := s.Get(draftSessionKey).([]byte)
	if !ok || len(raw) == 0 {
		return wizard.NewDraft()
	}

	d, err := wizard.Decode(raw)
	if err != nil {
		logger.Warn("Discarding unreadable intake draft", "error", err)
		return wizard.NewDraft()
	}

	return d
}

func saveDraft(s session.Session, d *wizard.Draft) {
	raw, err := d.Encode()
	if err != nil {
		logger.Error("Failed to encode intake draft", "error", err)
		return
	}

	s.Set(draftSessionKey, raw)
}

// readStepFields copies the posted fields of the draft's current step into
// it. Fields of other steps are left alone.
func readStepFields(form url.Values, d *wizard.Draft) {
	switch d.Step {
	case wizard.StepPersonalInfo:
		sex, err := wizard.ParseSex(form.Get("sex"))
		if err != nil {
			sex = d.Sex()
		}

		d.SetPersonal(
			strings.TrimSpace(form.Get("first_name")),
			strings.TrimSpace(form.Get("last_name")),
			strings.TrimSpace(form.Get("email")),
			sex,
		)
	case wizard.StepHealthInfo:
		d.SetHealth(strings.TrimSpace(form.Get("pregnancies")), wizard.Metrics{
			Glucose:          strings.TrimSpace(form.Get("glucose")),
			BloodPressure:    strings.TrimSpace(form.Get("blood_pressure")),
			SkinThickness:    strings.TrimSpace(form.Get("skin_thickness")),
			Insulin:          strings.TrimSpace(form.Get("insulin")),
			BMI:              strings.TrimSpace(form.Get("bmi")),
			DiabetesPedigree: strings.TrimSpace(form.Get("diabetes_pedigree")),
			Age:              strings.TrimSpace(form.Get("age")),
		})
	}
}

// IntakeForm renders the current step of the intake form.
func IntakeForm(t template.Template, data template.Data, s session.Session) {
	d := loadDraft(s)

	data["IsIntake"] = true
	data["Draft"] = d
	data["Steps"] = stepViews(d.Step)
	data["IsPersonalStep"] = d.Step == wizard.StepPersonalInfo
	data["IsHealthStep"] = d.Step == wizard.StepHealthInfo

	t.HTML(http.StatusOK, "intake")
}

// IntakeNext saves the current step and moves forward. Field values are
// not checked until submission.
func IntakeNext(c flamego.Context, s session.Session) {
	moveIntake(c, s, wizard.EventNext)
}

// IntakeBack saves the current step and moves back.
func IntakeBack(c flamego.Context, s session.Session) {
	moveIntake(c, s, wizard.EventBack)
}

func moveIntake(c flamego.Context, s session.Session, ev wizard.Event) {
	if err := c.Request().ParseForm(); err != nil {
		logger.Warn("Failed to parse intake form", "error", err)
		SetErrorFlash(s, "Failed to parse form")
		c.Redirect("/", http.StatusSeeOther)

		return
	}

	d := loadDraft(s)
	readStepFields(c.Request().Form, d)

	if err := d.Apply(ev); err != nil {
		logger.Debug("Rejected intake transition", "event", ev, "step", d.Step.Title(), "error", err)
	}

	saveDraft(s, d)
	c.Redirect("/", http.StatusSeeOther)
}

// IntakeSubmit sends the completed form. On success the draft is cleared and
// the user lands on the confirmation page; on failure the form stays on the
// last step with the error shown above it.
func IntakeSubmit(c flamego.Context, s session.Session, backend Backend) {
	if err := c.Request().ParseForm(); err != nil {
		logger.Warn("Failed to parse intake form", "error", err)
		SetErrorFlash(s, "Failed to parse form")
		c.Redirect("/", http.StatusSeeOther)

		return
	}

	d := loadDraft(s)
	readStepFields(c.Request().Form, d)

	intake, err := wizard.Submit(c.Request().Context(), backend, d)
	if err != nil {
		if errors.Is(err, wizard.ErrInvalidTransition) {
			SetErrorFlash(s, "Please complete every step before submitting")
		} else {
			logger.Warn("Intake submission failed", "kind", api.KindOf(err), "error", err)
		}

		saveDraft(s, d)
		c.Redirect("/", http.StatusSeeOther)

		return
	}

	raw, err := json.Marshal(intake)
	if err != nil {
		logger.Error("Failed to encode intake result", "error", err)
	} else {
		s.Set(lastIntakeSessionKey, raw)
	}

	s.Delete(draftSessionKey)

	logger.Info("Intake submitted", "user_id", intake.User.ID, "record_id", intake.Record.ID, "existing_user", intake.ExistingUser)

	if intake.ExistingUser {
		SetInfoFlash(s, "Welcome back, "+intake.User.FullName()+". Your new health record has been added.")
	} else {
		SetSuccessFlash(s, "Thank you, your information has been submitted.")
	}

	c.Redirect("/confirmation", http.StatusSeeOther)
}

// IntakeReset discards the draft and starts over.
func IntakeReset(c flamego.Context, s session.Session) {
	s.Delete(draftSessionKey)
	c.Redirect("/", http.StatusSeeOther)
}

// Confirmation shows the last successful intake of this session.
func Confirmation(c flamego.Context, t template.Template, data template.Data, s session.Session) {
	raw, ok := s.Get(lastIntakeSessionKey).([]byte)
	if !ok {
		c.Redirect("/", http.StatusSeeOther)
		return
	}

	var intake api.Intake
	if err := json.Unmarshal(raw, &intake); err != nil {
		logger.Warn("Discarding unreadable intake result", "error", err)
		s.Delete(lastIntakeSessionKey)
		c.Redirect("/", http.StatusSeeOther)

		return
	}

	data["IsIntake"] = true
	data["Intake"] = intake

	t.HTML(http.StatusOK, "confirmation")
}
