/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"encoding/gob"

	"github.com/flamego/session"
)

// FlashType represents the type of flash message
type FlashType string

const (
	FlashError   FlashType = "error"
	FlashSuccess FlashType = "success"
	FlashWarning FlashType = "warning"
	FlashInfo    FlashType = "info"
)

// FlashMessage is shown once on the page after a redirect.
type FlashMessage struct {
	Type    FlashType
	Message string
}

func init() {
	// Flashes travel through the session store, which gob-encodes values.
	gob.Register(FlashMessage{})
}

const flashSessionKey = "flash"

func setFlash(s session.Session, kind FlashType, message string) {
	s.Set(flashSessionKey, FlashMessage{Type: kind, Message: message})
}

// takeFlash returns and clears the pending flash message.
func takeFlash(s session.Session) (FlashMessage, bool) {
	msg, ok := s.Get(flashSessionKey).(FlashMessage)
	if ok {
		s.Delete(flashSessionKey)
	}

	return msg, ok
}

// SetErrorFlash sets an error flash message in the session
func SetErrorFlash(s session.Session, message string) {
	setFlash(s, FlashError, message)
}

// SetSuccessFlash sets a success flash message in the session
func SetSuccessFlash(s session.Session, message string) {
	setFlash(s, FlashSuccess, message)
}

// SetWarningFlash sets a warning flash message in the session
func SetWarningFlash(s session.Session, message string) {
	setFlash(s, FlashWarning, message)
}

// SetInfoFlash sets an info flash message in the session
func SetInfoFlash(s session.Session, message string) {
	setFlash(s, FlashInfo, message)
}
