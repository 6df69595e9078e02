/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package wizard

import "errors"

var (
	ErrInvalidTransition = errors.New("invalid wizard transition")
	ErrUnknownEvent      = errors.New("unknown wizard event")
	ErrUnknownSex        = errors.New("unknown sex")
	ErrInvalidField      = errors.New("invalid field")
	ErrCorruptDraft      = errors.New("corrupt draft")
)
