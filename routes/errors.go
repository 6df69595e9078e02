/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import "errors"

var (
	errInvalidAssessmentID = errors.New("invalid assessment id")
	errMissingUploadFile   = errors.New("missing upload file")
)
