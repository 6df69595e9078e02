/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package upload

import "errors"

var (
	ErrTooLarge       = errors.New("file exceeds the 10 MiB upload limit")
	ErrNothingPending = errors.New("no failed upload to retry")
)
