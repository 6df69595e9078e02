/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package dashboard

import "errors"

// ErrSuperseded is returned by a load that finished after a newer load for
// the same viewer had started.
var ErrSuperseded = errors.New("dashboard load superseded")
