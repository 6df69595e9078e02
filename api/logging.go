/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package api

import "github.com/humaidq/intake/logging"

var logger = logging.Logger(logging.SourceAPI)
