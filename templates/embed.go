/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package templates

import "embed"

// Templates contains the page templates and their shared partials.
//
//go:embed *.html
var Templates embed.FS
