/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package querycache

import "errors"

var ErrRedisURLRequired = errors.New("redis url is required")
