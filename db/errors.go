/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

package db

import "errors"

var (
	ErrDatabaseURLNotSet                = errors.New("database url is not set")
	ErrDatabaseNameNotSpecified         = errors.New("database name not specified in connection string")
	ErrDatabaseConnectionNotInitialized = errors.New("database connection not initialized")
	ErrInvalidSessionConfig             = errors.New("invalid PostgresSessionConfig")
)
