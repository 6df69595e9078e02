/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/intake/api"
	"github.com/humaidq/intake/querycache"
)

// apiFlags configure the backend client shared by the server and the CLI
// upload.
func apiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "api-url",
			Value:   api.DefaultBaseURL,
			Sources: cli.EnvVars("API_BASE_URL"),
			Usage:   "base URL of the risk-assessment backend",
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Sources: cli.EnvVars("REDIS_URL"),
			Usage:   "Redis URL for a read cache shared between replicas (in-process when empty)",
		},
		&cli.DurationFlag{
			Name:    "cache-ttl",
			Value:   querycache.DefaultTTL,
			Sources: cli.EnvVars("CACHE_TTL"),
			Usage:   "how long backend reads are cached",
		},
	}
}

// newAPIClient builds the backend client with its read cache. The returned
// func releases the cache.
func newAPIClient(ctx context.Context, cmd *cli.Command) (*api.Client, func(), error) {
	ttl := cmd.Duration("cache-ttl")

	var (
		cache   api.Cache
		release = func() {}
	)

	if redisURL := cmd.String("redis-url"); redisURL != "" {
		rc, err := querycache.NewRedis(ctx, redisURL, ttl)
		if err != nil {
			return nil, nil, err
		}

		cache = rc
		release = func() {
			if err := rc.Close(); err != nil {
				appLogger.Warn("Failed to close Redis cache", "error", err)
			}
		}

		appLogger.Info("Using Redis read cache", "ttl", ttl)
	} else {
		cache = querycache.NewMemory(querycache.DefaultSize, ttl)
	}

	client, err := api.NewClient(cmd.String("api-url"), api.WithCache(cache))
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("failed to create api client: %w", err)
	}

	return client, release, nil
}
