// Copyright (c) 2026 Nijidex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis provides a managed client for the snapshot version pointer.

After a successful export, the new version id is published under a
well-known key so serving instances can cut over to the fresh snapshot
without a restart. The pointer is the only Redis state the engine owns.

Core Responsibilities:

  - Publish: Atomically replace the current snapshot version id.
  - Resolve: Read the version id a serving instance should use.
  - Safety: Manages connection pooling and timeouts automatically.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/nijidex/internal/platform/constants"
)

// Opinionated default timeouts for Redis operations.
const (
	dialTimeout  = 3 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	pingTimeout  = 2 * time.Second
)

// NewClient parses a Redis URL and returns a ready-to-use client.
//
// # Parameters
//   - context: Context for the initial ping.
//   - redisURL: Redis connection URL.
//   - logger: Structured logger for connection events.
func NewClient(context stdctx.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout

	client := redis.NewClient(options)

	// Validate connectivity immediately at startup.
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis client connected", slog.String("addr", options.Addr))

	return client, nil
}

// Ping verifies that the Redis client is healthy.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}

	return nil
}

// PublishVersion replaces the current snapshot pointer with the given version.
//
// The key has no TTL: a published snapshot stays current until the next run
// replaces it.
func PublishVersion(context stdctx.Context, client *redis.Client, version string) error {
	if err := client.Set(context, constants.RedisKeySnapshotCurrent, version, 0).Err(); err != nil {
		return fmt.Errorf("redis: publish snapshot version: %w", err)
	}
	return nil
}

// CurrentVersion resolves the published snapshot version id.
//
// It returns an empty string (not an error) when no snapshot has been
// published yet.
func CurrentVersion(context stdctx.Context, client *redis.Client) (string, error) {
	version, err := client.Get(context, constants.RedisKeySnapshotCurrent).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis: resolve snapshot version: %w", err)
	}
	return version, nil
}
