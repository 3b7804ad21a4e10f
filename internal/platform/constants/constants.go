// Copyright (c) 2026 Nijidex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts and cross-cutting keys shared between the export
pipeline and the snapshot server.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the snapshot HTTP server.
  - Export Timing: Deadlines for the batch pipeline stages.
  - Redis Keys: Cache taxonomy for the snapshot pointer.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "nijidex"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Export Timing

const (
	// StartupTimeout caps dependency wiring (DB connect, Redis connect).
	StartupTimeout = 30 * time.Second

	// BulkReadTimeout caps the initial bulk read from the source store.
	// The works query is a single coarse-grained scan; anything slower
	// indicates a connectivity or load problem, not a bigger catalog.
	BulkReadTimeout = 5 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID = "X-Request-ID"
)

// # Redis Keys (Cache Taxonomy)

const (
	// RedisKeySnapshotCurrent holds the version id of the published snapshot.
	RedisKeySnapshotCurrent = "nijidex:snapshot:current"
)
