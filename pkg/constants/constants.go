// Package constants provides shared constants used throughout the catalog mirror.
// This includes timeouts, limits, file permissions, and column widths that
// should be consistent across the store, sources, and CLI.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultRequestTimeout bounds a single category or manufacturer fetch
	DefaultRequestTimeout = 10 * time.Second

	// DefaultRetryDelay is the pause between retry rounds for failed fetches
	DefaultRetryDelay = 5 * time.Second

	// DefaultUpdateInterval is the target period between reconciliation cycle starts
	DefaultUpdateInterval = 5 * time.Minute

	// SQLiteBusyTimeout is how long SQLite waits on a locked database
	SQLiteBusyTimeout = 5 * time.Second

	// ShutdownTimeout bounds the graceful stop of the metrics listener
	ShutdownTimeout = 5 * time.Second

	// CommandTimeout is the default timeout for one-shot CLI commands
	CommandTimeout = 10 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define batch sizes and channel capacities
const (
	// DefaultBatchSize is the maximum number of ids touched by one store statement
	DefaultBatchSize = 500

	// ChannelBufferSize is the default buffer size for event channels
	ChannelBufferSize = 100

	// MaxResponseBytes caps how much of a remote payload is read
	MaxResponseBytes = 64 << 20
)

// Column widths of the products table
const (
	IDLength           = 48
	NameLength         = 128
	ColorsLength       = 512
	CategoryLength     = 128
	ManufacturerLength = 128
)

// Defaults for the remote source
const (
	DefaultAPIURL               = "https://bad-api-assignment.reaktor.com/"
	DefaultCategoryEndpoint     = "v2/products/"
	DefaultManufacturerEndpoint = "v2/availability/"
	DefaultSnapshotDir          = "offline_resources"
	DefaultDatabaseFile         = "products.db"
)

// DefaultCategories is the ordered category list mirrored when none is configured.
var DefaultCategories = []string{"gloves", "facemasks", "beanies"}
