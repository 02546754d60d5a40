// Package sources fetches category listings and manufacturer availability,
// either live from the catalog API or from snapshot files on disk.
//
// Every expected failure (timeout, non-200 response, malformed body, missing
// snapshot) is returned as an error matching errors.ErrFetchFailed; callers
// retry those and never see a panic.
//
// Example usage:
//
//	src, err := sources.New(sources.Config{
//	    APIURL:  "https://bad-api-assignment.reaktor.com/",
//	    Timeout: 10 * time.Second,
//	})
//	items, err := src.Category(ctx, "gloves")
package sources

import (
	"context"
	"time"

	"github.com/agentstation/catalogmirror/pkg/catalog"
	"github.com/agentstation/catalogmirror/pkg/constants"
	"github.com/agentstation/catalogmirror/pkg/errors"
)

// Source is the remote source contract used by the reconciler.
type Source interface {
	// ID identifies the source kind.
	ID() ID

	// Category returns the category's items keyed by lower-cased id.
	Category(ctx context.Context, name string) (map[string]catalog.Item, error)

	// Manufacturer returns availability keyed by lower-cased product id.
	Manufacturer(ctx context.Context, name string) (map[string]catalog.Availability, error)
}

// ID represents the identifier of a source kind.
type ID string

// String returns the string representation of a source id.
func (id ID) String() string {
	return string(id)
}

// Source kinds.
const (
	LiveID    ID = "live"
	OfflineID ID = "offline"
)

// Config selects and tunes a source. Offline is a static switch.
type Config struct {
	APIURL               string
	CategoryEndpoint     string
	ManufacturerEndpoint string
	Timeout              time.Duration

	Offline     bool
	SnapshotDir string

	// StoreSnapshots writes every successful live payload to SnapshotDir.
	StoreSnapshots bool

	// UserAgent is sent with live requests when set.
	UserAgent string
}

// DefaultConfig returns a live configuration against the default API.
func DefaultConfig() Config {
	return Config{
		APIURL:               constants.DefaultAPIURL,
		CategoryEndpoint:     constants.DefaultCategoryEndpoint,
		ManufacturerEndpoint: constants.DefaultManufacturerEndpoint,
		Timeout:              constants.DefaultRequestTimeout,
		SnapshotDir:          constants.DefaultSnapshotDir,
	}
}

// New builds the live or offline source for cfg.
func New(cfg Config) (Source, error) {
	if cfg.SnapshotDir == "" {
		cfg.SnapshotDir = constants.DefaultSnapshotDir
	}
	if cfg.Offline {
		return NewOffline(cfg.SnapshotDir), nil
	}
	if cfg.APIURL == "" {
		return nil, errors.NewValidationError("api_url", cfg.APIURL, "required in live mode")
	}
	return NewHTTP(cfg)
}
