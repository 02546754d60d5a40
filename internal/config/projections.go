package config

import (
	"github.com/agentstation/catalogmirror"
	"github.com/agentstation/catalogmirror/internal/store"
	"github.com/agentstation/catalogmirror/pkg/logging"
	"github.com/agentstation/catalogmirror/pkg/sources"
)

// Store returns the mirror store configuration.
func (c *Config) Store() store.Config {
	return store.Config{
		Driver:       c.Database.Driver,
		DSN:          c.Database.DSN,
		MaxOpenConns: c.Database.MaxOpenConns,
	}
}

// Sources returns the remote source configuration.
func (c *Config) Sources() sources.Config {
	return sources.Config{
		APIURL:               c.APIURL,
		CategoryEndpoint:     c.CategoryEndpoint,
		ManufacturerEndpoint: c.ManufacturerEndpoint,
		Timeout:              c.RequestTimeout,
		Offline:              c.Offline,
		SnapshotDir:          c.SnapshotDir,
		StoreSnapshots:       c.StoreSnapshots,
	}
}

// Client returns the options for the mirror client.
func (c *Config) Client() []catalogmirror.Option {
	return []catalogmirror.Option{
		catalogmirror.WithCategories(c.Categories...),
		catalogmirror.WithBatchSize(c.BatchSize),
		catalogmirror.WithRetryDelay(c.RetryDelay),
		catalogmirror.WithMaxRetryRounds(c.MaxRetryRounds),
		catalogmirror.WithUpdateInterval(c.UpdateInterval),
	}
}

// Logging returns the logger configuration.
func (c *Config) Logging() *logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Log.Level
	lc.Format = c.Log.Format
	lc.Output = c.Log.Output
	return lc
}
