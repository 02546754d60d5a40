// Package catalog defines the mirrored product model and the values that flow
// between the remote sources, the diff engine and the store.
package catalog
