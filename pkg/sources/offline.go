package sources

import (
	"context"

	"github.com/agentstation/catalogmirror/pkg/catalog"
	"github.com/agentstation/catalogmirror/pkg/errors"
)

var _ Source = (*OfflineSource)(nil)

// OfflineSource replays snapshot files instead of calling the API.
type OfflineSource struct {
	snapshots *SnapshotStore
}

// NewOffline returns a source reading from dir.
func NewOffline(dir string) *OfflineSource {
	return &OfflineSource{snapshots: NewSnapshotStore(dir)}
}

// ID returns OfflineID.
func (s *OfflineSource) ID() ID {
	return OfflineID
}

// Category reads <dir>/categories/<name>.json.
func (s *OfflineSource) Category(_ context.Context, name string) (map[string]catalog.Item, error) {
	raw, err := s.read(errors.FetchCategory, name)
	if err != nil {
		return nil, err
	}
	items, err := DecodeCategory(raw)
	if err != nil {
		return nil, errors.NewFetchError(errors.FetchCategory, name, s.snapshots.Path(errors.FetchCategory, name), err)
	}
	return items, nil
}

// Manufacturer reads <dir>/manufacturers/<name>.json.
func (s *OfflineSource) Manufacturer(_ context.Context, name string) (map[string]catalog.Availability, error) {
	raw, err := s.read(errors.FetchManufacturer, name)
	if err != nil {
		return nil, err
	}
	status, err := DecodeManufacturer(raw)
	if err != nil {
		return nil, errors.NewFetchError(errors.FetchManufacturer, name, s.snapshots.Path(errors.FetchManufacturer, name), err)
	}
	return status, nil
}

func (s *OfflineSource) read(kind errors.FetchKind, name string) ([]byte, error) {
	raw, err := s.snapshots.Read(kind, name)
	if err != nil {
		return nil, errors.NewFetchError(kind, name, s.snapshots.Path(kind, name), err)
	}
	return raw, nil
}
