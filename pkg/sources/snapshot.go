package sources

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/agentstation/catalogmirror/pkg/constants"
	"github.com/agentstation/catalogmirror/pkg/errors"
)

// SnapshotStore keeps the last raw payload per category and manufacturer:
//
//	<root>/categories/<name>.json
//	<root>/manufacturers/<name>.json
type SnapshotStore struct {
	root string
}

// NewSnapshotStore returns a store rooted at dir.
func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{root: dir}
}

// Path returns the snapshot file for a resource.
func (s *SnapshotStore) Path(kind errors.FetchKind, name string) string {
	return filepath.Join(s.root, subdir(kind), filepath.Base(name)+".json")
}

// Read returns the snapshot bytes. A missing or empty file is a NotFoundError.
func (s *SnapshotStore) Read(kind errors.FetchKind, name string) ([]byte, error) {
	path := s.Path(kind, name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.NewNotFoundError("snapshot", path)
	}
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewNotFoundError("snapshot", path)
	}
	return data, nil
}

// Write replaces the snapshot atomically with an indented copy of raw.
func (s *SnapshotStore) Write(kind errors.FetchKind, name string, raw []byte) error {
	path := s.Path(kind, name)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "    "); err != nil {
		return errors.WrapParse("json", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot_*.json")
	if err != nil {
		return errors.WrapIO("create", dir, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(pretty.Bytes()); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.WrapIO("write", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.WrapIO("close", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, constants.FilePermissions); err != nil {
		cleanup()
		return errors.WrapIO("chmod", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return errors.WrapIO("rename", path, err)
	}
	return nil
}

func subdir(kind errors.FetchKind) string {
	if kind == errors.FetchManufacturer {
		return "manufacturers"
	}
	return "categories"
}
