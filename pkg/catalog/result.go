package catalog

// UpdateResult is the outcome of syncing one category or manufacturer.
type UpdateResult int

const (
	// UpdateFailure means the remote fetch failed; the name is retried.
	UpdateFailure UpdateResult = iota
	// UpdateChanged means rows were refreshed but membership is unchanged.
	UpdateChanged
	// UpdateAddedRemoved means products were added to or removed from the mirror.
	UpdateAddedRemoved
)

// String returns the result name.
func (r UpdateResult) String() string {
	switch r {
	case UpdateChanged:
		return "CHANGED"
	case UpdateAddedRemoved:
		return "ADDED_REMOVED"
	default:
		return "FAILURE"
	}
}

// MarshalText encodes the result by name.
func (r UpdateResult) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
