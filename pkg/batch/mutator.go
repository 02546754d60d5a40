package batch

import (
	"context"

	"github.com/agentstation/catalogmirror/pkg/catalog"
	"github.com/agentstation/catalogmirror/pkg/constants"
	"github.com/agentstation/catalogmirror/pkg/errors"
	"github.com/agentstation/catalogmirror/pkg/logging"
)

// Columns maps a column name to per-id values.
type Columns map[string]map[string]any

// Writer is the store contract the mutator drives. Each call is one committed statement.
type Writer interface {
	UpdateColumns(ctx context.Context, ids []string, columns Columns) (int64, error)
	Insert(ctx context.Context, products []catalog.Product) error
	Delete(ctx context.Context, ids []string) (int64, error)
}

// Stats counts rows touched by a mutator call.
type Stats struct {
	Inserted int64
	Updated  int64
	Deleted  int64
	Chunks   int
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Inserted += other.Inserted
	s.Updated += other.Updated
	s.Deleted += other.Deleted
	s.Chunks += other.Chunks
}

// Mutator chunks inserts, field updates and deletions.
type Mutator struct {
	writer Writer
	size   int
}

// NewMutator returns a Mutator writing at most size ids per statement.
func NewMutator(writer Writer, size int) *Mutator {
	if size <= 0 {
		size = constants.DefaultBatchSize
	}
	return &Mutator{writer: writer, size: size}
}

// Size returns the chunk size.
func (m *Mutator) Size() int {
	return m.size
}

// ApplyFieldUpdates rewrites the listed columns for ids, one statement per chunk.
// The availability column cannot be combined with category-sourced columns.
func (m *Mutator) ApplyFieldUpdates(ctx context.Context, ids []string, columns Columns) (Stats, error) {
	var stats Stats
	if len(ids) == 0 || len(columns) == 0 {
		return stats, nil
	}
	if _, ok := columns[catalog.ColumnAvailable]; ok && len(columns) > 1 {
		return stats, errors.NewValidationError("columns", len(columns), "available cannot be updated together with other columns")
	}

	chunks := Split(ids, m.size)
	for i, chunk := range chunks {
		n, err := m.writer.UpdateColumns(ctx, chunk, columns.restrict(chunk))
		if err != nil {
			return stats, errors.NewBatchError("update", i, len(chunks), err)
		}
		stats.Updated += n
		stats.Chunks++
	}
	logging.FromContext(ctx).Debug().
		Int("ids", len(ids)).
		Int("chunks", len(chunks)).
		Int64("rows", stats.Updated).
		Msg("Applied field updates")
	return stats, nil
}

// ApplyInsertions creates rows in category for the given items.
func (m *Mutator) ApplyInsertions(ctx context.Context, category string, items []catalog.Item) (Stats, error) {
	var stats Stats
	chunks := Split(items, m.size)
	for i, chunk := range chunks {
		products := make([]catalog.Product, len(chunk))
		for j, item := range chunk {
			products[j] = item.Product(category)
		}
		if err := m.writer.Insert(ctx, products); err != nil {
			return stats, errors.NewBatchError("insert", i, len(chunks), err)
		}
		stats.Inserted += int64(len(products))
		stats.Chunks++
	}
	return stats, nil
}

// ApplyDeletions removes rows by id.
func (m *Mutator) ApplyDeletions(ctx context.Context, ids []string) (Stats, error) {
	var stats Stats
	chunks := Split(ids, m.size)
	for i, chunk := range chunks {
		n, err := m.writer.Delete(ctx, chunk)
		if err != nil {
			return stats, errors.NewBatchError("delete", i, len(chunks), err)
		}
		stats.Deleted += n
		stats.Chunks++
	}
	return stats, nil
}

// restrict keeps only the values for ids in chunk.
func (c Columns) restrict(chunk []string) Columns {
	out := make(Columns, len(c))
	for column, values := range c {
		sub := make(map[string]any, len(chunk))
		for _, id := range chunk {
			if v, ok := values[id]; ok {
				sub[id] = v
			}
		}
		out[column] = sub
	}
	return out
}

// ItemColumns builds the category-sourced column map for ids.
func ItemColumns(ids []string, items map[string]catalog.Item) Columns {
	cols := make(Columns, len(catalog.ItemColumns))
	for _, column := range catalog.ItemColumns {
		values := make(map[string]any, len(ids))
		for _, id := range ids {
			item, ok := items[id]
			if !ok {
				continue
			}
			v, _ := item.Column(column)
			values[id] = v
		}
		cols[column] = values
	}
	return cols
}

// AvailabilityColumns builds the availability column map for ids.
func AvailabilityColumns(ids []string, status map[string]catalog.Availability) Columns {
	values := make(map[string]any, len(ids))
	for _, id := range ids {
		if a, ok := status[id]; ok {
			values[id] = int(a)
		}
	}
	return Columns{catalog.ColumnAvailable: values}
}
