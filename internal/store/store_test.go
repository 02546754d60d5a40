package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogmirror/internal/store"
	"github.com/agentstation/catalogmirror/pkg/batch"
	"github.com/agentstation/catalogmirror/pkg/catalog"
	pkgerrors "github.com/agentstation/catalogmirror/pkg/errors"
	"github.com/agentstation/catalogmirror/pkg/logging"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), store.Config{
		Driver: store.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "products.db"),
		Logger: logging.NewNopLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, s *store.Store, products ...catalog.Product) {
	t.Helper()
	require.NoError(t, s.Insert(context.Background(), products))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := store.Open(context.Background(), store.Config{Driver: "mysql"})
	require.Error(t, err)
	var cfgErr *pkgerrors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestProductsByCategoryOrderedByName(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seed(t, s,
		catalog.Product{ID: "b1", Name: "Zulu", Category: "boots", Manufacturer: "m"},
		catalog.Product{ID: "b2", Name: "Alpha", Category: "boots", Manufacturer: "m"},
		catalog.Product{ID: "g1", Name: "Mid", Category: "gloves", Manufacturer: "n"},
	)

	products, err := s.ProductsByCategory(ctx, "boots")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Alpha", products[0].Name)
	assert.Equal(t, "Zulu", products[1].Name)
	assert.Equal(t, catalog.AvailabilityUnknown, products[0].Available)

	empty, err := s.ProductsByCategory(ctx, "hats")
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Equal(t, store.DriverSQLite, s.Driver())
}

func TestIDQueries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seed(t, s,
		catalog.Product{ID: "b1", Name: "x", Category: "boots", Manufacturer: "okkau"},
		catalog.Product{ID: "b2", Name: "y", Category: "boots", Manufacturer: "abiplos"},
		catalog.Product{ID: "g1", Name: "z", Category: "gloves", Manufacturer: "okkau"},
	)

	ids, err := s.IDsByCategory(ctx, "boots")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b1", "b2"}, ids)

	all, err := s.AllIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	existing, err := s.ExistingIDs(ctx, []string{"g1", "nope"})
	require.NoError(t, err)
	assert.Equal(t, []string{"g1"}, existing)

	manufacturers, err := s.Manufacturers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"abiplos", "okkau"}, manufacturers)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestUpdateColumns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seed(t, s,
		catalog.Product{ID: "a", Name: "old-a", Price: 1, Colors: "red", Category: "c", Manufacturer: "m"},
		catalog.Product{ID: "b", Name: "old-b", Price: 2, Colors: "blue", Category: "c", Manufacturer: "m"},
		catalog.Product{ID: "c", Name: "old-c", Price: 3, Colors: "green", Category: "c", Manufacturer: "m"},
	)

	n, err := s.UpdateColumns(ctx, []string{"a", "b"}, batch.Columns{
		catalog.ColumnName:  {"a": "new-a", "b": "new-b"},
		catalog.ColumnPrice: {"a": 10},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	a, err := s.Product(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "new-a", a.Name)
	assert.Equal(t, 10, a.Price)
	assert.Equal(t, "red", a.Colors)

	b, err := s.Product(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "new-b", b.Name)
	assert.Equal(t, 2, b.Price, "ids without a value keep their column")

	c, err := s.Product(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "old-c", c.Name)

	_, err = s.UpdateColumns(ctx, []string{"a"}, batch.Columns{
		catalog.ColumnAvailable: {"a": int(catalog.AvailabilityLessThan10)},
	})
	require.NoError(t, err)
	a, err = s.Product(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, catalog.AvailabilityLessThan10, a.Available)
}

func TestUpdateColumnsRejectsUnknownColumn(t *testing.T) {
	s := openTestStore(t)
	_, err := s.UpdateColumns(context.Background(), []string{"a"}, batch.Columns{
		"id; DROP TABLE products": {"a": "x"},
	})
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seed(t, s,
		catalog.Product{ID: "a", Name: "a", Category: "c", Manufacturer: "m"},
		catalog.Product{ID: "b", Name: "b", Category: "c", Manufacturer: "m"},
	)

	n, err := s.Delete(ctx, []string{"a", "missing"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.Product(ctx, "a")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestInsertDuplicateIsStoreError(t *testing.T) {
	s := openTestStore(t)
	seed(t, s, catalog.Product{ID: "a", Name: "a", Category: "c", Manufacturer: "m"})

	err := s.Insert(context.Background(), []catalog.Product{{ID: "a", Name: "dup", Category: "d", Manufacturer: "m"}})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsStore(err))
}

func TestMirrorPersistsAcrossReopen(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "products.db")
	ctx := context.Background()

	first, err := store.Open(ctx, store.Config{DSN: dsn, Logger: logging.NewNopLogger()})
	require.NoError(t, err)
	require.NoError(t, first.Insert(ctx, []catalog.Product{{ID: "a", Name: "a", Category: "c", Manufacturer: "m"}}))
	require.NoError(t, first.Close())

	second, err := store.Open(ctx, store.Config{DSN: dsn, Logger: logging.NewNopLogger()})
	require.NoError(t, err)
	defer second.Close()

	ids, err := second.AllIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
}
