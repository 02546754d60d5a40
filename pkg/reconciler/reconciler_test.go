package reconciler_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogmirror/internal/store"
	"github.com/agentstation/catalogmirror/pkg/catalog"
	pkgerrors "github.com/agentstation/catalogmirror/pkg/errors"
	"github.com/agentstation/catalogmirror/pkg/logging"
	"github.com/agentstation/catalogmirror/pkg/reconciler"
	"github.com/agentstation/catalogmirror/pkg/sources"
)

// fakeSource serves in-memory feeds and fails a name a scripted number of times.
type fakeSource struct {
	mu            sync.Mutex
	categories    map[string]map[string]catalog.Item
	manufacturers map[string]map[string]catalog.Availability
	failures      map[string]int
	calls         map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		categories:    map[string]map[string]catalog.Item{},
		manufacturers: map[string]map[string]catalog.Availability{},
		failures:      map[string]int{},
		calls:         map[string]int{},
	}
}

func (f *fakeSource) ID() sources.ID { return "fake" }

func (f *fakeSource) failing(key string) error {
	f.calls[key]++
	if f.failures[key] > 0 {
		f.failures[key]--
		return pkgerrors.NewFetchError(pkgerrors.FetchCategory, key, "", pkgerrors.New("scripted failure"))
	}
	return nil
}

func (f *fakeSource) Category(_ context.Context, name string) (map[string]catalog.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failing("category/" + name); err != nil {
		return nil, err
	}
	items := make(map[string]catalog.Item, len(f.categories[name]))
	for id, item := range f.categories[name] {
		items[id] = item
	}
	return items, nil
}

func (f *fakeSource) Manufacturer(_ context.Context, name string) (map[string]catalog.Availability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failing("manufacturer/" + name); err != nil {
		return nil, err
	}
	status := make(map[string]catalog.Availability, len(f.manufacturers[name]))
	for id, a := range f.manufacturers[name] {
		status[id] = a
	}
	return status, nil
}

func (f *fakeSource) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

// countingSleeper records requested delays without sleeping.
type countingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *countingSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return nil
}

func (s *countingSleeper) total() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum time.Duration
	for _, d := range s.delays {
		sum += d
	}
	return sum
}

func openStore(t *testing.T) *store.Store {
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

func bootsSource() *fakeSource {
	src := newFakeSource()
	src.categories["boots"] = map[string]catalog.Item{
		"p1": catalog.NewItem("P1", "ILLEAKOL STAR", []string{"black"}, 51, "Abiplos"),
		"p3": catalog.NewItem("p3", "NYHEM TREND", []string{"white", "grey"}, 12, "okkau"),
	}
	src.manufacturers["abiplos"] = map[string]catalog.Availability{
		"p1":    catalog.AvailabilityLessThan10,
		"ghost": catalog.AvailabilityInStock,
	}
	src.manufacturers["okkau"] = map[string]catalog.Availability{
		"p3": catalog.AvailabilityOutOfStock,
	}
	return src
}

func newReconciler(t *testing.T, src sources.Source, s reconciler.Store, opts ...reconciler.Option) (reconciler.Reconciler, *countingSleeper) {
	t.Helper()
	sleeper := &countingSleeper{}
	opts = append([]reconciler.Option{
		reconciler.WithCategories("boots"),
		reconciler.WithRetryDelay(5 * time.Second),
		reconciler.WithSleeper(sleeper.Sleep),
	}, opts...)
	r, err := reconciler.New(src, s, opts...)
	require.NoError(t, err)
	return r, sleeper
}

func TestNewValidation(t *testing.T) {
	_, err := reconciler.New(nil, openStore(t))
	assert.True(t, pkgerrors.IsValidationError(err))

	_, err = reconciler.New(newFakeSource(), nil)
	assert.True(t, pkgerrors.IsValidationError(err))

	_, err = reconciler.New(newFakeSource(), openStore(t), reconciler.WithBatchSize(0))
	assert.True(t, pkgerrors.IsValidationError(err))

	_, err = reconciler.New(newFakeSource(), openStore(t), reconciler.WithCategories())
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestCycleBootsEndToEnd(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	r, sleeper := newReconciler(t, bootsSource(), s)

	res, err := r.Cycle(ctx)
	require.NoError(t, err)
	assert.True(t, res.Structural)
	assert.True(t, res.Complete())
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, int64(2), res.Stats.Inserted)
	assert.Equal(t, catalog.UpdateAddedRemoved, res.Categories.Results["boots"])
	assert.Equal(t, 1, res.Categories.Rounds)
	assert.Equal(t, 0, res.Categories.Sleeps)
	assert.Empty(t, sleeper.delays)

	products, err := s.ProductsByCategory(ctx, "boots")
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, "ILLEAKOL STAR", products[0].Name)
	assert.Equal(t, "black", products[0].Colors)
	assert.Equal(t, 51, products[0].Price)
	assert.Equal(t, "abiplos", products[0].Manufacturer)
	assert.Equal(t, catalog.AvailabilityLessThan10, products[0].Available)

	assert.Equal(t, "p3", products[1].ID)
	assert.Equal(t, "white, grey", products[1].Colors)
	assert.Equal(t, catalog.AvailabilityOutOfStock, products[1].Available)

	// ghost is not in the mirror and must not be inserted.
	_, err = s.Product(ctx, "ghost")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestCycleIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	r, _ := newReconciler(t, bootsSource(), s)

	_, err := r.Cycle(ctx)
	require.NoError(t, err)
	before, err := s.ProductsByCategory(ctx, "boots")
	require.NoError(t, err)

	res, err := r.Cycle(ctx)
	require.NoError(t, err)
	assert.False(t, res.Structural)
	assert.Equal(t, catalog.UpdateChanged, res.Categories.Results["boots"])
	assert.Zero(t, res.Stats.Inserted)
	assert.Zero(t, res.Stats.Deleted)

	after, err := s.ProductsByCategory(ctx, "boots")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCycleRemovesAndUpdates(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	src := bootsSource()
	r, _ := newReconciler(t, src, s)

	_, err := r.Cycle(ctx)
	require.NoError(t, err)

	src.mu.Lock()
	delete(src.categories["boots"], "p3")
	src.categories["boots"]["p1"] = catalog.NewItem("p1", "ILLEAKOL STAR II", []string{"red"}, 60, "Abiplos")
	src.mu.Unlock()

	res, err := r.Cycle(ctx)
	require.NoError(t, err)
	assert.True(t, res.Structural)
	assert.Equal(t, int64(1), res.Stats.Deleted)

	products, err := s.ProductsByCategory(ctx, "boots")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "ILLEAKOL STAR II", products[0].Name)
	assert.Equal(t, "red", products[0].Colors)
	assert.Equal(t, 60, products[0].Price)
	// availability survives a category update
	assert.Equal(t, catalog.AvailabilityLessThan10, products[0].Available)
}

func TestCycleRetriesFailedCategories(t *testing.T) {
	ctx := context.Background()
	src := bootsSource()
	src.failures["category/boots"] = 3
	r, sleeper := newReconciler(t, src, openStore(t))

	res, err := r.Cycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Categories.Rounds)
	assert.Equal(t, 3, res.Categories.Sleeps)
	assert.Equal(t, 15*time.Second, sleeper.total())
	assert.Equal(t, 4, src.callCount("category/boots"))
	assert.True(t, res.Complete())
}

func TestCycleRetriesOnlyFailedNames(t *testing.T) {
	ctx := context.Background()
	src := bootsSource()
	src.categories["gloves"] = map[string]catalog.Item{
		"g1": catalog.NewItem("g1", "WARM", []string{"blue"}, 10, "okkau"),
	}
	src.failures["category/gloves"] = 1
	src.failures["manufacturer/okkau"] = 2
	r, sleeper := newReconciler(t, src, openStore(t), reconciler.WithCategories("boots", "gloves"))

	res, err := r.Cycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, src.callCount("category/boots"))
	assert.Equal(t, 2, src.callCount("category/gloves"))
	assert.Equal(t, 1, src.callCount("manufacturer/abiplos"))
	assert.Equal(t, 3, src.callCount("manufacturer/okkau"))
	assert.Equal(t, 3, res.Manufacturers.Rounds)
	assert.Len(t, sleeper.delays, 3)
}

func TestCycleMaxRetryRounds(t *testing.T) {
	ctx := context.Background()
	src := bootsSource()
	src.failures["category/boots"] = 100
	r, sleeper := newReconciler(t, src, openStore(t), reconciler.WithMaxRetryRounds(2))

	res, err := r.Cycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Categories.Rounds)
	assert.Equal(t, []string{"boots"}, res.Categories.Unresolved)
	assert.False(t, res.Complete())
	assert.Len(t, sleeper.delays, 1)
	assert.Equal(t, catalog.UpdateFailure, res.Categories.Results["boots"])
}

func TestCycleCanceledDuringRetry(t *testing.T) {
	src := bootsSource()
	src.failures["category/boots"] = 100
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := reconciler.New(src, openStore(t),
		reconciler.WithCategories("boots"),
		reconciler.WithRetryDelay(time.Hour))
	require.NoError(t, err)

	_, err = r.Cycle(ctx)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCanceled(err))
}

func TestCycleMovesProductBetweenCategories(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	src := bootsSource()
	src.categories["gloves"] = map[string]catalog.Item{}
	r, _ := newReconciler(t, src, s, reconciler.WithCategories("gloves", "boots"))

	_, err := r.Cycle(ctx)
	require.NoError(t, err)

	src.mu.Lock()
	src.categories["gloves"]["p3"] = src.categories["boots"]["p3"]
	delete(src.categories["boots"], "p3")
	src.mu.Unlock()

	moved, err := r.UpdateCategory(ctx, "gloves")
	require.NoError(t, err)
	assert.Equal(t, []string{"p3"}, moved.Moved)
	assert.Zero(t, moved.Stats.Inserted)

	res, err := r.Cycle(ctx)
	require.NoError(t, err)
	assert.True(t, res.Structural)

	p3, err := s.Product(ctx, "p3")
	require.NoError(t, err)
	assert.Equal(t, "gloves", p3.Category)
	assert.Equal(t, catalog.AvailabilityOutOfStock, p3.Available)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestUpdateAvailabilityDropsUnknownIDs(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	r, _ := newReconciler(t, bootsSource(), s)

	_, err := r.UpdateCategory(ctx, "boots")
	require.NoError(t, err)

	res, err := r.UpdateAvailability(ctx, "abiplos")
	require.NoError(t, err)
	assert.Equal(t, catalog.UpdateChanged, res.Result)
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, 1, res.Dropped)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestUpdateCategoryReportsFetchFailure(t *testing.T) {
	src := bootsSource()
	src.failures["category/boots"] = 1
	r, _ := newReconciler(t, src, openStore(t))

	res, err := r.UpdateCategory(context.Background(), "boots")
	require.NoError(t, err)
	assert.Equal(t, catalog.UpdateFailure, res.Result)
	assert.True(t, pkgerrors.IsFetchFailed(res.Err))
}

func TestUpdateCategoryLogsChangeset(t *testing.T) {
	r, _ := newReconciler(t, bootsSource(), openStore(t))
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	_, err := r.UpdateCategory(ctx, "boots")
	require.NoError(t, err)
	tl.AssertContains(t, `"op":"add","ids":["p1","p3"]`)

	_, err = r.UpdateCategory(ctx, "hats")
	require.NoError(t, err)
	tl.AssertContains(t, "Category is empty in both the feed and the mirror")
}

// brokenStore fails every insert.
type brokenStore struct {
	*store.Store
}

func (brokenStore) Insert(context.Context, []catalog.Product) error {
	return pkgerrors.WrapStore("insert", pkgerrors.New("disk full"))
}

func TestCycleStoreErrorIsFatal(t *testing.T) {
	r, sleeper := newReconciler(t, bootsSource(), brokenStore{openStore(t)})

	_, err := r.Cycle(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsStore(err))

	var batchErr *pkgerrors.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, "insert", batchErr.Op)
	assert.Empty(t, sleeper.delays)
}
