package inventory_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketskt/marketskt/internal/inventory"
	"github.com/marketskt/marketskt/internal/model"
	"github.com/marketskt/marketskt/internal/store"
	"github.com/marketskt/marketskt/pkg/database"
	"github.com/marketskt/marketskt/pkg/logger"
)

var epoch = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

// tickingClock advances one second on every reading so log entries get
// distinct, increasing timestamps.
type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%04d", n)
	}
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	s := store.New(db, store.WithLogger(logger.Discard()))
	require.NoError(t, s.Init(context.Background()))
	return s
}

func newEngine(t *testing.T, s *store.Store, opts ...inventory.Option) *inventory.Engine {
	t.Helper()
	clock := &tickingClock{t: epoch}
	base := []inventory.Option{
		inventory.WithClock(clock.Now),
		inventory.WithIDGenerator(sequentialIDs()),
		inventory.WithLogger(logger.Discard()),
	}
	e := inventory.New(s, append(base, opts...)...)
	require.NoError(t, e.Load(context.Background()))
	return e
}

func today() model.Date { return model.DateOf(epoch) }

func milk() model.NewProduct {
	return model.NewProduct{
		Barcode:    "123",
		Name:       "Milk",
		Category:   "Dairy",
		ExpiryDate: today().AddDays(3),
		Quantity:   10,
		Price:      2.5,
	}
}

func ptr[T any](v T) *T { return &v }

func TestLoadSeedsDefaults(t *testing.T) {
	s := newStore(t)
	e := newEngine(t, s)
	ctx := context.Background()

	assert.True(t, e.Initialized())
	assert.Equal(t, model.DefaultSettings(), e.Settings())
	assert.Equal(t, inventory.DefaultCategories, e.CategoryNames())
	assert.Empty(t, e.Logs())

	settings, err := s.Settings.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.AppSettings{model.DefaultSettings()}, settings)

	cats, err := s.Categories.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(inventory.DefaultCategories))
}

func TestLoadKeepsExistingRecords(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Settings.Upsert(ctx, model.AppSettings{ID: model.SettingsID, WarningThresholdDays: 0}))
	require.NoError(t, s.Categories.Insert(ctx, model.Category{ID: "c1", Name: "Bakery"}))

	e := newEngine(t, s)

	assert.Equal(t, 0, e.Settings().WarningThresholdDays)
	assert.Equal(t, []string{"Bakery"}, e.CategoryNames())
}

func TestMutationsBeforeLoad(t *testing.T) {
	e := inventory.New(newStore(t), inventory.WithLogger(logger.Discard()))
	ctx := context.Background()

	assert.False(t, e.Initialized())
	_, err := e.AddProduct(ctx, milk())
	assert.ErrorIs(t, err, inventory.ErrNotLoaded)
	_, _, err = e.AddCategory(ctx, "Dairy")
	assert.ErrorIs(t, err, inventory.ErrNotLoaded)
	assert.ErrorIs(t, e.ClearLogs(ctx), inventory.ErrNotLoaded)
}

func TestLoadBeforeStoreInit(t *testing.T) {
	name := strings.NewReplacer("/", "_").Replace(t.Name())
	db, err := database.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	e := inventory.New(store.New(db, store.WithLogger(logger.Discard())), inventory.WithLogger(logger.Discard()))
	assert.ErrorIs(t, e.Load(context.Background()), store.ErrStoreNotReady)
	assert.False(t, e.Initialized())
}

func TestAddProductScenario(t *testing.T) {
	s := newStore(t)
	e := newEngine(t, s)
	ctx := context.Background()

	p, err := e.AddProduct(ctx, milk())
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.AddedDate.IsZero())

	assert.Empty(t, e.ExpiredProducts())
	warning := e.WarningProducts()
	require.Len(t, warning, 1)
	assert.Equal(t, "Milk", warning[0].Name)
	assert.InDelta(t, 25.0, e.TotalValue(), 1e-9)
	assert.Equal(t, 1, e.TotalProducts())
	assert.Equal(t, 10, e.TotalStock())
	assert.Equal(t, 3, e.DaysRemaining(p.ExpiryDate))

	logs := e.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionAdd, logs[0].Action)
	assert.Contains(t, logs[0].Description, "Milk")
	assert.Contains(t, logs[0].Description, "10")
	require.NotNil(t, logs[0].ProductName)
	assert.Equal(t, "Milk", *logs[0].ProductName)

	stored, err := s.Products.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, p.ID, stored[0].ID)
}

func TestAddProductPrepends(t *testing.T) {
	e := newEngine(t, newStore(t))
	ctx := context.Background()

	first, err := e.AddProduct(ctx, milk())
	require.NoError(t, err)
	in := milk()
	in.Name = "Yoghurt"
	second, err := e.AddProduct(ctx, in)
	require.NoError(t, err)

	products := e.Products()
	require.Len(t, products, 2)
	assert.Equal(t, second.ID, products[0].ID)
	assert.Equal(t, first.ID, products[1].ID)
}

func TestTotalValueEmpty(t *testing.T) {
	e := newEngine(t, newStore(t))
	assert.Zero(t, e.TotalValue())
	assert.Zero(t, e.TotalStock())
}

func TestStoreFailureLeavesMemoryUntouched(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Categories.Insert(ctx, model.Category{ID: "c1", Name: "Dairy"}))
	e := newEngine(t, s, inventory.WithIDGenerator(func() string { return "same" }))

	// Products and logs are separate collections, so the shared id only
	// collides on the second product.
	_, err := e.AddProduct(ctx, milk())
	require.NoError(t, err)

	_, err = e.AddProduct(ctx, milk())
	assert.ErrorIs(t, err, store.ErrDuplicateKey)
	assert.Equal(t, 1, e.TotalProducts())
	assert.Len(t, e.Logs(), 1)
}

func TestUpdateProduct(t *testing.T) {
	s := newStore(t)
	e := newEngine(t, s)
	ctx := context.Background()

	a, err := e.AddProduct(ctx, milk())
	require.NoError(t, err)
	_, err = e.AddProduct(ctx, milk())
	require.NoError(t, err)

	updated, ok, err := e.UpdateProduct(ctx, a.ID, model.ProductPatch{Quantity: ptr(4), Supplier: ptr("Farm")})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, updated.Quantity)
	assert.Equal(t, "Milk", updated.Name)
	assert.Equal(t, a.AddedDate, updated.AddedDate)

	products := e.Products()
	assert.Equal(t, a.ID, products[1].ID, "position is preserved")
	assert.Equal(t, 4, products[1].Quantity)

	stored, err := s.Products.GetAll(ctx)
	require.NoError(t, err)
	for _, p := range stored {
		if p.ID == a.ID {
			assert.Equal(t, 4, p.Quantity)
			require.NotNil(t, p.Supplier)
			assert.Equal(t, "Farm", *p.Supplier)
		}
	}
	assert.Equal(t, model.ActionUpdate, e.Logs()[0].Action)
}

func TestUpdateMissingProductIsNoop(t *testing.T) {
	s := newStore(t)
	e := newEngine(t, s)
	ctx := context.Background()
	_, err := e.AddProduct(ctx, milk())
	require.NoError(t, err)

	before := e.Products()
	logsBefore := e.Logs()

	_, ok, err := e.UpdateProduct(ctx, "missing", model.ProductPatch{Quantity: ptr(0)})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, e.Products())
	assert.Equal(t, logsBefore, e.Logs())

	stored, err := s.Logs.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestRemoveProduct(t *testing.T) {
	s := newStore(t)
	e := newEngine(t, s)
	ctx := context.Background()
	p, err := e.AddProduct(ctx, milk())
	require.NoError(t, err)

	ok, err := e.RemoveProduct(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, e.Logs(), 1)

	ok, err = e.RemoveProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, e.TotalProducts())

	logs := e.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, model.ActionDelete, logs[0].Action)
	require.NotNil(t, logs[0].ProductName)
	assert.Equal(t, "Milk", *logs[0].ProductName)

	stored, err := s.Products.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestBulkRemove(t *testing.T) {
	s := newStore(t)
	e := newEngine(t, s)
	ctx := context.Background()

	var ids []string
	for range 3 {
		p, err := e.AddProduct(ctx, milk())
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	require.NoError(t, e.BulkRemove(ctx, []string{ids[0], ids[2], "unknown"}))

	products := e.Products()
	require.Len(t, products, 1)
	assert.Equal(t, ids[1], products[0].ID)

	logs := e.Logs()
	require.Len(t, logs, 4)
	assert.Equal(t, model.ActionDelete, logs[0].Action)
	assert.Contains(t, logs[0].Description, "3")
	assert.Nil(t, logs[0].ProductName)

	stored, err := s.Products.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestAddCategoryIgnoresCase(t *testing.T) {
	e := newEngine(t, newStore(t))
	ctx := context.Background()
	n := len(e.Categories())

	_, added, err := e.AddCategory(ctx, "Dairy")
	require.NoError(t, err)
	assert.True(t, added)

	_, added, err = e.AddCategory(ctx, "dairy")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Len(t, e.Categories(), n+1)

	_, added, err = e.AddCategory(ctx, "Süt")
	require.NoError(t, err)
	assert.True(t, added)
	_, added, err = e.AddCategory(ctx, "süt")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Len(t, e.Categories(), n+2)

	assert.Equal(t, "Süt", e.CategoryNames()[n+1])
	assert.Equal(t, model.ActionSystem, e.Logs()[0].Action)
	assert.Len(t, e.Logs(), 2)
}

func TestRemoveCategoryDoesNotCascade(t *testing.T) {
	s := newStore(t)
	e := newEngine(t, s)
	ctx := context.Background()

	c, _, err := e.AddCategory(ctx, "Dairy")
	require.NoError(t, err)
	_, err = e.AddProduct(ctx, milk())
	require.NoError(t, err)

	ok, err := e.RemoveCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotContains(t, e.CategoryNames(), "Dairy")
	assert.Equal(t, "Dairy", e.Products()[0].Category)
	assert.Contains(t, e.Logs()[0].Description, "Dairy")

	ok, err = e.RemoveCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateSettingsForcesSingletonID(t *testing.T) {
	s := newStore(t)
	e := newEngine(t, s)
	ctx := context.Background()

	got, err := e.UpdateSettings(ctx, model.AppSettings{ID: 42, WarningThresholdDays: 2})
	require.NoError(t, err)
	assert.Equal(t, model.SettingsID, got.ID)
	assert.Equal(t, got, e.Settings())

	stored, err := s.Settings.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.AppSettings{{ID: model.SettingsID, WarningThresholdDays: 2}}, stored)
	assert.Contains(t, e.Logs()[0].Description, "2 days")

	// Milk expires in 3 days, outside a 2-day window.
	_, err = e.AddProduct(ctx, milk())
	require.NoError(t, err)
	assert.Empty(t, e.WarningProducts())
	assert.Equal(t, inventory.StatusCounts{Good: 1}, e.StatusCounts())
}

func TestLogProjectionCap(t *testing.T) {
	s := newStore(t)
	e := newEngine(t, s)
	ctx := context.Background()

	for i := range 105 {
		_, _, err := e.AddCategory(ctx, fmt.Sprintf("cat-%03d", i))
		require.NoError(t, err)
	}

	logs := e.Logs()
	require.Len(t, logs, inventory.LogProjectionCap)
	assert.Contains(t, logs[0].Description, "cat-104")
	assert.Contains(t, logs[99].Description, "cat-005")
	for i := 1; i < len(logs); i++ {
		assert.True(t, logs[i-1].Date.After(logs[i].Date), "newest first")
	}

	stored, err := s.Logs.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 105)

	require.NoError(t, e.Reload(ctx))
	logs = e.Logs()
	require.Len(t, logs, 105)
	assert.Contains(t, logs[0].Description, "cat-104")
	assert.Contains(t, logs[104].Description, "cat-000")

	_, _, err = e.AddCategory(ctx, "one more")
	require.NoError(t, err)
	assert.Len(t, e.Logs(), inventory.LogProjectionCap)
}

func TestClearLogs(t *testing.T) {
	s := newStore(t)
	e := newEngine(t, s)
	ctx := context.Background()
	_, err := e.AddProduct(ctx, milk())
	require.NoError(t, err)

	require.NoError(t, e.ClearLogs(ctx))
	assert.Empty(t, e.Logs())
	stored, err := s.Logs.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSubscribe(t *testing.T) {
	e := newEngine(t, newStore(t))
	ctx := context.Background()

	var kinds []inventory.ChangeKind
	unsubscribe := e.Subscribe(func(_ *inventory.Engine, c inventory.Change) {
		kinds = append(kinds, c.Kind)
	})

	p, err := e.AddProduct(ctx, milk())
	require.NoError(t, err)
	_, _, err = e.UpdateProduct(ctx, p.ID, model.ProductPatch{Name: ptr("Oat milk")})
	require.NoError(t, err)
	_, _, err = e.UpdateProduct(ctx, "missing", model.ProductPatch{})
	require.NoError(t, err)
	require.NoError(t, e.Reload(ctx))

	unsubscribe()
	_, err = e.RemoveProduct(ctx, p.ID)
	require.NoError(t, err)

	assert.Equal(t, []inventory.ChangeKind{
		inventory.ProductAdded,
		inventory.ProductUpdated,
		inventory.Reloaded,
	}, kinds)
}
