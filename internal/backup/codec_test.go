package backup_test

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketskt/marketskt/internal/backup"
	"github.com/marketskt/marketskt/internal/inventory"
	"github.com/marketskt/marketskt/internal/model"
	"github.com/marketskt/marketskt/internal/store"
	"github.com/marketskt/marketskt/pkg/database"
	"github.com/marketskt/marketskt/pkg/logger"
)

var epoch = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store  *store.Store
	engine *inventory.Engine
	codec  *backup.Codec
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	s := store.New(db, store.WithLogger(logger.Discard()))
	require.NoError(t, s.Init(context.Background()))

	var mu sync.Mutex
	now := epoch
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
	n := 0
	ids := func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%04d", n)
	}

	e := inventory.New(s,
		inventory.WithClock(clock),
		inventory.WithIDGenerator(ids),
		inventory.WithLogger(logger.Discard()),
	)
	require.NoError(t, e.Load(context.Background()))

	c := backup.NewCodec(s, e, backup.WithClock(clock), backup.WithLogger(logger.Discard()))
	return &fixture{store: s, engine: e, codec: c}
}

func (f *fixture) populate(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	supplier := "Farm Co"
	for i, name := range []string{"Milk", "Cheese", "Bread"} {
		_, err := f.engine.AddProduct(ctx, model.NewProduct{
			Barcode:    fmt.Sprintf("86900%d", i),
			Name:       name,
			Category:   "Süt & Kahvaltılık",
			ExpiryDate: model.DateOf(epoch).AddDays(i * 4),
			Quantity:   i + 1,
			Price:      1.25,
			Supplier:   &supplier,
		})
		require.NoError(t, err)
	}
	_, _, err := f.engine.AddCategory(ctx, "Frozen")
	require.NoError(t, err)
	_, err = f.engine.UpdateSettings(ctx, model.AppSettings{WarningThresholdDays: 3})
	require.NoError(t, err)
}

// canonical re-encodes every collection sorted by id so two stores can be
// compared regardless of row order.
func canonical(t *testing.T, s backup.Snapshot) string {
	t.Helper()
	slices.SortFunc(s.Products, func(a, b model.Product) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(s.Categories, func(a, b model.Category) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(s.Settings, func(a, b model.AppSettings) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(s.Logs, func(a, b model.ActionLog) int { return cmp.Compare(a.ID, b.ID) })
	s.ExportDate = time.Time{}
	data, err := json.Marshal(s)
	require.NoError(t, err)
	return string(data)
}

func TestCreateFormat(t *testing.T) {
	f := newFixture(t)
	data, err := f.codec.Create(context.Background())
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, `"2.0"`, string(raw["version"]))
	assert.JSONEq(t, `[]`, string(raw["products"]))
	assert.JSONEq(t, `[]`, string(raw["logs"]))
	assert.Contains(t, raw, "exportDate")

	snap, err := backup.Decode(data)
	require.NoError(t, err)
	assert.Len(t, snap.Categories, len(inventory.DefaultCategories))
	assert.Equal(t, []model.AppSettings{model.DefaultSettings()}, snap.Settings)
}

func TestRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.populate(t)

	before, err := f.codec.Snapshot(ctx)
	require.NoError(t, err)
	data, err := f.codec.Create(ctx)
	require.NoError(t, err)

	// Diverge from the snapshot in every collection.
	_, err = f.engine.AddProduct(ctx, model.NewProduct{Name: "Juice", ExpiryDate: model.DateOf(epoch)})
	require.NoError(t, err)
	_, err = f.engine.RemoveCategory(ctx, f.engine.Categories()[0].ID)
	require.NoError(t, err)
	_, err = f.engine.UpdateSettings(ctx, model.AppSettings{WarningThresholdDays: 30})
	require.NoError(t, err)
	require.NoError(t, f.engine.ClearLogs(ctx))

	require.NoError(t, f.codec.Restore(ctx, data))

	after, err := f.codec.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, canonical(t, before), canonical(t, after))

	assert.Equal(t, len(before.Products), f.engine.TotalProducts())
	assert.Equal(t, 3, f.engine.Settings().WarningThresholdDays)
	assert.Contains(t, f.engine.CategoryNames(), "Frozen")
	assert.Len(t, f.engine.Logs(), len(before.Logs))
	assert.InDelta(t, 1.25*6, f.engine.TotalValue(), 1e-9)
}

func TestRestoreWithoutProductsLeavesStoreUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.populate(t)
	before, err := f.codec.Snapshot(ctx)
	require.NoError(t, err)

	for name, payload := range map[string]string{
		"products missing":   `{"categories":[{"id":"c1","name":"Dairy"}],"settings":[],"logs":[]}`,
		"products null":      `{"products":null,"categories":[]}`,
		"categories missing": `{"products":[]}`,
		"not json":           `products,categories`,
	} {
		err := f.codec.Restore(ctx, []byte(payload))
		assert.ErrorIs(t, err, backup.ErrInvalidBackupFormat, name)
		assert.NotErrorIs(t, err, backup.ErrRestoreFailed, name)
	}

	after, err := f.codec.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, canonical(t, before), canonical(t, after))
	assert.Equal(t, 3, f.engine.TotalProducts())
}

func TestRestoreWithoutSettingsSeedsDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.populate(t)

	payload := `{
		"products": [{"id":"p1","barcode":"1","name":"Ayran","category":"İçecekler",
			"expiryDate":"2026-10-20","quantity":4,"price":0.75,"addedDate":"2026-10-01T08:30:00.000Z"}],
		"categories": [{"id":"c1","name":"İçecekler"}],
		"exportDate": "2026-10-01T09:00:00.000Z",
		"version": "2.0"
	}`
	require.NoError(t, f.codec.Restore(ctx, []byte(payload)))

	products := f.engine.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, model.MustParseDate("2026-10-20"), products[0].ExpiryDate)
	assert.True(t, time.Date(2026, 10, 1, 8, 30, 0, 0, time.UTC).Equal(products[0].AddedDate))
	assert.Equal(t, []string{"İçecekler"}, f.engine.CategoryNames())
	assert.Equal(t, model.DefaultSettings(), f.engine.Settings())
	assert.Empty(t, f.engine.Logs())

	stored, err := f.store.Settings.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.AppSettings{model.DefaultSettings()}, stored)
}

func TestRestoreFailureIsNotRolledBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.populate(t)

	payload := `{
		"products": [
			{"id":"dup","name":"A","expiryDate":"2026-10-20","quantity":1,"price":1,"addedDate":"2026-10-01T00:00:00Z"},
			{"id":"dup","name":"B","expiryDate":"2026-10-21","quantity":1,"price":1,"addedDate":"2026-10-01T00:00:00Z"}
		],
		"categories": [{"id":"c1","name":"Only"}],
		"settings": [{"id":1,"warningThresholdDays":5}],
		"logs": []
	}`
	err := f.codec.Restore(ctx, []byte(payload))
	require.ErrorIs(t, err, backup.ErrRestoreFailed)
	assert.ErrorIs(t, err, store.ErrDuplicateKey)

	cats, err := f.store.Categories.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Category{{ID: "c1", Name: "Only"}}, cats)

	products, err := f.store.Products.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "A", products[0].Name)

	// The engine was not reloaded and still shows the old state.
	assert.Equal(t, 3, f.engine.TotalProducts())
}
