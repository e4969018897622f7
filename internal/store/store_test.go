package store_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/marketskt/marketskt/internal/model"
	"github.com/marketskt/marketskt/internal/store"
	"github.com/marketskt/marketskt/pkg/database"
	"github.com/marketskt/marketskt/pkg/logger"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(openDB(t), store.WithLogger(logger.Discard()))
	require.NoError(t, s.Init(context.Background()))
	return s
}

func product(id, barcode string) model.Product {
	return model.Product{
		ID:         id,
		Barcode:    barcode,
		Name:       "Milk " + id,
		Category:   "Dairy",
		ExpiryDate: model.MustParseDate("2026-10-20"),
		Quantity:   10,
		Price:      2.5,
		AddedDate:  time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC),
	}
}

func TestNotReadyBeforeInit(t *testing.T) {
	s := store.New(openDB(t), store.WithLogger(logger.Discard()))
	ctx := context.Background()

	_, err := s.Products.GetAll(ctx)
	assert.ErrorIs(t, err, store.ErrStoreNotReady)
	assert.ErrorIs(t, s.Logs.Insert(ctx, model.ActionLog{ID: "l1"}), store.ErrStoreNotReady)
	assert.ErrorIs(t, s.Settings.Upsert(ctx, model.DefaultSettings()), store.ErrStoreNotReady)
	assert.ErrorIs(t, s.Categories.Delete(ctx, "c1"), store.ErrStoreNotReady)
	assert.ErrorIs(t, s.Products.Clear(ctx), store.ErrStoreNotReady)
	assert.False(t, s.Ready())
}

func TestInsertGetAllAndDuplicate(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Products.Insert(ctx, product("p1", "123")))
	require.NoError(t, s.Products.Insert(ctx, product("p2", "123")))

	err := s.Products.Insert(ctx, product("p1", "999"))
	require.ErrorIs(t, err, store.ErrDuplicateKey)

	all, err := s.Products.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	byID := map[string]model.Product{}
	for _, p := range all {
		byID[p.ID] = p
	}
	assert.Equal(t, "123", byID["p1"].Barcode, "failed insert must not overwrite")
	assert.Equal(t, "2026-10-20", byID["p1"].ExpiryDate.String())
	assert.True(t, byID["p1"].AddedDate.Equal(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)))
}

func TestUpsertReplaces(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	p := product("p1", "123")
	require.NoError(t, s.Products.Upsert(ctx, p))

	supplier := "Acme"
	p.Quantity = 0
	p.Supplier = &supplier
	require.NoError(t, s.Products.Upsert(ctx, p))

	all, err := s.Products.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 0, all[0].Quantity)
	require.NotNil(t, all[0].Supplier)
	assert.Equal(t, "Acme", *all[0].Supplier)
}

func TestSettingsZeroThresholdSurvives(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Settings.Upsert(ctx, model.DefaultSettings()))
	require.NoError(t, s.Settings.Upsert(ctx, model.AppSettings{ID: model.SettingsID, WarningThresholdDays: 0}))

	all, err := s.Settings.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 0, all[0].WarningThresholdDays)
}

func TestDeleteMissingIsNoop(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Categories.Insert(ctx, model.Category{ID: "c1", Name: "Dairy"}))
	require.NoError(t, s.Categories.Delete(ctx, "missing"))
	require.NoError(t, s.Categories.Delete(ctx, "c1"))
	require.NoError(t, s.Categories.Delete(ctx, "c1"))

	all, err := s.Categories.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestClearOnlyTouchesOneCollection(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Logs.Insert(ctx, model.ActionLog{ID: "l1", Date: time.Now(), Action: model.ActionSystem, Description: "a"}))
	require.NoError(t, s.Logs.Insert(ctx, model.ActionLog{ID: "l2", Date: time.Now(), Action: model.ActionSystem, Description: "b"}))
	require.NoError(t, s.Products.Insert(ctx, product("p1", "1")))

	require.NoError(t, s.Logs.Clear(ctx))

	logs, err := s.Logs.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, logs)

	products, err := s.Products.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestFindByBarcode(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Products.Insert(ctx, product("p1", "869")))
	require.NoError(t, s.Products.Insert(ctx, product("p2", "869")))
	require.NoError(t, s.Products.Insert(ctx, product("p3", "111")))

	got, err := s.Products.FindByBarcode(ctx, "869")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.Products.FindByBarcode(ctx, "000")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInitIsIdempotent(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	first := store.New(db, store.WithLogger(logger.Discard()))
	require.NoError(t, first.Init(ctx))
	require.NoError(t, first.Products.Insert(ctx, product("p1", "1")))
	require.NoError(t, first.Logs.Insert(ctx, model.ActionLog{ID: "l1", Date: time.Now(), Action: model.ActionAdd, Description: "x"}))

	second := store.New(db, store.WithLogger(logger.Discard()))
	require.NoError(t, second.Init(ctx))

	products, err := second.Products.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
	logs, err := second.Logs.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestCategoriesRevisionAddedToExistingDatabase(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	s := store.New(db, store.WithLogger(logger.Discard()))
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Products.Insert(ctx, product("p1", "1")))

	// Simulate a database from before categories existed.
	require.NoError(t, db.Migrator().DropTable("categories"))
	require.NoError(t, db.Exec("DELETE FROM schema_migrations WHERE name = ?", "20250301000000_create_categories_table").Error)

	reopened := store.New(db, store.WithLogger(logger.Discard()))
	require.NoError(t, reopened.Init(ctx))
	assert.True(t, db.Migrator().HasTable("categories"))

	products, err := reopened.Products.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	require.NoError(t, reopened.Categories.Insert(ctx, model.Category{ID: "c1", Name: "Dairy"}))
}
