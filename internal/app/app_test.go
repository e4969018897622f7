package app_test

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketskt/marketskt/internal/app"
	"github.com/marketskt/marketskt/internal/inventory"
	"github.com/marketskt/marketskt/internal/model"
	"github.com/marketskt/marketskt/pkg/database"
	"github.com/marketskt/marketskt/pkg/logger"
	"github.com/marketskt/marketskt/pkg/metrics"
	"github.com/marketskt/marketskt/pkg/storage"
)

func openDB(t *testing.T) string {
	t.Helper()
	return "file:" + strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "?mode=memory&cache=shared"
}

func TestNewLoadsEngine(t *testing.T) {
	db, err := database.Open("sqlite", openDB(t))
	require.NoError(t, err)
	disk, err := storage.NewLocalDisk(t.TempDir())
	require.NoError(t, err)

	a, err := app.New(context.Background(), db, app.Options{Log: logger.Discard(), BackupDisk: disk})
	require.NoError(t, err)
	defer a.Close()

	assert.True(t, a.Store.Ready())
	assert.True(t, a.Engine.Initialized())
	assert.Equal(t, inventory.DefaultCategories, a.Engine.CategoryNames())
	assert.NotNil(t, a.Codec)
	assert.NotNil(t, a.Archiver)
}

func TestNewRequiresBackupDisk(t *testing.T) {
	db, err := database.Open("sqlite", openDB(t))
	require.NoError(t, err)
	defer database.Close(db)

	_, err = app.New(context.Background(), db, app.Options{Log: logger.Discard()})
	assert.Error(t, err)
}

func TestInventoryGaugesFollowChanges(t *testing.T) {
	db, err := database.Open("sqlite", openDB(t))
	require.NoError(t, err)
	disk, err := storage.NewLocalDisk(t.TempDir())
	require.NoError(t, err)
	a, err := app.New(context.Background(), db, app.Options{Log: logger.Discard(), BackupDisk: disk})
	require.NoError(t, err)
	defer a.Close()

	before := testutil.ToFloat64(metrics.Mutations.WithLabelValues(string(inventory.ProductAdded)))

	_, err = a.Engine.AddProduct(context.Background(), model.NewProduct{
		Name:       "Milk",
		ExpiryDate: a.Engine.Today().AddDays(-1),
		Quantity:   4,
		Price:      2,
	})
	require.NoError(t, err)

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.Mutations.WithLabelValues(string(inventory.ProductAdded))))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Products))
	assert.Equal(t, float64(4), testutil.ToFloat64(metrics.Stock))
	assert.Equal(t, float64(8), testutil.ToFloat64(metrics.StockValue))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ProductsByStatus.WithLabelValues(string(model.StatusExpired))))
}
