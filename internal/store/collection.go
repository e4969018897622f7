package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marketskt/marketskt/internal/model"
	"github.com/marketskt/marketskt/pkg/metrics"
)

// Record is a row keyed by a primary key of type K.
type Record[K comparable] interface {
	PrimaryKey() K
}

// Collection is one named table keyed by the "id" column.
type Collection[T Record[K], K comparable] struct {
	store *Store
	name  string
}

func newCollection[T Record[K], K comparable](s *Store, name string) *Collection[T, K] {
	return &Collection[T, K]{store: s, name: name}
}

// Name returns the collection name.
func (c *Collection[T, K]) Name() string { return c.name }

// GetAll returns every item. Order is unspecified.
func (c *Collection[T, K]) GetAll(ctx context.Context) (items []T, err error) {
	defer metrics.ObserveStoreOp(c.name, "get_all", time.Now(), &err)

	db, err := c.store.session(ctx)
	if err != nil {
		return nil, err
	}
	if err = db.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("store: %s get all: %w", c.name, err)
	}
	return items, nil
}

// Insert adds item and fails with ErrDuplicateKey if its id already exists.
func (c *Collection[T, K]) Insert(ctx context.Context, item T) (err error) {
	defer metrics.ObserveStoreOp(c.name, "insert", time.Now(), &err)

	db, err := c.store.session(ctx)
	if err != nil {
		return err
	}
	key := item.PrimaryKey()
	err = db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(new(T)).Where("id = ?", key).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %s %v", ErrDuplicateKey, c.name, key)
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		return fmt.Errorf("store: %s insert: %w", c.name, err)
	}
	return nil
}

// Upsert inserts item or replaces the stored item with the same id.
func (c *Collection[T, K]) Upsert(ctx context.Context, item T) (err error) {
	defer metrics.ObserveStoreOp(c.name, "upsert", time.Now(), &err)

	db, err := c.store.session(ctx)
	if err != nil {
		return err
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&item).Error
	if err != nil {
		return fmt.Errorf("store: %s upsert: %w", c.name, err)
	}
	return nil
}

// Delete removes the item with key. A missing key is not an error.
func (c *Collection[T, K]) Delete(ctx context.Context, key K) (err error) {
	defer metrics.ObserveStoreOp(c.name, "delete", time.Now(), &err)

	db, err := c.store.session(ctx)
	if err != nil {
		return err
	}
	if err = db.Where("id = ?", key).Delete(new(T)).Error; err != nil {
		return fmt.Errorf("store: %s delete: %w", c.name, err)
	}
	return nil
}

// Clear removes every item.
func (c *Collection[T, K]) Clear(ctx context.Context) (err error) {
	defer metrics.ObserveStoreOp(c.name, "clear", time.Now(), &err)

	db, err := c.store.session(ctx)
	if err != nil {
		return err
	}
	if err = db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(new(T)).Error; err != nil {
		return fmt.Errorf("store: %s clear: %w", c.name, err)
	}
	return nil
}

// ProductCollection adds the barcode lookup to the products collection.
type ProductCollection struct {
	*Collection[model.Product, string]
}

// FindByBarcode returns every product carrying barcode. Barcodes are not
// unique, so several products may match.
func (c *ProductCollection) FindByBarcode(ctx context.Context, barcode string) (items []model.Product, err error) {
	defer metrics.ObserveStoreOp(c.name, "find_by_barcode", time.Now(), &err)

	db, err := c.store.session(ctx)
	if err != nil {
		return nil, err
	}
	if err = db.Where("barcode = ?", barcode).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("store: %s find by barcode: %w", c.name, err)
	}
	return items, nil
}
