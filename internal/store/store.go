// Package store is the durable side of the inventory: four independent
// collections (products, categories, settings, logs) kept in a gorm
// database and keyed by id.
//
// Every collection call is one round-trip to the database. Nothing here
// spans several calls in one transaction; callers that need ordering
// across collections issue the calls in order themselves.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"gorm.io/gorm"

	// Registers the schema revisions run by Init.
	_ "github.com/marketskt/marketskt/database/migrations"
	"github.com/marketskt/marketskt/internal/model"
	"github.com/marketskt/marketskt/pkg/logger"
	"github.com/marketskt/marketskt/pkg/migration"
)

var (
	// ErrStoreNotReady is returned by every collection call made before Init
	// has completed.
	ErrStoreNotReady = errors.New("store: not initialised")

	// ErrDuplicateKey is returned by Insert when the id is already taken.
	ErrDuplicateKey = errors.New("store: duplicate key")
)

// Collection names.
const (
	ProductsCollection   = "products"
	CategoriesCollection = "categories"
	SettingsCollection   = "settings"
	LogsCollection       = "logs"
)

// Store owns the database handle and the four collections.
type Store struct {
	db    *gorm.DB
	log   *slog.Logger
	ready atomic.Bool

	Products   *ProductCollection
	Categories *Collection[model.Category, string]
	Settings   *Collection[model.AppSettings, int]
	Logs       *Collection[model.ActionLog, string]
}

// Option configures a Store.
type Option func(*Store)

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New wraps db. The store is unusable until Init succeeds.
func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, log: logger.L}
	for _, opt := range opts {
		opt(s)
	}
	s.Products = &ProductCollection{Collection: newCollection[model.Product, string](s, ProductsCollection)}
	s.Categories = newCollection[model.Category, string](s, CategoriesCollection)
	s.Settings = newCollection[model.AppSettings, int](s, SettingsCollection)
	s.Logs = newCollection[model.ActionLog, string](s, LogsCollection)
	return s
}

// Init brings the schema up to date. It is safe to call on a database that
// is already initialised: applied revisions are skipped and existing rows
// are left alone.
func (s *Store) Init(ctx context.Context) error {
	ran, err := migration.New(s.db.WithContext(ctx)).WithLogger(s.log).Run()
	if err != nil {
		return fmt.Errorf("store: init: %w", err)
	}
	s.ready.Store(true)
	s.log.Info("store: ready", "revisions_applied", ran)
	return nil
}

// Ready reports whether Init has completed.
func (s *Store) Ready() bool { return s.ready.Load() }

// DB exposes the underlying handle, e.g. for migration status.
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) session(ctx context.Context) (*gorm.DB, error) {
	if !s.ready.Load() {
		return nil, ErrStoreNotReady
	}
	return s.db.WithContext(ctx), nil
}
