// Package backup turns the store into a portable JSON snapshot and back.
//
// A snapshot is read straight from the store, never from the engine's
// in-memory projection, so it carries the full log history.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/marketskt/marketskt/internal/inventory"
	"github.com/marketskt/marketskt/internal/model"
	"github.com/marketskt/marketskt/internal/store"
	"github.com/marketskt/marketskt/pkg/logger"
)

// FormatVersion is written to every snapshot.
const FormatVersion = "2.0"

var (
	// ErrInvalidBackupFormat is returned before anything is cleared when the
	// input is not JSON or lacks the products or categories list.
	ErrInvalidBackupFormat = errors.New("backup: invalid backup format")

	// ErrRestoreFailed wraps a store error hit after clearing began. The
	// store is left partly restored.
	ErrRestoreFailed = errors.New("backup: restore failed")
)

// Snapshot is the decoded form of a backup.
type Snapshot struct {
	Products   []model.Product     `json:"products"`
	Categories []model.Category    `json:"categories"`
	Settings   []model.AppSettings `json:"settings"`
	Logs       []model.ActionLog   `json:"logs"`
	ExportDate time.Time           `json:"exportDate"`
	Version    string              `json:"version"`
}

// wireSnapshot tells an absent list apart from an empty one.
type wireSnapshot struct {
	Products   *[]model.Product    `json:"products"`
	Categories *[]model.Category   `json:"categories"`
	Settings   []model.AppSettings `json:"settings"`
	Logs       []model.ActionLog   `json:"logs"`
	ExportDate time.Time           `json:"exportDate"`
	Version    string              `json:"version"`
}

// Decode parses data and checks that products and categories are present.
// Settings and logs may be missing and decode as empty.
func Decode(data []byte) (Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidBackupFormat, err)
	}
	if w.Products == nil {
		return Snapshot{}, fmt.Errorf("%w: products missing", ErrInvalidBackupFormat)
	}
	if w.Categories == nil {
		return Snapshot{}, fmt.Errorf("%w: categories missing", ErrInvalidBackupFormat)
	}
	return Snapshot{
		Products:   *w.Products,
		Categories: *w.Categories,
		Settings:   w.Settings,
		Logs:       w.Logs,
		ExportDate: w.ExportDate,
		Version:    w.Version,
	}, nil
}

// Codec creates and restores snapshots of one store. After a restore the
// engine is reloaded.
type Codec struct {
	store  *store.Store
	engine *inventory.Engine
	log    *slog.Logger
	now    func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock replaces time.Now for the export date.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Codec) { c.log = l }
}

// NewCodec returns a codec for s that reloads e after every restore.
func NewCodec(s *store.Store, e *inventory.Engine, opts ...Option) *Codec {
	c := &Codec{store: s, engine: e, log: logger.L, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot reads all four collections from the store. The reads are not
// isolated from concurrent writes.
func (c *Codec) Snapshot(ctx context.Context) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	if snap.Products, err = c.store.Products.GetAll(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("backup: read products: %w", err)
	}
	if snap.Categories, err = c.store.Categories.GetAll(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("backup: read categories: %w", err)
	}
	if snap.Settings, err = c.store.Settings.GetAll(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("backup: read settings: %w", err)
	}
	if snap.Logs, err = c.store.Logs.GetAll(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("backup: read logs: %w", err)
	}
	snap.ExportDate = c.now().UTC()
	snap.Version = FormatVersion
	return snap, nil
}

// Create returns the JSON encoding of a fresh snapshot. Empty collections
// encode as [] rather than null.
func (c *Codec) Create(ctx context.Context) ([]byte, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	snap.Products = nonNil(snap.Products)
	snap.Categories = nonNil(snap.Categories)
	snap.Settings = nonNil(snap.Settings)
	snap.Logs = nonNil(snap.Logs)

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("backup: encode: %w", err)
	}
	c.log.Info("backup: created",
		"products", len(snap.Products),
		"categories", len(snap.Categories),
		"logs", len(snap.Logs),
		"bytes", len(data),
	)
	return data, nil
}

// Restore decodes data and replaces the whole store with it. Validation
// happens first; once clearing starts a failure is not rolled back and is
// reported as ErrRestoreFailed.
func (c *Codec) Restore(ctx context.Context, data []byte) error {
	snap, err := Decode(data)
	if err != nil {
		c.log.Warn("backup: rejected", "err", err)
		return err
	}
	return c.Apply(ctx, snap)
}

// Apply writes snap over the store: every collection is cleared, then
// categories, settings, logs and products are written in that order with
// their original ids and timestamps. The engine is reloaded at the end.
func (c *Codec) Apply(ctx context.Context, snap Snapshot) error {
	if err := c.apply(ctx, snap); err != nil {
		c.log.Error("backup: restore failed, store may be partly restored", "err", err)
		return fmt.Errorf("%w: %w", ErrRestoreFailed, err)
	}
	if err := c.engine.Reload(ctx); err != nil {
		return fmt.Errorf("%w: reload: %w", ErrRestoreFailed, err)
	}
	c.log.Info("backup: restored",
		"products", len(snap.Products),
		"categories", len(snap.Categories),
		"logs", len(snap.Logs),
		"version", snap.Version,
	)
	return nil
}

func (c *Codec) apply(ctx context.Context, snap Snapshot) error {
	s := c.store
	for _, clearAll := range []func(context.Context) error{
		s.Products.Clear,
		s.Categories.Clear,
		s.Settings.Clear,
		s.Logs.Clear,
	} {
		if err := clearAll(ctx); err != nil {
			return err
		}
	}
	for _, cat := range snap.Categories {
		if err := s.Categories.Insert(ctx, cat); err != nil {
			return err
		}
	}
	for _, st := range snap.Settings {
		if err := s.Settings.Upsert(ctx, st); err != nil {
			return err
		}
	}
	for _, l := range snap.Logs {
		if err := s.Logs.Insert(ctx, l); err != nil {
			return err
		}
	}
	for _, p := range snap.Products {
		if err := s.Products.Insert(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
