// Package app wires the database, store, engine, backup codec and storage
// disks into one value that commands, the HTTP server and tests share.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/marketskt/marketskt/config"
	"github.com/marketskt/marketskt/internal/backup"
	"github.com/marketskt/marketskt/internal/inventory"
	"github.com/marketskt/marketskt/internal/store"
	"github.com/marketskt/marketskt/pkg/database"
	"github.com/marketskt/marketskt/pkg/logger"
	"github.com/marketskt/marketskt/pkg/storage"
)

// App is the explicit application context. Build it once with Open or New
// and pass it to whatever needs the engine.
type App struct {
	Log      *slog.Logger
	DB       *gorm.DB
	Store    *store.Store
	Engine   *inventory.Engine
	Codec    *backup.Codec
	Archiver *backup.Archiver

	unsubscribe func()
}

// Options tune New. The zero value is usable except for BackupDisk.
type Options struct {
	Log *slog.Logger
	// BackupDisk receives archived snapshots.
	BackupDisk storage.Disk
	// Engine options, e.g. a fixed clock in tests.
	Engine []inventory.Option
	Backup []backup.Option
}

// Open builds the App from configuration: it connects to DB_DRIVER /
// DATABASE_DSN, initialises the store, loads the engine and selects
// BACKUP_DISK for archives.
func Open(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("app: config: %w", err)
	}
	db, err := database.Connect()
	if err != nil {
		return nil, err
	}
	disks, err := storage.Connect(ctx)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}
	disk, err := disks.Use(config.BackupDisk())
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}

	a, err := New(ctx, db, Options{Log: logger.L, BackupDisk: disk})
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return a, nil
}

// New wires an App over an open database. The store schema is brought up
// to date and the engine is loaded before New returns.
func New(ctx context.Context, db *gorm.DB, o Options) (*App, error) {
	if o.BackupDisk == nil {
		return nil, errors.New("app: no backup disk")
	}
	log := o.Log
	if log == nil {
		log = logger.L
	}

	s := store.New(db, store.WithLogger(log))
	if err := s.Init(ctx); err != nil {
		return nil, err
	}

	e := inventory.New(s, append([]inventory.Option{inventory.WithLogger(log)}, o.Engine...)...)
	unsubscribe := e.Subscribe(observeInventory)
	if err := e.Load(ctx); err != nil {
		unsubscribe()
		return nil, err
	}

	codec := backup.NewCodec(s, e, append([]backup.Option{backup.WithLogger(log)}, o.Backup...)...)
	return &App{
		Log:         log,
		DB:          db,
		Store:       s,
		Engine:      e,
		Codec:       codec,
		Archiver:    backup.NewArchiver(codec, o.BackupDisk),
		unsubscribe: unsubscribe,
	}, nil
}

// Close detaches listeners and closes the database.
func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	return database.Close(a.DB)
}
