// Package storage provides the disks that backup archives are written to.
//
// Two drivers are available:
//   - "local": local filesystem (default)
//   - "s3":    S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// Quick start:
//
//	disks, _ := storage.Connect(ctx)
//	disk, _ := disks.Use("local")
//	_ = disk.Put(ctx, "backups/snapshot.json", data)
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no file exists at path.
var ErrNotFound = errors.New("storage: file not found")

// File describes one stored file.
type File struct {
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Disk is the filesystem driver interface. Every driver must implement this.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(ctx context.Context, path string, content []byte) error

	// Get returns the full content of the file at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) bool

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error

	// Files lists the files directly inside directory.
	Files(ctx context.Context, directory string) ([]File, error)
}
