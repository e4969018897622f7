package backup

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/marketskt/marketskt/internal/model"
	"github.com/marketskt/marketskt/pkg/storage"
)

// ArchiveDir is the directory on the disk that holds archived snapshots.
const ArchiveDir = "backups"

const archivePrefix = "MarketSKT_Backup_"

// ArchiveName is the file name used for a snapshot taken on day.
func ArchiveName(day model.Date) string {
	return archivePrefix + day.String() + ".json"
}

// Archiver keeps snapshots on a storage disk. Archiving twice on the same
// day replaces that day's file.
type Archiver struct {
	codec *Codec
	disk  storage.Disk
}

// NewArchiver returns an archiver writing c's snapshots to disk.
func NewArchiver(c *Codec, disk storage.Disk) *Archiver {
	return &Archiver{codec: c, disk: disk}
}

// Archive writes a fresh snapshot and returns its path on the disk.
func (a *Archiver) Archive(ctx context.Context) (string, error) {
	data, err := a.codec.Create(ctx)
	if err != nil {
		return "", err
	}
	p := path.Join(ArchiveDir, ArchiveName(model.DateOf(a.codec.now())))
	if err := a.disk.Put(ctx, p, data); err != nil {
		return "", fmt.Errorf("backup: archive: %w", err)
	}
	a.codec.log.Info("backup: archived", "path", p, "bytes", len(data))
	return p, nil
}

// List returns the archived snapshots, newest first.
func (a *Archiver) List(ctx context.Context) ([]storage.File, error) {
	files, err := a.disk.Files(ctx, ArchiveDir)
	if err != nil {
		return nil, fmt.Errorf("backup: list archives: %w", err)
	}
	files = slices.DeleteFunc(files, func(f storage.File) bool {
		base := path.Base(f.Path)
		return !strings.HasPrefix(base, archivePrefix) || path.Ext(base) != ".json"
	})
	// Names embed the date, so reverse lexical order is newest first.
	slices.SortFunc(files, func(x, y storage.File) int { return strings.Compare(y.Path, x.Path) })
	return files, nil
}

// Read returns the raw snapshot stored under name. name may be a bare file
// name or a path inside ArchiveDir.
func (a *Archiver) Read(ctx context.Context, name string) ([]byte, error) {
	p := path.Join(ArchiveDir, path.Base(name))
	data, err := a.disk.Get(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("backup: read archive %s: %w", p, err)
	}
	return data, nil
}

// Restore restores the archived snapshot called name.
func (a *Archiver) Restore(ctx context.Context, name string) error {
	data, err := a.Read(ctx, name)
	if err != nil {
		return err
	}
	return a.codec.Restore(ctx, data)
}

// Latest returns the newest archive, or false when there is none.
func (a *Archiver) Latest(ctx context.Context) (storage.File, bool, error) {
	files, err := a.List(ctx)
	if err != nil || len(files) == 0 {
		return storage.File{}, false, err
	}
	return files[0], true, nil
}
