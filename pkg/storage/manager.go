package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/marketskt/marketskt/config"
	"github.com/marketskt/marketskt/pkg/logger"
)

// Disks is a named set of disks.
type Disks struct {
	mu    sync.RWMutex
	disks map[string]Disk
}

// NewDisks returns an empty set.
func NewDisks() *Disks {
	return &Disks{disks: map[string]Disk{}}
}

// Connect boots the local disk and, when S3_BUCKET is configured, the s3
// disk. A misconfigured s3 disk is logged and left out.
func Connect(ctx context.Context) (*Disks, error) {
	d := NewDisks()

	local, err := NewLocalDisk(config.StorageLocalRoot())
	if err != nil {
		return nil, err
	}
	d.Register("local", local)

	if bucket := config.StorageS3Bucket(); bucket != "" {
		s3d, err := NewS3Disk(ctx, S3Options{
			Bucket:   bucket,
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
		})
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			d.Register("s3", s3d)
		}
	}
	return d, nil
}

// Register adds or replaces a disk under name.
func (d *Disks) Register(name string, disk Disk) {
	d.mu.Lock()
	d.disks[name] = disk
	d.mu.Unlock()
}

// Use returns the named disk.
func (d *Disks) Use(name string) (Disk, error) {
	d.mu.RLock()
	disk, ok := d.disks[name]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return disk, nil
}

// Names lists the configured disk names in sorted order.
func (d *Disks) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.disks))
	for name := range d.disks {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
