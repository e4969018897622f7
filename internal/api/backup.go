package api

import (
	"net/http"
	"path"
	"time"

	"github.com/marketskt/marketskt/internal/backup"
	"github.com/marketskt/marketskt/pkg/ctx"
)

// GET /api/backup downloads a fresh snapshot named after today.
func (api *API) downloadBackup(c *ctx.Context) {
	data, err := api.app.Codec.Create(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Download(backup.ArchiveName(api.app.Engine.Today()), "application/json", data)
}

// POST /api/backup/restore takes a snapshot as the request body.
func (api *API) restoreBackup(c *ctx.Context) {
	data, err := c.Body()
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}
	if err := api.app.Codec.Restore(c.Context(), data); err != nil {
		fail(c, err)
		return
	}
	c.Success(api.app.Engine.Stats())
}

type archiveEntry struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Modified string `json:"modified,omitempty"`
}

func (api *API) listArchives(c *ctx.Context) {
	files, err := api.app.Archiver.List(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]archiveEntry, 0, len(files))
	for _, f := range files {
		e := archiveEntry{Name: path.Base(f.Path), Path: f.Path, Size: f.Size}
		if !f.Modified.IsZero() {
			e.Modified = f.Modified.UTC().Format(time.RFC3339)
		}
		out = append(out, e)
	}
	c.Success(out)
}

func (api *API) createArchive(c *ctx.Context) {
	p, err := api.app.Archiver.Archive(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(map[string]string{"name": path.Base(p), "path": p})
}

func (api *API) restoreArchive(c *ctx.Context) {
	if err := api.app.Archiver.Restore(c.Context(), c.Param("name")); err != nil {
		fail(c, err)
		return
	}
	c.Success(api.app.Engine.Stats())
}
