package api

import (
	"errors"
	"net/http"

	"github.com/marketskt/marketskt/internal/backup"
	"github.com/marketskt/marketskt/internal/inventory"
	"github.com/marketskt/marketskt/internal/store"
	"github.com/marketskt/marketskt/pkg/ctx"
	"github.com/marketskt/marketskt/pkg/storage"
)

// fail maps err onto a status and writes the error envelope. Anything it
// does not recognise is a 500 and is logged.
func fail(c *ctx.Context, err error) {
	switch {
	case errors.Is(err, store.ErrDuplicateKey):
		c.Error(http.StatusConflict, err.Error())
	case errors.Is(err, backup.ErrInvalidBackupFormat):
		c.Error(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		c.NotFound(err.Error())
	case errors.Is(err, store.ErrStoreNotReady), errors.Is(err, inventory.ErrNotLoaded):
		c.Error(http.StatusServiceUnavailable, err.Error())
	default:
		c.Log().Error("api: request failed", "err", err)
		c.Error(http.StatusInternalServerError, err.Error())
	}
}
