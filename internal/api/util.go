package api

import (
	"net/http"

	"github.com/marketskt/marketskt/pkg/ctx"
)

func wrap(h ctx.HandlerFunc) http.HandlerFunc { return ctx.Wrap(h) }

// list keeps empty results encoding as [] instead of null.
func list[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (api *API) health(c *ctx.Context) {
	c.Success(map[string]any{
		"store":  api.app.Store.Ready(),
		"engine": api.app.Engine.Initialized(),
		"feed":   api.hub.ClientCount(),
	})
}
