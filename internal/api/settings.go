package api

import (
	"github.com/marketskt/marketskt/internal/inventory"
	"github.com/marketskt/marketskt/internal/model"
	"github.com/marketskt/marketskt/pkg/ctx"
)

func (api *API) showSettings(c *ctx.Context) {
	c.Success(api.app.Engine.Settings())
}

func (api *API) updateSettings(c *ctx.Context) {
	var in model.AppSettings
	if !c.BindJSON(&in) {
		return
	}
	s, err := api.app.Engine.UpdateSettings(c.Context(), in)
	if err != nil && s.ID == 0 {
		fail(c, err)
		return
	}
	if err != nil {
		c.Log().Warn("api: settings updated without log entry", "err", err)
	}
	c.Success(s)
}

func (api *API) listLogs(c *ctx.Context) {
	c.Success(list(api.app.Engine.Logs()))
}

func (api *API) clearLogs(c *ctx.Context) {
	if err := api.app.Engine.ClearLogs(c.Context()); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}

type statsResponse struct {
	inventory.Stats
	ValueByCategory []inventory.CategoryValue `json:"valueByCategory"`
}

func (api *API) stats(c *ctx.Context) {
	e := api.app.Engine
	c.Success(statsResponse{Stats: e.Stats(), ValueByCategory: list(e.ValueByCategory())})
}
