package api

import (
	"net/http"
	"strings"

	"github.com/marketskt/marketskt/pkg/ctx"
)

func (api *API) listCategories(c *ctx.Context) {
	c.Success(list(api.app.Engine.Categories()))
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// POST /api/categories answers 201 for a new category and 200 with the
// existing one when the name is already taken, ignoring case.
func (api *API) createCategory(c *ctx.Context) {
	var req categoryRequest
	if !c.BindJSON(&req) {
		return
	}
	cat, added, err := api.app.Engine.AddCategory(c.Context(), req.Name)
	if err != nil && cat.ID == "" {
		fail(c, err)
		return
	}
	if err != nil {
		c.Log().Warn("api: category added without log entry", "id", cat.ID, "err", err)
	}
	if !added {
		for _, existing := range api.app.Engine.Categories() {
			if strings.EqualFold(existing.Name, req.Name) {
				c.Success(existing)
				return
			}
		}
		c.Error(http.StatusConflict, "Category already exists")
		return
	}
	c.Created(cat)
}

func (api *API) deleteCategory(c *ctx.Context) {
	ok, err := api.app.Engine.RemoveCategory(c.Context(), c.Param("id"))
	switch {
	case err != nil:
		fail(c, err)
	case !ok:
		c.NotFound("Category not found")
	default:
		c.NoContent()
	}
}
