package api

import (
	"github.com/marketskt/marketskt/internal/inventory"
	"github.com/marketskt/marketskt/internal/model"
	"github.com/marketskt/marketskt/pkg/ctx"
)

// GET /api/products?q=&category=&status=
func (api *API) listProducts(c *ctx.Context) {
	q := inventory.Query{Text: c.Query("q"), Category: c.Query("category")}
	if s := c.Query("status"); s != "" {
		status, ok := model.ParseExpiryStatus(s)
		if !ok {
			c.ValidationError(map[string]string{"status": "The selected status is invalid."})
			return
		}
		q.Status = status
	}
	c.Success(list(api.app.Engine.Filter(q)))
}

func (api *API) createProduct(c *ctx.Context) {
	var in model.NewProduct
	if !c.BindJSON(&in) {
		return
	}
	p, err := api.app.Engine.AddProduct(c.Context(), in)
	if err != nil {
		if p.ID == "" {
			fail(c, err)
			return
		}
		// Stored, but the log entry is missing.
		c.Log().Warn("api: product added without log entry", "id", p.ID, "err", err)
	}
	if loc, err := api.router.URL("products.show", map[string]string{"id": p.ID}); err == nil {
		c.SetHeader("Location", loc)
	}
	c.Created(p)
}

func (api *API) showProduct(c *ctx.Context) {
	p, ok := api.app.Engine.Product(c.Param("id"))
	if !ok {
		c.NotFound("Product not found")
		return
	}
	c.Success(p)
}

func (api *API) updateProduct(c *ctx.Context) {
	var patch model.ProductPatch
	if !c.BindJSON(&patch) {
		return
	}
	if patch.ExpiryDate != nil && patch.ExpiryDate.IsZero() {
		c.ValidationError(map[string]string{"expiryDate": "The expiryDate field is required."})
		return
	}
	p, ok, err := api.app.Engine.UpdateProduct(c.Context(), c.Param("id"), patch)
	switch {
	case !ok && err == nil:
		c.NotFound("Product not found")
	case err != nil && p.ID == "":
		fail(c, err)
	default:
		if err != nil {
			c.Log().Warn("api: product updated without log entry", "id", p.ID, "err", err)
		}
		c.Success(p)
	}
}

func (api *API) deleteProduct(c *ctx.Context) {
	ok, err := api.app.Engine.RemoveProduct(c.Context(), c.Param("id"))
	switch {
	case err != nil:
		fail(c, err)
	case !ok:
		c.NotFound("Product not found")
	default:
		c.NoContent()
	}
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required"`
}

func (api *API) bulkDeleteProducts(c *ctx.Context) {
	var req bulkDeleteRequest
	if !c.BindJSON(&req) {
		return
	}
	if err := api.app.Engine.BulkRemove(c.Context(), req.IDs); err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]int{"deleted": len(req.IDs)})
}

func (api *API) productsByBarcode(c *ctx.Context) {
	c.Success(list(api.app.Engine.LookupBarcode(c.Param("barcode"))))
}

func (api *API) expiredProducts(c *ctx.Context) {
	c.Success(list(api.app.Engine.ExpiredProducts()))
}

func (api *API) warningProducts(c *ctx.Context) {
	c.Success(list(api.app.Engine.WarningProducts()))
}

