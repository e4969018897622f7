// Package api exposes the inventory engine over HTTP as a JSON API, a
// websocket change feed and a Prometheus endpoint.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/marketskt/marketskt/internal/app"
	"github.com/marketskt/marketskt/internal/inventory"
	"github.com/marketskt/marketskt/pkg/logger"
	"github.com/marketskt/marketskt/pkg/metrics"
	"github.com/marketskt/marketskt/pkg/middleware"
	"github.com/marketskt/marketskt/pkg/reqid"
	"github.com/marketskt/marketskt/pkg/router"
	"github.com/marketskt/marketskt/pkg/ws"
)

// API holds the handlers. Build it with New and serve Handler.
type API struct {
	app    *app.App
	log    *slog.Logger
	router *router.Router
	hub    *ws.Hub

	unsubscribe func()
}

// New registers every route and starts the change feed. The feed stops
// when ctx ends.
func New(ctx context.Context, a *app.App) *API {
	api := &API{
		app:    a,
		log:    a.Log,
		router: router.New(),
		hub:    ws.NewHub(a.Log),
	}
	go api.hub.Run(ctx)
	api.unsubscribe = a.Engine.Subscribe(api.publish)
	api.routes()
	return api
}

// Handler returns the root HTTP handler.
func (api *API) Handler() http.Handler { return api.router }

// Router exposes the named routes, e.g. for route:list.
func (api *API) Router() *router.Router { return api.router }

// Close detaches the change feed from the engine.
func (api *API) Close() { api.unsubscribe() }

func (api *API) routes() {
	r := api.router

	// Outermost first: metrics sees total latency, recovery catches panics
	// before anything else, the request id exists before the logger runs.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery(api.log))
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger(api.log))
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))

	r.HandleFunc("/metrics", metrics.Handler())
	r.Get("/ws", "feed", api.hub.Handler())
	r.Get("/health", "health", wrap(api.health))

	g := r.Group("/api")

	g.Get("/products", "products.index", wrap(api.listProducts))
	g.Post("/products", "products.store", wrap(api.createProduct))
	g.Post("/products/bulk-delete", "products.bulk-delete", wrap(api.bulkDeleteProducts))
	g.Get("/products/expired", "products.expired", wrap(api.expiredProducts))
	g.Get("/products/warning", "products.warning", wrap(api.warningProducts))
	g.Get("/products/barcode/{barcode}", "products.barcode", wrap(api.productsByBarcode))
	g.Get("/products/{id}", "products.show", wrap(api.showProduct))
	g.Patch("/products/{id}", "products.update", wrap(api.updateProduct))
	g.Delete("/products/{id}", "products.destroy", wrap(api.deleteProduct))

	g.Get("/categories", "categories.index", wrap(api.listCategories))
	g.Post("/categories", "categories.store", wrap(api.createCategory))
	g.Delete("/categories/{id}", "categories.destroy", wrap(api.deleteCategory))

	g.Get("/settings", "settings.show", wrap(api.showSettings))
	g.Put("/settings", "settings.update", wrap(api.updateSettings))

	g.Get("/logs", "logs.index", wrap(api.listLogs))
	g.Delete("/logs", "logs.clear", wrap(api.clearLogs))

	g.Get("/stats", "stats", wrap(api.stats))

	g.Get("/backup", "backup.download", wrap(api.downloadBackup))
	g.Post("/backup/restore", "backup.restore", wrap(api.restoreBackup))
	g.Get("/backup/archive", "backup.archive.index", wrap(api.listArchives))
	g.Post("/backup/archive", "backup.archive.store", wrap(api.createArchive))
	g.Post("/backup/archive/{name}/restore", "backup.archive.restore", wrap(api.restoreArchive))
}

// event is one message on the websocket feed.
type event struct {
	Kind  inventory.ChangeKind `json:"kind"`
	IDs   []string             `json:"ids,omitempty"`
	Stats inventory.Stats      `json:"stats"`
}

func (api *API) publish(e *inventory.Engine, c inventory.Change) {
	api.hub.Publish(event{Kind: c.Kind, IDs: c.IDs, Stats: e.Stats()})
}

// RouteTable lists the routes New registers without building an App.
func RouteTable() []router.RouteInfo {
	api := &API{log: logger.L, router: router.New(), hub: ws.NewHub(logger.L)}
	api.routes()
	return api.router.Routes()
}
