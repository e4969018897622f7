// Package inventory owns the authoritative in-memory view of the stock and
// keeps it in step with the store.
//
// Every mutation writes to the store first. Only when the store call
// succeeds does the in-memory projection change, and only then is the
// audit entry appended. A failed store call leaves memory untouched.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marketskt/marketskt/internal/model"
	"github.com/marketskt/marketskt/internal/store"
	"github.com/marketskt/marketskt/pkg/logger"
)

// ErrNotLoaded is returned by mutations issued before Load has completed.
var ErrNotLoaded = errors.New("inventory: engine not loaded")

// Engine is the inventory state engine. Create it with New and call Load
// before using it.
type Engine struct {
	store *store.Store
	log   *slog.Logger
	now   func() time.Time
	newID func() string

	// mu guards the fields below. It is never held across a store call.
	mu         sync.RWMutex
	loaded     bool
	products   []model.Product
	categories []model.Category
	settings   model.AppSettings
	logs       []model.ActionLog

	lmu          sync.Mutex
	listeners    map[int]Listener
	nextListener int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now. Today's date is taken from the clock in the
// clock's own location.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator replaces the uuid generator used for new records.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New returns an engine over s. The store must be initialised before Load.
func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:     s,
		log:       logger.L,
		now:       time.Now,
		newID:     uuid.NewString,
		settings:  model.DefaultSettings(),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load reads every collection into memory, seeding the default settings
// and categories when their collections are empty. Logs are sorted newest
// first and kept in full.
func (e *Engine) Load(ctx context.Context) error {
	settings, err := e.loadSettings(ctx)
	if err != nil {
		return err
	}
	categories, err := e.loadCategories(ctx)
	if err != nil {
		return err
	}
	products, err := e.store.Products.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("inventory: load products: %w", err)
	}
	logs, err := e.store.Logs.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("inventory: load logs: %w", err)
	}
	slices.SortStableFunc(logs, func(a, b model.ActionLog) int { return b.Date.Compare(a.Date) })

	e.mu.Lock()
	e.settings = settings
	e.categories = categories
	e.products = products
	e.logs = logs
	e.loaded = true
	e.mu.Unlock()

	e.log.Info("inventory: loaded",
		"products", len(products),
		"categories", len(categories),
		"logs", len(logs),
		"warning_threshold_days", settings.WarningThresholdDays,
	)
	e.notify(Change{Kind: Reloaded})
	return nil
}

// Reload discards the in-memory state and reads it again from the store.
func (e *Engine) Reload(ctx context.Context) error { return e.Load(ctx) }

// Initialized reports whether Load has completed at least once.
func (e *Engine) Initialized() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loaded
}

func (e *Engine) loadSettings(ctx context.Context) (model.AppSettings, error) {
	all, err := e.store.Settings.GetAll(ctx)
	if err != nil {
		return model.AppSettings{}, fmt.Errorf("inventory: load settings: %w", err)
	}
	for _, s := range all {
		if s.ID == model.SettingsID {
			return s, nil
		}
	}
	if len(all) > 0 {
		return all[0], nil
	}
	def := model.DefaultSettings()
	if err := e.store.Settings.Upsert(ctx, def); err != nil {
		return model.AppSettings{}, fmt.Errorf("inventory: seed settings: %w", err)
	}
	return def, nil
}

func (e *Engine) loadCategories(ctx context.Context) ([]model.Category, error) {
	all, err := e.store.Categories.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("inventory: load categories: %w", err)
	}
	if len(all) > 0 {
		return all, nil
	}
	for _, name := range DefaultCategories {
		if err := e.store.Categories.Insert(ctx, model.Category{ID: e.newID(), Name: name}); err != nil {
			return nil, fmt.Errorf("inventory: seed categories: %w", err)
		}
	}
	all, err = e.store.Categories.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("inventory: load categories: %w", err)
	}
	return all, nil
}

func (e *Engine) requireLoaded() error {
	if !e.Initialized() {
		return ErrNotLoaded
	}
	return nil
}

// AddProduct stores a new product with a fresh id and the current time as
// its added date, puts it at the front of the product list and logs it.
//
// If the product is stored but the log append fails, the product is
// returned together with the error.
func (e *Engine) AddProduct(ctx context.Context, in model.NewProduct) (model.Product, error) {
	if err := e.requireLoaded(); err != nil {
		return model.Product{}, err
	}
	p := model.Product{
		ID:         e.newID(),
		Barcode:    in.Barcode,
		Name:       in.Name,
		Category:   in.Category,
		ExpiryDate: in.ExpiryDate,
		Quantity:   in.Quantity,
		Price:      in.Price,
		Supplier:   in.Supplier,
		Image:      in.Image,
		AddedDate:  e.now(),
	}
	if err := e.store.Products.Insert(ctx, p); err != nil {
		return model.Product{}, fmt.Errorf("inventory: add product: %w", err)
	}

	e.mu.Lock()
	e.products = append([]model.Product{p}, e.products...)
	e.mu.Unlock()

	err := e.appendLog(ctx, model.ActionAdd,
		fmt.Sprintf("%q added. (Stock: %d)", p.Name, p.Quantity), &p.Name)
	e.notify(Change{Kind: ProductAdded, IDs: []string{p.ID}})
	return p, err
}

// UpdateProduct merges patch into the product with id and replaces it. It
// reports false, with no store call and no log entry, when id is unknown.
func (e *Engine) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (model.Product, bool, error) {
	if err := e.requireLoaded(); err != nil {
		return model.Product{}, false, err
	}
	current, ok := e.Product(id)
	if !ok {
		return model.Product{}, false, nil
	}
	merged := patch.Apply(current)
	merged.ID = id

	if err := e.store.Products.Upsert(ctx, merged); err != nil {
		return model.Product{}, true, fmt.Errorf("inventory: update product: %w", err)
	}

	e.mu.Lock()
	if i := slices.IndexFunc(e.products, func(p model.Product) bool { return p.ID == id }); i >= 0 {
		e.products[i] = merged
	}
	e.mu.Unlock()

	err := e.appendLog(ctx, model.ActionUpdate, fmt.Sprintf("%q updated.", merged.Name), &merged.Name)
	e.notify(Change{Kind: ProductUpdated, IDs: []string{id}})
	return merged, true, err
}

// RemoveProduct deletes the product with id. It reports false, with no
// store call and no log entry, when id is unknown.
func (e *Engine) RemoveProduct(ctx context.Context, id string) (bool, error) {
	if err := e.requireLoaded(); err != nil {
		return false, err
	}
	current, ok := e.Product(id)
	if !ok {
		return false, nil
	}
	if err := e.store.Products.Delete(ctx, id); err != nil {
		return true, fmt.Errorf("inventory: remove product: %w", err)
	}

	e.mu.Lock()
	e.products = slices.DeleteFunc(e.products, func(p model.Product) bool { return p.ID == id })
	e.mu.Unlock()

	err := e.appendLog(ctx, model.ActionDelete, fmt.Sprintf("%q deleted.", current.Name), &current.Name)
	e.notify(Change{Kind: ProductRemoved, IDs: []string{id}})
	return true, err
}

// BulkRemove deletes ids one after another. The in-memory list is filtered
// once, after every delete succeeded, and a single entry records how many
// ids were requested. A failure part-way leaves the earlier deletes in the
// store and memory unchanged; the error does not say which ids were done.
func (e *Engine) BulkRemove(ctx context.Context, ids []string) error {
	if err := e.requireLoaded(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		if err := e.store.Products.Delete(ctx, id); err != nil {
			return fmt.Errorf("inventory: bulk remove: %w", err)
		}
	}

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	e.mu.Lock()
	e.products = slices.DeleteFunc(e.products, func(p model.Product) bool {
		_, ok := drop[p.ID]
		return ok
	})
	e.mu.Unlock()

	err := e.appendLog(ctx, model.ActionDelete, fmt.Sprintf("%d products deleted in bulk.", len(ids)), nil)
	e.notify(Change{Kind: ProductsBulkRemoved, IDs: slices.Clone(ids)})
	return err
}

// AddCategory stores a category named name unless one with the same name,
// ignoring case, already exists. It reports whether a category was added.
func (e *Engine) AddCategory(ctx context.Context, name string) (model.Category, bool, error) {
	if err := e.requireLoaded(); err != nil {
		return model.Category{}, false, err
	}
	e.mu.RLock()
	dup := slices.ContainsFunc(e.categories, func(c model.Category) bool {
		return strings.EqualFold(c.Name, name)
	})
	e.mu.RUnlock()
	if dup {
		return model.Category{}, false, nil
	}

	c := model.Category{ID: e.newID(), Name: name}
	if err := e.store.Categories.Insert(ctx, c); err != nil {
		return model.Category{}, false, fmt.Errorf("inventory: add category: %w", err)
	}

	e.mu.Lock()
	e.categories = append(e.categories, c)
	e.mu.Unlock()

	err := e.appendLog(ctx, model.ActionSystem, fmt.Sprintf("Category added: %q", name), nil)
	e.notify(Change{Kind: CategoryAdded, IDs: []string{c.ID}})
	return c, true, err
}

// RemoveCategory deletes the category with id. Products naming it keep
// their category string. It reports false when id is unknown.
func (e *Engine) RemoveCategory(ctx context.Context, id string) (bool, error) {
	if err := e.requireLoaded(); err != nil {
		return false, err
	}
	e.mu.RLock()
	i := slices.IndexFunc(e.categories, func(c model.Category) bool { return c.ID == id })
	var current model.Category
	if i >= 0 {
		current = e.categories[i]
	}
	e.mu.RUnlock()
	if i < 0 {
		return false, nil
	}

	if err := e.store.Categories.Delete(ctx, id); err != nil {
		return true, fmt.Errorf("inventory: remove category: %w", err)
	}

	e.mu.Lock()
	e.categories = slices.DeleteFunc(e.categories, func(c model.Category) bool { return c.ID == id })
	e.mu.Unlock()

	err := e.appendLog(ctx, model.ActionSystem, fmt.Sprintf("Category removed: %q", current.Name), nil)
	e.notify(Change{Kind: CategoryRemoved, IDs: []string{id}})
	return true, err
}

// UpdateSettings replaces the settings record. The id is always forced to
// model.SettingsID.
func (e *Engine) UpdateSettings(ctx context.Context, s model.AppSettings) (model.AppSettings, error) {
	if err := e.requireLoaded(); err != nil {
		return model.AppSettings{}, err
	}
	s.ID = model.SettingsID
	if err := e.store.Settings.Upsert(ctx, s); err != nil {
		return model.AppSettings{}, fmt.Errorf("inventory: update settings: %w", err)
	}

	e.mu.Lock()
	e.settings = s
	e.mu.Unlock()

	err := e.appendLog(ctx, model.ActionSystem,
		fmt.Sprintf("Settings updated. Warning window: %d days.", s.WarningThresholdDays), nil)
	e.notify(Change{Kind: SettingsUpdated})
	return s, err
}

// ClearLogs empties the logs collection and the in-memory list. It does not
// log itself.
func (e *Engine) ClearLogs(ctx context.Context) error {
	if err := e.requireLoaded(); err != nil {
		return err
	}
	if err := e.store.Logs.Clear(ctx); err != nil {
		return fmt.Errorf("inventory: clear logs: %w", err)
	}
	e.mu.Lock()
	e.logs = nil
	e.mu.Unlock()

	e.notify(Change{Kind: LogsCleared})
	return nil
}

// appendLog persists one entry and puts it at the front of the in-memory
// list, trimming the list to LogProjectionCap.
func (e *Engine) appendLog(ctx context.Context, action model.Action, desc string, productName *string) error {
	entry := model.ActionLog{
		ID:          e.newID(),
		Date:        e.now(),
		Action:      action,
		Description: desc,
	}
	if productName != nil {
		name := *productName
		entry.ProductName = &name
	}
	if err := e.store.Logs.Insert(ctx, entry); err != nil {
		e.log.Error("inventory: log append failed", "action", action, "err", err)
		return fmt.Errorf("inventory: append log: %w", err)
	}

	e.mu.Lock()
	next := make([]model.ActionLog, 0, min(len(e.logs)+1, LogProjectionCap))
	next = append(next, entry)
	for _, l := range e.logs {
		if len(next) == LogProjectionCap {
			break
		}
		next = append(next, l)
	}
	e.logs = next
	e.mu.Unlock()

	e.log.Debug("inventory: logged", "action", action, "description", desc)
	return nil
}
