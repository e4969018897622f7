package inventory

import (
	"cmp"
	"slices"
	"strings"

	"github.com/marketskt/marketskt/internal/model"
)

// StatusOf classifies date against today and a warning window of
// thresholdDays. Both ends of the window are inclusive: today and
// today+thresholdDays are warning, today+thresholdDays+1 is good.
func StatusOf(date, today model.Date, thresholdDays int) model.ExpiryStatus {
	switch {
	case date.Before(today):
		return model.StatusExpired
	case !date.After(today.AddDays(thresholdDays)):
		return model.StatusWarning
	default:
		return model.StatusGood
	}
}

// Today is the current calendar date according to the engine clock.
func (e *Engine) Today() model.Date { return model.DateOf(e.now()) }

// Product returns the in-memory product with id.
func (e *Engine) Product(id string) (model.Product, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, p := range e.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

// Products returns a copy of the product list, newest addition first.
func (e *Engine) Products() []model.Product {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.products)
}

// Categories returns a copy of the category list in insertion order.
func (e *Engine) Categories() []model.Category {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.categories)
}

// CategoryNames returns the category names in insertion order.
func (e *Engine) CategoryNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, len(e.categories))
	for i, c := range e.categories {
		names[i] = c.Name
	}
	return names
}

// Settings returns the current settings.
func (e *Engine) Settings() model.AppSettings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settings
}

// Logs returns a copy of the in-memory log projection, newest first.
func (e *Engine) Logs() []model.ActionLog {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.logs)
}

// TotalProducts is the number of products.
func (e *Engine) TotalProducts() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.products)
}

// TotalStock is the sum of quantities.
func (e *Engine) TotalStock() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n := 0
	for _, p := range e.products {
		n += p.Quantity
	}
	return n
}

// TotalValue is the sum of price × quantity.
func (e *Engine) TotalValue() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return totalValue(e.products)
}

func totalValue(ps []model.Product) float64 {
	var v float64
	for _, p := range ps {
		v += p.StockValue()
	}
	return v
}

// ExpiryStatus classifies date with the current threshold.
func (e *Engine) ExpiryStatus(date model.Date) model.ExpiryStatus {
	return StatusOf(date, e.Today(), e.Settings().WarningThresholdDays)
}

// DaysRemaining is the number of days from today to date, negative once
// date has passed.
func (e *Engine) DaysRemaining(date model.Date) int {
	return e.Today().DaysUntil(date)
}

// ExpiredProducts returns the expired products, soonest expiry first.
func (e *Engine) ExpiredProducts() []model.Product {
	return e.Filter(Query{Status: model.StatusExpired})
}

// WarningProducts returns the products inside the warning window, soonest
// expiry first.
func (e *Engine) WarningProducts() []model.Product {
	return e.Filter(Query{Status: model.StatusWarning})
}

// Query selects products. Zero fields match everything.
type Query struct {
	// Text matches a case-insensitive substring of the name or a substring
	// of the barcode.
	Text string
	// Category matches the category name exactly.
	Category string
	Status   model.ExpiryStatus
}

func (q Query) match(p model.Product, status model.ExpiryStatus) bool {
	if q.Text != "" {
		needle := strings.ToLower(q.Text)
		if !strings.Contains(strings.ToLower(p.Name), needle) && !strings.Contains(p.Barcode, needle) {
			return false
		}
	}
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.Status != "" && status != q.Status {
		return false
	}
	return true
}

// Filter returns the products matching q, sorted by expiry date ascending.
// Products sharing an expiry date keep their list order.
func (e *Engine) Filter(q Query) []model.Product {
	today := e.Today()

	e.mu.RLock()
	threshold := e.settings.WarningThresholdDays
	out := make([]model.Product, 0, len(e.products))
	for _, p := range e.products {
		if q.match(p, StatusOf(p.ExpiryDate, today, threshold)) {
			out = append(out, p)
		}
	}
	e.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b model.Product) int { return a.ExpiryDate.Compare(b.ExpiryDate) })
	return out
}

// LookupBarcode returns the products carrying barcode, in list order.
func (e *Engine) LookupBarcode(barcode string) []model.Product {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []model.Product
	for _, p := range e.products {
		if p.Barcode == barcode {
			out = append(out, p)
		}
	}
	return out
}

// StatusCounts holds the number of products per expiry status.
type StatusCounts struct {
	Good    int `json:"good"`
	Warning int `json:"warning"`
	Expired int `json:"expired"`
}

// StatusCounts classifies every product once.
func (e *Engine) StatusCounts() StatusCounts {
	today := e.Today()
	e.mu.RLock()
	defer e.mu.RUnlock()
	return statusCounts(e.products, today, e.settings.WarningThresholdDays)
}

func statusCounts(ps []model.Product, today model.Date, threshold int) StatusCounts {
	var c StatusCounts
	for _, p := range ps {
		switch StatusOf(p.ExpiryDate, today, threshold) {
		case model.StatusExpired:
			c.Expired++
		case model.StatusWarning:
			c.Warning++
		default:
			c.Good++
		}
	}
	return c
}

// CategoryValue is the stock value held under one category name.
type CategoryValue struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// ValueByCategory sums price × quantity per category name, highest value
// first. Ties are ordered by name.
func (e *Engine) ValueByCategory() []CategoryValue {
	e.mu.RLock()
	sums := make(map[string]float64)
	for _, p := range e.products {
		sums[p.Category] += p.StockValue()
	}
	e.mu.RUnlock()

	out := make([]CategoryValue, 0, len(sums))
	for name, v := range sums {
		out = append(out, CategoryValue{Category: name, Value: v})
	}
	slices.SortFunc(out, func(a, b CategoryValue) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// Stats is the dashboard summary.
type Stats struct {
	TotalProducts        int          `json:"totalProducts"`
	TotalStock           int          `json:"totalStock"`
	TotalValue           float64      `json:"totalValue"`
	Status               StatusCounts `json:"status"`
	Categories           int          `json:"categories"`
	WarningThresholdDays int          `json:"warningThresholdDays"`
	Today                model.Date   `json:"today"`
}

// Stats computes every summary figure from one consistent snapshot.
func (e *Engine) Stats() Stats {
	today := e.Today()
	e.mu.RLock()
	defer e.mu.RUnlock()

	st := Stats{
		TotalProducts:        len(e.products),
		TotalValue:           totalValue(e.products),
		Status:               statusCounts(e.products, today, e.settings.WarningThresholdDays),
		Categories:           len(e.categories),
		WarningThresholdDays: e.settings.WarningThresholdDays,
		Today:                today,
	}
	for _, p := range e.products {
		st.TotalStock += p.Quantity
	}
	return st
}
