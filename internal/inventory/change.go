package inventory

// ChangeKind names what a mutation did.
type ChangeKind string

const (
	ProductAdded        ChangeKind = "product.added"
	ProductUpdated      ChangeKind = "product.updated"
	ProductRemoved      ChangeKind = "product.removed"
	ProductsBulkRemoved ChangeKind = "products.bulk_removed"
	CategoryAdded       ChangeKind = "category.added"
	CategoryRemoved     ChangeKind = "category.removed"
	SettingsUpdated     ChangeKind = "settings.updated"
	LogsCleared         ChangeKind = "logs.cleared"
	Reloaded            ChangeKind = "state.reloaded"
)

// Change is delivered to listeners after the in-memory state reflects a
// mutation.
type Change struct {
	Kind ChangeKind `json:"kind"`
	// IDs are the affected product or category ids, when there are any.
	IDs []string `json:"ids,omitempty"`
}

// Listener receives changes synchronously on the mutating goroutine. It
// must not call back into mutating engine methods.
type Listener func(e *Engine, c Change)

// Subscribe registers fn for every future change and returns a function
// that removes it.
func (e *Engine) Subscribe(fn Listener) (unsubscribe func()) {
	e.lmu.Lock()
	defer e.lmu.Unlock()
	id := e.nextListener
	e.nextListener++
	e.listeners[id] = fn
	return func() {
		e.lmu.Lock()
		delete(e.listeners, id)
		e.lmu.Unlock()
	}
}

func (e *Engine) notify(c Change) {
	e.lmu.Lock()
	fns := make([]Listener, 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	e.lmu.Unlock()

	for _, fn := range fns {
		fn(e, c)
	}
}
