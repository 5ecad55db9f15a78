package tabs

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/storesync/internal/infrastructure/monitoring"
)

// Registry maps tab ids to their live TabContext.
type Registry struct {
	logger  *zap.Logger
	metrics *monitoring.Metrics

	mu       sync.RWMutex
	contexts map[int]*TabContext
	onRemove []func(tabID int)
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger, metrics *monitoring.Metrics) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		logger:   logger,
		metrics:  metrics,
		contexts: make(map[int]*TabContext),
	}
}

// Add registers ctx under its tab id. A live context already registered for
// that id is torn down and replaced.
func (r *Registry) Add(ctx *TabContext) {
	ctx.attach(r)

	r.mu.Lock()
	previous, exists := r.contexts[ctx.TabID]
	r.contexts[ctx.TabID] = ctx
	count := len(r.contexts)
	r.mu.Unlock()

	r.metrics.SetTabContextsActive(count)
	r.metrics.IncTabContextsTotal()

	if exists && previous != ctx {
		r.logger.Warn("Replacing live tab context", zap.Int("tabId", ctx.TabID))
		previous.Teardown()
	}
}

// Get returns the context of tabID.
func (r *Registry) Get(tabID int) (*TabContext, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctx, ok := r.contexts[tabID]
	return ctx, ok
}

// Remove tears down the context of tabID. It returns false when no context
// was registered.
func (r *Registry) Remove(tabID int) bool {
	ctx, ok := r.Get(tabID)
	if !ok {
		return false
	}
	return ctx.Teardown()
}

// IDs returns the registered tab ids in ascending order.
func (r *Registry) IDs() []int {
	r.mu.RLock()
	ids := make([]int, 0, len(r.contexts))
	for id := range r.contexts {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Ints(ids)
	return ids
}

// Len returns the number of live contexts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.contexts)
}

// OnRemove registers fn to run after a context leaves the registry.
func (r *Registry) OnRemove(fn func(tabID int)) {
	r.mu.Lock()
	r.onRemove = append(r.onRemove, fn)
	r.mu.Unlock()
}

// TeardownAll tears down every live context.
func (r *Registry) TeardownAll() {
	for _, id := range r.IDs() {
		r.Remove(id)
	}
}

// detach drops ctx if it is still the registered context for its tab.
func (r *Registry) detach(ctx *TabContext) {
	r.mu.Lock()
	current, ok := r.contexts[ctx.TabID]
	if !ok || current != ctx {
		r.mu.Unlock()
		return
	}
	delete(r.contexts, ctx.TabID)
	count := len(r.contexts)
	hooks := append(([]func(int))(nil), r.onRemove...)
	r.mu.Unlock()

	r.metrics.SetTabContextsActive(count)
	r.logger.Debug("Tab context removed", zap.Int("tabId", ctx.TabID))

	for _, fn := range hooks {
		fn(ctx.TabID)
	}
}
