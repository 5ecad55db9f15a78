package tabs

import (
	"sync"

	"github.com/GriffinCanCode/storesync/internal/actions"
	"github.com/GriffinCanCode/storesync/internal/flux"
	"github.com/GriffinCanCode/storesync/internal/stores"
)

// TabContext is the interpreter and stores owned by one tab.
type TabContext struct {
	TabID       int
	Interpreter *flux.Interpreter
	StoreHub    *flux.StoreHub
	Actions     *actions.TabActionHub

	tabStore *stores.TabStore

	mu       sync.Mutex
	registry *Registry
	tornDown bool
}

// NewTabContext assembles a context from already wired parts.
func NewTabContext(tabID int, interpreter *flux.Interpreter, storeHub *flux.StoreHub, hub *actions.TabActionHub, tabStore *stores.TabStore) *TabContext {
	return &TabContext{
		TabID:       tabID,
		Interpreter: interpreter,
		StoreHub:    storeHub,
		Actions:     hub,
		tabStore:    tabStore,
	}
}

// Interpret offers msg to the tab interpreter. A torn down context handles
// nothing.
func (c *TabContext) Interpret(msg flux.Message) flux.InterpretResult {
	if c.IsTornDown() {
		return flux.InterpretResult{MessageHandled: false}
	}
	return c.Interpreter.Interpret(msg)
}

// TabState returns the TabStore state, if the context has one.
func (c *TabContext) TabState() (stores.TabStoreData, bool) {
	if c.tabStore == nil {
		return stores.TabStoreData{}, false
	}
	return c.tabStore.GetState(), true
}

// Teardown tears down every store and removes the context from its
// registry. It returns false when the context was already torn down.
func (c *TabContext) Teardown() bool {
	c.mu.Lock()
	if c.tornDown {
		c.mu.Unlock()
		return false
	}
	c.tornDown = true
	registry := c.registry
	c.mu.Unlock()

	c.StoreHub.Teardown()
	if registry != nil {
		registry.detach(c)
	}
	return true
}

// IsTornDown reports whether Teardown has run.
func (c *TabContext) IsTornDown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tornDown
}

func (c *TabContext) attach(r *Registry) {
	c.mu.Lock()
	c.registry = r
	c.mu.Unlock()
}
