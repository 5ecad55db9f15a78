package tabs

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/storesync/internal/actions"
	"github.com/GriffinCanCode/storesync/internal/browser"
	"github.com/GriffinCanCode/storesync/internal/flux"
)

// Executor runs fn, typically by posting it to the background event loop.
type Executor func(fn func())

// Controller keeps the registry in step with the browser's tabs.
type Controller struct {
	adapter  browser.Adapter
	registry *Registry
	factory  *Factory
	scope    *Scope
	exec     Executor
	logger   *zap.Logger
}

// NewController creates a controller. A nil exec runs events on the
// adapter's goroutine.
func NewController(adapter browser.Adapter, registry *Registry, factory *Factory, scope *Scope, exec Executor, logger *zap.Logger) *Controller {
	if exec == nil {
		exec = func(fn func()) { fn() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		adapter:  adapter,
		registry: registry,
		factory:  factory,
		scope:    scope,
		exec:     exec,
		logger:   logger,
	}
}

// Initialize subscribes to tab lifecycle events and then creates contexts for
// the in-scope tabs that are already open. Subscribing first means a tab
// reported while the query is in flight is still tracked.
func (c *Controller) Initialize(ctx context.Context) error {
	c.adapter.AddListenerToTabsOnUpdated(func(tab browser.Tab, urlChanged bool) {
		c.exec(func() { c.OnTabUpdated(tab, urlChanged) })
	})
	c.adapter.AddListenerToTabsOnRemoved(func(tabID int) {
		c.exec(func() { c.OnTabRemoved(tabID) })
	})

	open, err := c.adapter.TabsQuery(ctx)
	if err != nil {
		return fmt.Errorf("failed to query tabs: %w", err)
	}

	for _, tab := range open {
		if _, tracked := c.registry.Get(tab.ID); tracked {
			continue
		}
		if c.scope.InScope(tab.URL) {
			c.track(tab)
		}
	}

	c.logger.Info("Tab controller initialized", zap.Int("tracked", c.registry.Len()))
	return nil
}

// OnTabUpdated handles a tab update. Navigation creates, updates or tears
// down the tab's context depending on scope; other updates only report page
// visibility.
func (c *Controller) OnTabUpdated(tab browser.Tab, urlChanged bool) {
	tabCtx, tracked := c.registry.Get(tab.ID)

	if !urlChanged {
		if tracked {
			c.send(tabCtx, actions.TabVisibilityChange, actions.VisibilityChangePayload{Hidden: !tab.Active})
		}
		return
	}

	inScope := c.scope.InScope(tab.URL)
	switch {
	case !tracked && inScope:
		c.track(tab)
	case tracked && inScope:
		c.send(tabCtx, actions.TabExistingTabUpdated, actions.TabPayload{URL: tab.URL, Title: tab.Title})
	case tracked && !inScope:
		c.logger.Info("Tab left scope", zap.Int("tabId", tab.ID), zap.String("url", tab.URL))
		c.close(tabCtx)
	}
}

// OnTabRemoved reports the removal to a tracked tab and tears it down.
// Untracked tabs are ignored.
func (c *Controller) OnTabRemoved(tabID int) {
	tabCtx, tracked := c.registry.Get(tabID)
	if !tracked {
		return
	}
	c.close(tabCtx)
}

func (c *Controller) track(tab browser.Tab) {
	tabCtx, err := c.factory.CreateTabContext(tab.ID)
	if err != nil {
		c.logger.Error("Failed to create tab context", zap.Int("tabId", tab.ID), zap.Error(err))
		return
	}
	c.send(tabCtx, actions.TabUpdate, actions.TabPayload{URL: tab.URL, Title: tab.Title})
}

func (c *Controller) close(tabCtx *TabContext) {
	c.send(tabCtx, actions.TabRemove, nil)
	tabCtx.Teardown()
}

func (c *Controller) send(tabCtx *TabContext, messageType string, payload interface{}) {
	msg, err := flux.NewMessage(messageType, payload, flux.TabIDPtr(tabCtx.TabID))
	if err != nil {
		c.logger.Error("Failed to build tab message", zap.String("messageType", messageType), zap.Error(err))
		return
	}

	result := tabCtx.Interpret(msg)
	if !result.MessageHandled {
		c.logger.Warn("Tab message not handled", zap.String("messageType", messageType), zap.Int("tabId", tabCtx.TabID))
		return
	}
	if err := result.Result.Err(); err != nil {
		c.logger.Warn("Tab message failed", zap.String("messageType", messageType), zap.Error(err))
	}
}
