// Package ws carries sync messages over websockets.
//
// Hub is the daemon side: it accepts surfaces on GET /port, tracks them by
// context kind and tab, and implements browser.Adapter so the background
// context can address tabs and frames. The extension peer reports tab
// lifecycle through browser.TabsUpdatedMessage and browser.TabsRemovedMessage.
//
// Client is the surface side. It implements flux.Sender and mirror.Receiver.
//
// Every frame is one JSON encoded flux.Message.
//
//	hub := ws.NewHub(ws.Settings{}, metrics, logger)
//	router.GET("/port", hub.HandleConnection)
package ws
