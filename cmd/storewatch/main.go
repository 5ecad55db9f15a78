package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/storesync/internal/browser"
	"github.com/GriffinCanCode/storesync/internal/flux"
	"github.com/GriffinCanCode/storesync/internal/infrastructure/logging"
	"github.com/GriffinCanCode/storesync/internal/mirror"
	"github.com/GriffinCanCode/storesync/internal/stores"
	"github.com/GriffinCanCode/storesync/internal/transport/ws"
)

const usage = `usage: storewatch <command> [flags]

commands:
  watch   mirror stores and print every change
  tabs    list live tab contexts
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "watch":
		err = watch(ctx, os.Args[2:])
	case "tabs":
		err = tabs(ctx, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "storewatch: %v\n", err)
		os.Exit(1)
	}
}

func watch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	addr := fs.String("addr", "localhost:8000", "Daemon address")
	contextName := fs.String("context", string(browser.ContextDetails), "Surface kind: popup, devtools, details or content")
	tab := fs.Int("tab", -1, "Tab to mirror; negative mirrors global stores only")
	dev := fs.Bool("dev", false, "Debug logging")
	fs.Parse(args)

	kind, ok := browser.ParseContextKind(*contextName)
	if !ok || kind == browser.ContextExtension {
		return fmt.Errorf("invalid context %q", *contextName)
	}
	var tabID *int
	if *tab >= 0 {
		tabID = flux.TabIDPtr(*tab)
	}

	logger := logging.NewDefault()
	if *dev {
		logger = logging.NewDevelopment()
	}
	defer logger.Close()

	// identifies this watcher in daemon logs
	session := uuid.NewString()
	log := logger.Component("watch").With(zap.String("session", session))

	client, err := ws.Dial(ctx, *addr, kind, tabID, ws.WithClientLogger(log))
	if err != nil {
		return err
	}
	defer client.Close()

	hub := mirror.NewHub(log)
	names := []string{stores.FeatureFlagStoreName, stores.UserConfigurationStoreName}
	if tabID != nil {
		names = append(names, stores.TabStoreName, stores.DevToolStoreName)
	}
	for _, name := range names {
		name := name
		m := mirror.New[json.RawMessage](name, tabID)
		m.AddChangedListener(func(state json.RawMessage) {
			printChange(os.Stdout, name, state)
		})
		if err := hub.Register(m); err != nil {
			return err
		}
	}
	hub.Attach(client)

	for _, name := range names {
		msg := flux.Message{MessageType: flux.GetStoreStateMessage(name), TabID: tabID}
		if err := client.Send(ctx, msg); err != nil {
			return err
		}
	}

	log.Info("Watching stores", zap.String("addr", *addr), zap.Strings("stores", names))
	return client.Run(ctx)
}

func printChange(w io.Writer, store string, state json.RawMessage) {
	fmt.Fprintf(w, "%s %-24s %s\n", time.Now().Format(time.TimeOnly), store, state)
}

type tabsResponse struct {
	Tabs []struct {
		TabID int                  `json:"tabId"`
		State *stores.TabStoreData `json:"state"`
	} `json:"tabs"`
	Count int `json:"count"`
}

func tabs(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tabs", flag.ExitOnError)
	addr := fs.String("addr", "localhost:8000", "Daemon address")
	timeout := fs.Duration("timeout", 5*time.Second, "Request timeout")
	fs.Parse(args)

	var body tabsResponse
	resp, err := resty.New().
		SetTimeout(*timeout).
		SetBaseURL("http://" + *addr).
		R().
		SetContext(ctx).
		SetResult(&body).
		Get("/tabs")
	if err != nil {
		return fmt.Errorf("failed to list tabs: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to list tabs: %s", resp.Status())
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TAB\tURL\tTITLE\tHIDDEN\tCLOSED")
	for _, tab := range body.Tabs {
		if tab.State == nil {
			fmt.Fprintf(w, "%d\t-\t-\t-\t-\n", tab.TabID)
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%t\n", tab.TabID, tab.State.URL, tab.State.Title, tab.State.IsPageHidden, tab.State.IsClosed)
	}
	return w.Flush()
}
