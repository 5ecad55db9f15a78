package background

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/storesync/internal/browser"
	"github.com/GriffinCanCode/storesync/internal/flux"
	"github.com/GriffinCanCode/storesync/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/storesync/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/storesync/internal/tabs"
)

// Distributor offers each inbound message to the global interpreter and to
// the interpreter of the tab it is addressed to.
type Distributor struct {
	global   *flux.Interpreter
	registry *tabs.Registry
	tracer   *tracing.Tracer
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

// NewDistributor creates a distributor. tracer and metrics may be nil.
func NewDistributor(global *flux.Interpreter, registry *tabs.Registry, tracer *tracing.Tracer, metrics *monitoring.Metrics, logger *zap.Logger) *Distributor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Distributor{
		global:   global,
		registry: registry,
		tracer:   tracer,
		metrics:  metrics,
		logger:   logger,
	}
}

// Distribute interprets msg on behalf of sender. A message without a tab id
// inherits the sender's. It returns whether any interpreter handled it and a
// promise that settles when every handler has.
func (d *Distributor) Distribute(msg flux.Message, sender browser.Sender) (bool, *flux.Promise) {
	if msg.TabID == nil && sender.TabID != nil {
		msg = msg.WithTabID(*sender.TabID)
	}

	var span *tracing.Span
	if d.tracer != nil {
		span, _ = d.tracer.StartSpan(context.Background(), "distribute")
		span.SetTag("message_type", msg.MessageType)
		span.SetTag("context", string(sender.Context))
		if sender.PeerID != "" {
			span.SetTag("peer_id", sender.PeerID)
		}
	}

	var pending []*flux.Promise
	if p := d.interpret("global", d.global, msg); p != nil {
		pending = append(pending, p)
	}
	if msg.TabID != nil {
		if tabCtx, ok := d.registry.Get(*msg.TabID); ok {
			if p := d.interpret("tab", tabCtx, msg); p != nil {
				pending = append(pending, p)
			}
		}
	}

	handled := len(pending) > 0
	if !handled {
		d.metrics.RecordMessage("none", "unhandled", 0)
		fields := []zap.Field{zap.String("messageType", msg.MessageType), zap.String("context", string(sender.Context))}
		if msg.TabID != nil {
			fields = append(fields, zap.Int("tabId", *msg.TabID))
		}
		d.logger.Warn("Unable to interpret message", fields...)
	}

	result := flux.All(pending...)
	if span != nil {
		go func() {
			<-result.Done()
			if err := result.Err(); err != nil {
				span.SetError(err)
			}
			span.Finish()
			d.tracer.Submit(span)
		}()
	}
	return handled, result
}

type interpreter interface {
	Interpret(msg flux.Message) flux.InterpretResult
}

func (d *Distributor) interpret(name string, target interpreter, msg flux.Message) *flux.Promise {
	timer := monitoring.NewTimer(d.metrics, name)
	result := target.Interpret(msg)
	if !result.MessageHandled {
		return nil
	}

	settle := func() {
		err := result.Result.Err()
		if err == nil {
			timer.Stop("handled")
			return
		}
		timer.Stop("failed")
		if errors.Is(err, flux.ErrReentrancy) {
			d.metrics.RecordReentrancy(msg.MessageType)
		}
		d.logger.Warn("Message handler failed",
			zap.String("interpreter", name),
			zap.String("messageType", msg.MessageType),
			zap.Error(err),
		)
	}

	if result.Result.Settled() {
		settle()
	} else {
		go func() {
			<-result.Result.Done()
			settle()
		}()
	}
	return result.Result
}
