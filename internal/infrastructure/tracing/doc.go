/*
Package tracing provides lightweight tracing for distributed messages and
HTTP requests.

Every message the background context distributes gets a span tagged with its
message type, tab and the interpreter that handled it. Finished spans are
buffered and logged through zap by a collector goroutine.

# Usage

	tracer := tracing.New("syncd", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "distribute")
	span.SetTag("message.type", msg.MessageType)
	// ...
	span.Finish()
	tracer.Submit(span)

Trace context travels in the X-Trace-ID and X-Span-ID headers.
*/
package tracing
