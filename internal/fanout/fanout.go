// Package fanout broadcasts one event into per-recipient records.
package fanout

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("messmonitor/fanout")

// DefaultLimit bounds concurrent creates when the caller passes no limit.
const DefaultLimit = 8

// Outcome is the result of creating one recipient's record.
type Outcome struct {
	Recipient string
	ID        string
	Err       error
}

// Result holds one outcome per recipient, in recipient order.
type Result []Outcome

// Succeeded counts outcomes without an error.
func (r Result) Succeeded() int {
	n := 0
	for _, o := range r {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the outcomes that carry an error.
func (r Result) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// CreateFunc creates the record for one recipient and returns its id.
type CreateFunc func(ctx context.Context, recipient string) (string, error)

// Broadcast calls create once per recipient, at most limit at a time, and
// waits for all of them. A failed create never stops the others; every
// failure is reported in its Outcome and Broadcast itself does not fail.
func Broadcast(ctx context.Context, recipients []string, create CreateFunc, limit int) Result {
	ctx, span := tracer.Start(ctx, "fanout.broadcast",
		trace.WithAttributes(attribute.Int("recipients.count", len(recipients))),
	)
	defer span.End()

	result := make(Result, len(recipients))
	if len(recipients) == 0 {
		return result
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	// Tasks never return an error, so the group never cancels its context.
	var g errgroup.Group
	g.SetLimit(limit)
	for i, recipient := range recipients {
		g.Go(func() error {
			id, err := create(ctx, recipient)
			result[i] = Outcome{Recipient: recipient, ID: id, Err: err}
			return nil
		})
	}
	g.Wait()

	failed := len(result) - result.Succeeded()
	span.SetAttributes(attribute.Int("outcomes.failed", failed))
	if failed > 0 {
		span.SetStatus(codes.Error, "partial fan-out")
	}
	return result
}
