// Package dispatch orchestrates the request pipeline: classification,
// config resolution, event assembly, persistence, and notification. It is
// transport-free; the HTTP layer adapts Requests in and Responses out.
package dispatch

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cdoyle/beacon/internal/classify"
	"github.com/cdoyle/beacon/internal/event"
	"github.com/cdoyle/beacon/internal/faults"
	"github.com/cdoyle/beacon/internal/metrics"
	"github.com/cdoyle/beacon/internal/notify"
	"github.com/cdoyle/beacon/internal/project"
	"github.com/cdoyle/beacon/internal/publisher"
)

const (
	codeContentType  = "text/javascript"
	codeCacheControl = "s-maxage=3600"
	notifyTimeout    = 15 * time.Second
)

// Request is the transport-independent view of one inbound request.
type Request struct {
	Method      string
	URL         string
	ContentType string
	Body        []byte
	Meta        event.Meta
}

// Response describes the outbound body and caching headers. The zero value
// is the empty acknowledgement every failure path degrades to.
type Response struct {
	Body         string
	ContentType  string
	CacheControl string
}

// Dispatcher wires the pipeline stages together.
type Dispatcher struct {
	resolver  *project.Resolver
	assembler *event.Assembler
	writer    event.Writer
	notifier  notify.Notifier
	publisher publisher.Publisher
	hub       *faults.Hub
	logger    *zap.Logger

	pending sync.WaitGroup
}

// New constructs a Dispatcher. notifier and pub may be nil-behaviored
// no-ops; hub may be nil.
func New(
	resolver *project.Resolver,
	assembler *event.Assembler,
	writer event.Writer,
	notifier notify.Notifier,
	pub publisher.Publisher,
	hub *faults.Hub,
	logger *zap.Logger,
) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pub == nil {
		pub = publisher.NoOp{}
	}
	metrics.Init()
	return &Dispatcher{
		resolver:  resolver,
		assembler: assembler,
		writer:    writer,
		notifier:  notifier,
		publisher: pub,
		hub:       hub,
		logger:    logger,
	}
}

// Handle runs the state machine for one request. It never returns an
// error: every failure mode degrades to the empty Response, with the
// failure reported to the fault hub.
func (d *Dispatcher) Handle(ctx context.Context, req Request) Response {
	start := time.Now()
	outcome := "rejected"
	defer func() {
		metrics.ObserveRequest(req.Method, outcome, time.Since(start))
	}()

	cls := classify.Classify(req.URL)
	if !cls.OK {
		return Response{}
	}

	switch {
	case req.Method == http.MethodGet && !cls.Image:
		outcome = "config"
		return d.serveCode(ctx, cls.Project)
	case (req.Method == http.MethodPost && !cls.Image) ||
		(req.Method == http.MethodGet && cls.Image):
		outcome = "event"
		return d.recordEvent(ctx, cls, req)
	default:
		return Response{}
	}
}

// Close waits for in-flight notification and publish goroutines.
func (d *Dispatcher) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dispatcher close wait: %w", ctx.Err())
	}
}

// serveCode answers a config request. Resolution failures and absent
// projects both serve an empty payload; the caching headers are set either
// way so edge caches behave uniformly.
func (d *Dispatcher) serveCode(ctx context.Context, slug string) Response {
	cfg := d.resolve(ctx, slug)
	body := ""
	if cfg != nil {
		body = cfg.Code
	}
	return Response{
		Body:         body,
		ContentType:  codeContentType,
		CacheControl: codeCacheControl,
	}
}

// recordEvent answers a submission or pixel request. The response is the
// empty acknowledgement no matter what happens past resolution.
func (d *Dispatcher) recordEvent(ctx context.Context, cls classify.Result, req Request) Response {
	cfg := d.resolve(ctx, cls.Project)
	if cfg == nil {
		return Response{}
	}

	evt := d.assembler.Assemble(cls.Project, req.Meta, cfg, cls.Image, req.Body, req.ContentType)
	if err := d.writer.Insert(ctx, evt); err != nil {
		d.hub.Emit(faults.Event{Stage: faults.StagePersist, Project: cls.Project, Err: err})
		// Notification is skipped: it only fires for persisted events.
		return Response{}
	}
	metrics.ObserveEventStored()

	if cfg.Notification.Enabled && d.notifier != nil {
		d.notifyAsync(cfg.Notification, evt)
	}
	d.publishAsync(evt)
	return Response{}
}

func (d *Dispatcher) resolve(ctx context.Context, slug string) *project.Config {
	cfg, src, err := d.resolver.Resolve(ctx, slug)
	if err != nil {
		d.hub.Emit(faults.Event{Stage: faults.StageResolve, Project: slug, Err: err})
		return nil
	}
	metrics.ObserveResolution(src.String())
	return cfg
}

// notifyAsync dispatches the notification off the response path. Failures
// are counted and reported, never surfaced.
func (d *Dispatcher) notifyAsync(dest project.Notification, evt event.AccessEvent) {
	d.pending.Add(1)
	go func() {
		defer d.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := d.notifier.Notify(ctx, dest, evt); err != nil {
			metrics.ObserveNotification("failed")
			d.hub.Emit(faults.Event{Stage: faults.StageNotify, Project: evt.Project, Err: err})
			return
		}
		metrics.ObserveNotification("sent")
	}()
}

func (d *Dispatcher) publishAsync(evt event.AccessEvent) {
	d.pending.Add(1)
	go func() {
		defer d.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := d.publisher.Publish(ctx, evt); err != nil {
			d.hub.Emit(faults.Event{Stage: faults.StagePublish, Project: evt.Project, Err: err})
		}
	}()
}
