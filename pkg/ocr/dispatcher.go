package ocr

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/gardar/hocredit/pkg/hocr"
)

// Result is the outcome of one submitted request.
type Result struct {
	Key   string
	Seq   uint64
	Input Input
	Page  hocr.Element
	Err   error
}

type job struct {
	seq    uint64
	cancel context.CancelFunc
}

// Dispatcher runs recognitions in the background. Each key has at most one
// live request; submitting again on a key cancels the previous request.
// Results arrive on Results and must be passed through Accept on the
// goroutine that owns the document before being applied.
type Dispatcher struct {
	engine  Engine
	log     *slog.Logger
	results chan Result

	mu       sync.Mutex
	seq      uint64
	inflight map[string]job
	closed   bool
	wg       sync.WaitGroup
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(log *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.log = log }
}

// WithBuffer sets the capacity of the results channel.
func WithBuffer(n int) DispatcherOption {
	return func(d *Dispatcher) { d.results = make(chan Result, n) }
}

// NewDispatcher returns a dispatcher running requests on engine.
func NewDispatcher(engine Engine, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		engine:   engine,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		results:  make(chan Result, 8),
		inflight: make(map[string]job),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With("component", "ocr", "engine", engine.Name())
	return d
}

// Results returns the channel results are delivered on. It is closed by
// Close once all workers have finished.
func (d *Dispatcher) Results() <-chan Result { return d.results }

// Submit starts recognising in under key and returns its sequence number.
// A live request on the same key is cancelled. Submit after Close returns 0.
func (d *Dispatcher) Submit(ctx context.Context, key string, in Input) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0
	}
	if prev, ok := d.inflight[key]; ok {
		prev.cancel()
		d.log.Debug("superseded request", "key", key, "seq", prev.seq)
	}
	d.seq++
	seq := d.seq
	jctx, cancel := context.WithCancel(ctx)
	d.inflight[key] = job{seq: seq, cancel: cancel}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()
		d.log.Debug("recognising", "key", key, "seq", seq, "region", in.Region)
		page, err := d.engine.Recognize(jctx, in)
		if err == nil && jctx.Err() != nil {
			err = jctx.Err()
		}
		d.deliver(jctx, Result{Key: key, Seq: seq, Input: in, Page: page, Err: err})
	}()
	return seq
}

// deliver sends r, waiting for room only while its request is live. A
// cancelled request whose result finds the buffer full is dropped.
func (d *Dispatcher) deliver(ctx context.Context, r Result) {
	select {
	case d.results <- r:
		return
	default:
	}
	select {
	case d.results <- r:
	case <-ctx.Done():
		d.log.Debug("dropped cancelled result", "key", r.Key, "seq", r.Seq)
	}
}

// Cancel cancels the live request on key, if any. Its result, when it
// arrives, is rejected by Accept.
func (d *Dispatcher) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if j, ok := d.inflight[key]; ok {
		j.cancel()
		delete(d.inflight, key)
		d.log.Debug("cancelled request", "key", key, "seq", j.seq)
	}
}

// Pending reports the number of live requests.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inflight)
}

// Accept reports whether r is the live result for its key and clears the
// key. Stale and cancelled results are discarded. An accepted result may
// still carry an engine error.
func (d *Dispatcher) Accept(r Result) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	j, ok := d.inflight[r.Key]
	if !ok || j.seq != r.Seq {
		d.log.Debug("discarded stale result", "key", r.Key, "seq", r.Seq)
		return false
	}
	delete(d.inflight, r.Key)
	if r.Err != nil {
		d.log.Warn("recognition failed", "key", r.Key, "seq", r.Seq, "err", r.Err)
	}
	return true
}

// Close cancels all live requests, waits for the workers and closes the
// results channel. Results still buffered can be drained afterwards;
// cancelled results that do not fit the buffer are dropped.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for key, j := range d.inflight {
		j.cancel()
		delete(d.inflight, key)
	}
	d.mu.Unlock()

	d.wg.Wait()
	close(d.results)
}
