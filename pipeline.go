package gauxc

import (
	"context"
	"sync"
	"time"
)

// pipelinePollInterval is the poll cadence the host/device pipeline uses
// while waiting on an in-flight device future, per spec.md section 4.3
// ("5ms poll").
const pipelinePollInterval = 5 * time.Millisecond

// WorkItem is one unit the pipeline hands to a worker: a DevExTask (which
// names the XCTask index range it covers) plus its submission sequence
// number. Folding partial results into accumulators is left to the worker.
type WorkItem struct {
	Batch DevExTask
	Seq   int
}

// WorkResult is the outcome of executing a WorkItem.
type WorkResult struct {
	Seq int
	Err error
}

// Worker executes one WorkItem, returning once the underlying device (or
// host) operation completes. Implementations may block; the pipeline
// itself never inspects timing beyond the poll loop in Run.
type Worker interface {
	Execute(ctx context.Context, item WorkItem) error
}

// future wraps a single in-flight WorkResult the way the original's
// device_queue wraps a std::future, polled rather than blocked on so the
// producer goroutine can keep issuing work while a device op drains.
type future struct {
	done chan struct{}
	res  WorkResult
}

func newFuture() *future {
	return &future{done: make(chan struct{})}
}

func (f *future) resolve(res WorkResult) {
	f.res = res
	close(f.done)
}

func (f *future) ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Pipeline is the single-producer/single-worker host/device task
// pipeline (C4, spec.md section 4.3): a bounded queue of at most depth
// in-flight futures (a single worker when depth is 1), advanced by the
// poll loop described there rather than an unbounded goroutine fan-out.
type Pipeline struct {
	worker Worker
	depth  int
}

// NewPipeline constructs a pipeline around worker with the given in-flight
// depth (spec.md section 4.3's "bounded pipeline depth", default 1).
func NewPipeline(worker Worker, depth int) *Pipeline {
	if depth < 1 {
		depth = 1
	}
	return &Pipeline{worker: worker, depth: depth}
}

// Run drains items in order, keeping at most p.depth futures in flight and
// polling each at pipelinePollInterval until it resolves, mirroring the
// original driver's submit/poll/retire loop. It returns the first error
// encountered, after draining any futures already in flight; items not yet
// submitted when the error is seen are never executed.
func (p *Pipeline) Run(ctx context.Context, items []WorkItem) error {
	inFlight := make([]*future, 0, p.depth)
	var firstErr error

	submit := func(item WorkItem) *future {
		f := newFuture()
		go func() {
			err := p.worker.Execute(ctx, item)
			f.resolve(WorkResult{Seq: item.Seq, Err: err})
		}()
		return f
	}

	retireOne := func() {
		f := inFlight[0]
		ticker := time.NewTicker(pipelinePollInterval)
		defer ticker.Stop()
		for !f.ready() {
			select {
			case <-ctx.Done():
				<-f.done
				goto resolved
			case <-ticker.C:
			}
		}
	resolved:
		if f.res.Err != nil && firstErr == nil {
			firstErr = f.res.Err
		}
		inFlight = inFlight[1:]
	}

	for _, item := range items {
		if len(inFlight) >= p.depth {
			retireOne()
		}
		if firstErr != nil {
			break
		}
		inFlight = append(inFlight, submit(item))
	}
	for len(inFlight) > 0 {
		retireOne()
	}
	return firstErr
}

// HostWorker runs WorkItems synchronously on the calling goroutine's host,
// the always-available fallback spec.md section 4.3 requires ("host
// execution is always available; device execution is an optional
// accelerant").
type HostWorker struct {
	Exec func(ctx context.Context, item WorkItem) error
}

func (w *HostWorker) Execute(ctx context.Context, item WorkItem) error {
	return w.Exec(ctx, item)
}

// SerializingAccumulator guards a scatter-add target shared across
// concurrently-resolving WorkItems, per submat.go's ScatterAdd contract
// ("serialisation across batches... required"; SubmatMap performs none
// itself).
type SerializingAccumulator struct {
	mu sync.Mutex
}

// With runs fn while holding the accumulator's lock.
func (a *SerializingAccumulator) With(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn()
}
