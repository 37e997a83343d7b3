package gpu

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gg"

	"github.com/devblok/slate/core"
)

// ClearColor is what the non-library pass clears the target to before
// any vector content is drawn on top.
var ClearColor = gg.RGBA{R: 0, G: 0, B: 0, A: 1}

// queue adapts the window's in-order submission path. Submissions
// retire before control returns to the caller, so Signal both enqueues
// and retires the marker; ordering against earlier work is inherent.
type queue struct {
	session      *Session
	lastRecorder *recorder
}

// NewRecorder implements core.Queue.
func (q *queue) NewRecorder() (core.Recorder, error) {
	if q.session.closed {
		return nil, ErrSessionClosed
	}
	return &recorder{fence: q.session.fence}, nil
}

// SubmitClear implements core.Queue. The native pass of this backend is
// realized as a full-target clear recorded ahead of the library's
// commands on the same in-order queue.
func (q *queue) SubmitClear(r core.Recorder, t core.Target) error {
	rec, ok := r.(*recorder)
	if !ok {
		return errors.New("gpu: foreign recorder")
	}
	target, ok := t.(*target)
	if !ok {
		return errors.New("gpu: foreign target")
	}
	if !rec.fresh {
		return errors.New("gpu: recorder submitted without reset")
	}
	if target.released {
		return errors.New("gpu: clear submitted against released target")
	}
	if q.session.frame == nil {
		return ErrNoActiveFrame
	}

	if err := q.session.canvas.Draw(func(cc *gg.Context) {
		cc.ClearWithColor(ClearColor)
	}); err != nil {
		return fmt.Errorf("canvas clear: %w", err)
	}

	target.state = core.StateRenderTarget
	rec.fresh = false
	q.lastRecorder = rec
	q.session.cleared = true
	return nil
}

// Signal implements core.Queue.
func (q *queue) Signal(marker uint64) error {
	if err := q.session.fence.signal(marker); err != nil {
		return err
	}
	if q.lastRecorder != nil {
		q.lastRecorder.pending = marker
	}
	// In-order queue, submission-synchronous: the work ahead of this
	// signal has already executed.
	q.session.fence.retire(marker)
	return nil
}

// recorder gates command recording on GPU progress the way a command
// allocator does: it must not be recycled while its newest submission's
// marker is unreached.
type recorder struct {
	fence   *fence
	pending uint64
	fresh   bool
}

// Reset implements core.Recorder.
func (r *recorder) Reset() error {
	if r.pending != 0 && r.pending > r.fence.Completed() {
		return fmt.Errorf("gpu: reset while marker %d in flight (completed %d)",
			r.pending, r.fence.Completed())
	}
	r.fresh = true
	return nil
}

func newFence(timeout time.Duration) *fence {
	f := &fence{timeout: timeout}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// fence tracks completion markers for the shared queue. Markers are
// strictly increasing; signalled is the highest enqueued marker and
// completed the highest the GPU has reached.
type fence struct {
	mu      sync.Mutex
	cond    *sync.Cond
	timeout time.Duration

	signalled uint64
	completed uint64
}

func (f *fence) signal(marker uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if marker <= f.signalled {
		return fmt.Errorf("gpu: marker %d reused, last signalled %d", marker, f.signalled)
	}
	f.signalled = marker
	return nil
}

func (f *fence) retire(marker uint64) {
	f.mu.Lock()
	if marker > f.completed {
		f.completed = marker
	}
	f.cond.Broadcast()
	f.mu.Unlock()
}

// retireAll marks every signalled marker reached. Used by the CPU-synced
// library flush, which drains the whole queue.
func (f *fence) retireAll() {
	f.mu.Lock()
	if f.signalled > f.completed {
		f.completed = f.signalled
	}
	f.cond.Broadcast()
	f.mu.Unlock()
}

// Completed implements core.Fence.
func (f *fence) Completed() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

// Wait implements core.Fence. Expiry of the wait budget is reported as
// device loss; the caller tears the session down in response.
func (f *fence) Wait(marker uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if marker <= f.completed {
		return nil
	}

	deadline := time.Now().Add(f.timeout)
	timer := time.AfterFunc(f.timeout, f.cond.Broadcast)
	defer timer.Stop()

	for marker > f.completed {
		if time.Now().After(deadline) {
			return core.ErrDeviceLost
		}
		f.cond.Wait()
	}
	return nil
}
