package gpu

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"

	"github.com/devblok/slate/core"
)

// vectorContext adapts the gg canvas as the rendering library's GPU
// context. The canvas aliases the window surface; cross-submission
// ordering against the native clear pass is inherent in the shared
// in-order queue, so the queue-side wait reduces to a sanity check that
// the dependency was actually submitted.
type vectorContext struct {
	session *Session

	// lastQueueWait is the marker the library's next submission is
	// ordered after.
	lastQueueWait uint64
}

// WaitQueue implements core.VectorContext.
func (v *vectorContext) WaitQueue(marker uint64) error {
	f := v.session.fence
	f.mu.Lock()
	signalled := f.signalled
	f.mu.Unlock()
	if marker > signalled {
		return fmt.Errorf("gpu: queue wait on marker %d which was never submitted", marker)
	}
	v.lastQueueWait = marker
	return nil
}

// NotifyTargetState implements core.VectorContext. The native pass has
// already performed the transition; this only keeps the library's view
// of the buffer state accurate.
func (v *vectorContext) NotifyTargetState(t core.Target, state core.ResourceState) {
	if target, ok := t.(*target); ok {
		target.state = state
	}
}

// WrapTarget implements core.VectorContext. All ring positions share
// the session's canvas as the drawing store; the returned surface is a
// weak view, the canvas stays owned by the session.
func (v *vectorContext) WrapTarget(t core.Target, width, height uint32) (core.Surface, error) {
	tg, ok := t.(*target)
	if !ok {
		return nil, errors.New("gpu: foreign target")
	}
	if cw, ch := v.session.canvas.Size(); cw != int(width) || ch != int(height) {
		if err := v.session.canvas.Resize(int(width), int(height)); err != nil {
			return nil, fmt.Errorf("canvas.Resize(): %w", err)
		}
	}
	return &Surface{session: v.session, target: tg}, nil
}

// Flush implements core.VectorContext: render the canvas content onto
// the window surface and signal marker behind it on the shared queue.
func (v *vectorContext) Flush(s core.Surface, marker uint64) error {
	surface, ok := s.(*Surface)
	if !ok {
		return errors.New("gpu: foreign surface")
	}
	if surface.released {
		return errors.New("gpu: flush on released surface")
	}
	dc := v.session.frame
	if dc == nil {
		return ErrNoActiveFrame
	}

	view := dc.SurfaceView()
	width, height := dc.SurfaceSize()
	if err := v.session.canvas.RenderDirect(gpucontext.NewTextureView(unsafe.Pointer(view)), width, height); err != nil {
		return fmt.Errorf("canvas.RenderDirect(): %w", err)
	}

	if err := v.session.fence.signal(marker); err != nil {
		return err
	}
	v.session.fence.retire(marker)

	surface.target.state = core.StatePresent
	v.session.flushed = true
	return nil
}

// FlushSync implements core.VectorContext: push any pending library
// work to the GPU and drain the queue.
func (v *vectorContext) FlushSync() error {
	if _, err := v.session.canvas.Flush(); err != nil {
		return fmt.Errorf("canvas.Flush(): %w", err)
	}
	v.session.fence.retireAll()
	return nil
}

// Surface is the library-side view of one swap chain target. It shares
// the session's canvas; releasing it does not release the canvas.
type Surface struct {
	session  *Session
	target   *target
	released bool
}

// Draw runs fn against the surface's drawing context. Paint callbacks
// use this to issue gg commands for the current frame.
func (s *Surface) Draw(fn func(cc *gg.Context)) error {
	if s.released {
		return errors.New("gpu: draw on released surface")
	}
	return s.session.canvas.Draw(fn)
}

// Size returns the surface dimensions in pixels.
func (s *Surface) Size() (width, height uint32) {
	return s.target.width, s.target.height
}

// Release implements core.Surface.
func (s *Surface) Release() {
	s.released = true
}
