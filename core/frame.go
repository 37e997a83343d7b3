package core

import (
	"errors"
	"fmt"
)

// frameSlot is the per-ring-position state bundle. The marker is the
// completion marker of the slot's last submission, 0 when the slot has
// never been submitted since creation or the last resize.
type frameSlot struct {
	target   Target
	surface  Surface
	recorder Recorder
	marker   uint64
}

// NewFrameController creates a controller over cfg.SwapchainSize frame
// slots and acquires the initial set of render targets. The recorders
// are allocated once and survive resizes; targets and surfaces are
// recreated lock-step with the swap chain.
func NewFrameController(cfg RendererConfiguration, swap SwapChain, queue Queue, fence Fence, vec VectorContext, painter Painter) (*FrameController, error) {
	if cfg.SwapchainSize < 2 {
		return nil, fmt.Errorf("swapchain size %d: need at least 2 buffers", cfg.SwapchainSize)
	}
	if swap.Length() != int(cfg.SwapchainSize) {
		return nil, fmt.Errorf("swapchain reports %d buffers, configured %d", swap.Length(), cfg.SwapchainSize)
	}

	c := &FrameController{
		queue:   queue,
		fence:   fence,
		swap:    swap,
		vec:     vec,
		painter: painter,
		slots:   make([]frameSlot, cfg.SwapchainSize),
		width:   cfg.ScreenWidth,
		height:  cfg.ScreenHeight,
	}

	for i := range c.slots {
		recorder, err := queue.NewRecorder()
		if err != nil {
			return nil, errors.New("queue.NewRecorder(): " + err.Error())
		}
		c.slots[i].recorder = recorder
	}

	if err := c.createSlots(); err != nil {
		return nil, err
	}
	return c, nil
}

// FrameController drives one rendering iteration per RenderFrame call,
// respecting in-flight GPU work, and keeps the render targets consistent
// with the swap chain's current dimensions. All methods must be called
// from the single render thread.
type FrameController struct {
	queue   Queue
	fence   Fence
	swap    SwapChain
	vec     VectorContext
	painter Painter

	slots     []frameSlot
	slotIndex int

	// marker is the last issued completion marker. Strictly increasing
	// for the controller's lifetime, never reset on resize.
	marker uint64

	frame         uint64
	width, height uint32
	pendingResize *PixelSize
	destroyed     bool
}

// nextMarker issues a fresh completion marker.
func (c *FrameController) nextMarker() uint64 {
	c.marker++
	return c.marker
}

// Frame returns the number of frames rendered so far.
func (c *FrameController) Frame() uint64 { return c.frame }

// Size returns the current render target dimensions.
func (c *FrameController) Size() (width, height uint32) { return c.width, c.height }

// NotifyResize records a window size change to be applied at the start
// of the next RenderFrame. Multiple notifications coalesce: only the
// last size is retained. Zero sizes (minimized window) are ignored.
func (c *FrameController) NotifyResize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	c.pendingResize = &PixelSize{Width: width, Height: height}
}

// RenderFrame renders and presents one frame. Any collaborator failure
// is fatal: the error propagates and the controller must be destroyed.
func (c *FrameController) RenderFrame() error {
	if c.destroyed {
		return ErrControllerClosed
	}

	if c.pendingResize != nil {
		size := *c.pendingResize
		if err := c.releaseSlots(); err != nil {
			return err
		}
		if err := c.swap.Resize(size.Width, size.Height); err != nil {
			return errors.New("swapchain.Resize(): " + err.Error())
		}
		c.width, c.height = size.Width, size.Height
		if err := c.createSlots(); err != nil {
			return err
		}
		c.pendingResize = nil
	}

	c.frame++
	slot := &c.slots[c.slotIndex]
	info := FrameInfo{
		Frame:  c.frame,
		Slot:   c.slotIndex,
		Width:  c.width,
		Height: c.height,
	}
	c.slotIndex = (c.slotIndex + 1) % len(c.slots)

	// The slot's previous submission may still be in flight; its
	// recording resources cannot be touched until the GPU is done.
	if slot.marker != 0 {
		if err := c.fence.Wait(slot.marker); err != nil {
			return err
		}
	}
	if err := slot.recorder.Reset(); err != nil {
		return errors.New("recorder.Reset(): " + err.Error())
	}

	// Non-library pass: transition, clear, bind, submit, signal.
	clearMarker := c.nextMarker()
	slot.marker = clearMarker
	if err := c.queue.SubmitClear(slot.recorder, slot.target); err != nil {
		return errors.New("queue.SubmitClear(): " + err.Error())
	}
	if err := c.queue.Signal(clearMarker); err != nil {
		return errors.New("queue.Signal(): " + err.Error())
	}

	// Library pass. The library's commands must not begin before the
	// clear finishes; that ordering lives on the GPU timeline, the CPU
	// does not block between the two submissions.
	if err := c.vec.WaitQueue(clearMarker); err != nil {
		return errors.New("vector.WaitQueue(): " + err.Error())
	}
	c.vec.NotifyTargetState(slot.target, StateRenderTarget)

	c.painter.Paint(slot.surface, info)

	flushMarker := c.nextMarker()
	slot.marker = flushMarker
	if err := c.vec.Flush(slot.surface, flushMarker); err != nil {
		return errors.New("vector.Flush(): " + err.Error())
	}

	if err := c.swap.Present(); err != nil {
		return errors.New("swapchain.Present(): " + err.Error())
	}
	return nil
}

// Flush brings every slot to rest: all library work is flushed with a
// CPU-side sync, then a final marker is signalled and waited on so that
// every prior submission on the shared queue is provably complete.
func (c *FrameController) Flush() error {
	if err := c.vec.FlushSync(); err != nil {
		return errors.New("vector.FlushSync(): " + err.Error())
	}
	marker := c.nextMarker()
	if err := c.queue.Signal(marker); err != nil {
		return errors.New("queue.Signal(): " + err.Error())
	}
	if err := c.fence.Wait(marker); err != nil {
		return err
	}
	return nil
}

// releaseSlots quiesces the GPU and drops every slot's target-dependent
// resources. Recorders are kept; markers are cleared because nothing of
// the old targets remains in flight afterwards.
func (c *FrameController) releaseSlots() error {
	if err := c.Flush(); err != nil {
		return err
	}
	for i := range c.slots {
		slot := &c.slots[i]
		if slot.surface != nil {
			slot.surface.Release()
			slot.surface = nil
		}
		if slot.target != nil {
			slot.target.Release()
			slot.target = nil
		}
		slot.marker = 0
	}
	c.slotIndex = 0
	return nil
}

// createSlots pairs every ring position with its swap chain target and
// a library surface wrapping the same buffer.
func (c *FrameController) createSlots() error {
	for i := range c.slots {
		target, err := c.swap.Target(i)
		if err != nil {
			return fmt.Errorf("swapchain.Target(%d): %s", i, err.Error())
		}
		surface, err := c.vec.WrapTarget(target, c.width, c.height)
		if err != nil {
			target.Release()
			return fmt.Errorf("vector.WrapTarget(%d): %s", i, err.Error())
		}
		c.slots[i].target = target
		c.slots[i].surface = surface
	}
	return nil
}

// Destroy flushes all in-flight work and releases every slot. The
// controller is unusable afterwards. Safe to call more than once.
func (c *FrameController) Destroy() error {
	if c.destroyed {
		return nil
	}
	err := c.releaseSlots()
	c.destroyed = true
	return err
}
