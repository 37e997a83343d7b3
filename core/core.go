package core

import "errors"

// Package errors. Any collaborator may also return its own errors;
// the controller treats every failure as fatal and propagates it.
var (
	// ErrDeviceLost is returned when a completion marker is not reached
	// within the configured wait budget. The device must be recreated,
	// which this sample does not attempt.
	ErrDeviceLost = errors.New("gpu device lost: completion marker not reached")

	// ErrControllerClosed is returned from operations on a destroyed controller.
	ErrControllerClosed = errors.New("frame controller is destroyed")
)

// PixelSize is a window-system size in physical pixels.
type PixelSize struct {
	Width  uint32
	Height uint32
}

// FrameInfo is passed to the Painter on every frame.
type FrameInfo struct {
	// Frame counts rendered frames, starting at 1.
	Frame uint64

	// Slot is the ring position being rendered this frame.
	Slot int

	Width  uint32
	Height uint32
}

// ResourceState is the usage intent a render target is currently in.
// The GPU API requires targets to be transitioned between these states;
// the vector library only needs to be told about transitions performed
// on its behalf, it never performs them itself here.
type ResourceState int

const (
	// StatePresent means the target is ready to be scanned out.
	StatePresent ResourceState = iota

	// StateRenderTarget means the target accepts draws.
	StateRenderTarget
)

// Target is a presentable surface paired with its render-target view.
// Targets are owned exclusively by the frame controller and released
// before every swap chain resize and at shutdown.
type Target interface {
	// Release drops the native handle. The caller guarantees the GPU
	// no longer references the target.
	Release()
}

// Surface is the vector library's wrapper around a Target. It shares
// the underlying GPU resource with the Target it wraps; the Target side
// stays authoritative and the Surface must be released first.
type Surface interface {
	Release()
}

// Recorder holds the command-recording resources of one frame slot.
// Recorders survive swap chain resizes; only their reset is gated on
// GPU progress.
type Recorder interface {
	// Reset recycles the recording resources. Only legal once the
	// GPU has reached the marker of the slot's previous submission.
	Reset() error
}

// SwapChain is a ring of presentable surfaces. Exactly one is current
// for writing each frame, cycling in strict round-robin order.
type SwapChain interface {
	// Length returns the ring size N.
	Length() int

	// Resize resizes the underlying buffers. All Targets previously
	// handed out must have been released and the queue quiesced.
	Resize(width, height uint32) error

	// Target returns the presentable surface at ring position index.
	Target(index int) (Target, error)

	// Present queues the current surface for display.
	Present() error
}

// Queue is the shared GPU submission queue. Commands are ordered within
// the queue in submission order.
type Queue interface {
	// NewRecorder allocates command-recording resources for one slot.
	NewRecorder() (Recorder, error)

	// SubmitClear records and submits the non-library pass for target:
	// transition present to render-target, clear, bind. The recorder
	// must have been Reset for this frame.
	SubmitClear(r Recorder, t Target) error

	// Signal enqueues a fence signal of marker after prior submissions.
	Signal(marker uint64) error
}

// Fence observes GPU progress through the shared queue. Markers are
// monotonically increasing; a reached marker guarantees every read and
// write submitted before its signal has completed.
type Fence interface {
	// Completed returns the highest marker the GPU has reached.
	Completed() uint64

	// Wait blocks the calling thread until marker is reached, bounded
	// by the implementation's wait budget. Expiry is ErrDeviceLost.
	Wait(marker uint64) error
}

// VectorContext is the rendering library's GPU context. It submits work
// to the same device and queue as the native passes, so cross-submission
// ordering is established with queue-side marker waits, never by blocking
// the CPU between the two submissions.
type VectorContext interface {
	// WaitQueue makes the library's next submission wait, on the GPU
	// timeline, until marker is reached.
	WaitQueue(marker uint64) error

	// NotifyTargetState informs the library of a state transition that
	// was already performed by the native pass. It does not transition.
	NotifyTargetState(t Target, state ResourceState)

	// WrapTarget wraps a swap chain target as a library surface.
	WrapTarget(t Target, width, height uint32) (Surface, error)

	// Flush submits the library's recorded work for s, signalling
	// marker on completion and leaving the target presentable.
	Flush(s Surface, marker uint64) error

	// FlushSync flushes all library work and blocks until the GPU has
	// executed it. Used for quiescence before resize and teardown.
	FlushSync() error
}

// Painter issues vector drawing commands against the frame's surface.
// Implemented by the application; the controller never draws content.
type Painter interface {
	Paint(s Surface, info FrameInfo)
}

// PainterFunc adapts a function to the Painter interface.
type PainterFunc func(s Surface, info FrameInfo)

// Paint implements Painter.
func (f PainterFunc) Paint(s Surface, info FrameInfo) { f(s, info) }
