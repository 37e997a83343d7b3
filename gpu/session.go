// Package gpu implements the frame controller's collaborators on top of
// the gogpu window surface and the gg vector-graphics library.
//
// The windowing layer owns the real presentable buffers and flips them
// when the draw callback returns; this package maintains the logical
// ring, command-recording gates and completion markers the lifecycle
// protocol needs on top of that. The queue is in-order and retires
// submissions before control returns to the caller, so GPU-side marker
// waits are satisfied structurally; the fence still enforces the
// protocol on the CPU side.
package gpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/integration/ggcanvas"
	"github.com/gogpu/gogpu"
	"github.com/gogpu/gpucontext"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/slate/core"
)

// DefaultWaitTimeout bounds fence waits when the configuration leaves
// the budget unset. Generous, because expiry is treated as device loss.
const DefaultWaitTimeout = 5 * time.Second

var (
	// ErrNoActiveFrame is returned when a submission is attempted
	// outside a BeginFrame/EndFrame pair.
	ErrNoActiveFrame = errors.New("gpu: no active frame")

	// ErrSessionClosed is returned from operations on a closed session.
	ErrSessionClosed = errors.New("gpu: session closed")
)

// NewSession creates a rendering session over the window's GPU device.
// The provider comes from gogpu.App.GPUContextProvider and is available
// once the window exists.
func NewSession(provider gpucontext.DeviceProvider, cfg core.RendererConfiguration) (*Session, error) {
	if provider == nil {
		return nil, errors.New("gpu: nil device provider")
	}

	canvas, err := ggcanvas.New(provider, int(cfg.ScreenWidth), int(cfg.ScreenHeight))
	if err != nil {
		return nil, fmt.Errorf("ggcanvas.New(): %w", err)
	}

	timeout := cfg.WaitTimeout
	if timeout == 0 {
		timeout = DefaultWaitTimeout
	}

	s := &Session{
		provider: provider,
		canvas:   canvas,
		length:   int(cfg.SwapchainSize),
		width:    cfg.ScreenWidth,
		height:   cfg.ScreenHeight,
	}
	s.fence = newFence(timeout)
	s.swap = &swapChain{session: s}
	s.queue = &queue{session: s}
	s.vector = &vectorContext{session: s}

	log.WithFields(log.Fields{
		"swapchain": s.length,
		"size":      fmt.Sprintf("%dx%d", s.width, s.height),
	}).Info("GPU session created")
	return s, nil
}

// Session owns the shared device-side state: the gg canvas aliasing the
// window surface, the fence, and the per-frame window context handle.
// The canvas is the single source of truth for the shared pixel buffer;
// the surfaces handed to the controller are weak views onto it.
type Session struct {
	provider gpucontext.DeviceProvider
	canvas   *ggcanvas.Canvas
	fence    *fence
	swap     *swapChain
	queue    *queue
	vector   *vectorContext

	length        int
	width, height uint32

	// frame is the window context for the draw callback currently on
	// the stack, nil between frames.
	frame   *gogpu.Context
	flushed bool
	cleared bool

	closed bool
}

// BeginFrame binds the window context for the current draw callback and
// reports the surface size the window system currently has, so the
// caller can coalesce a resize before rendering.
func (s *Session) BeginFrame(dc *gogpu.Context) (width, height uint32) {
	s.frame = dc
	s.flushed = false
	s.cleared = false
	w, h := dc.Width(), dc.Height()
	if w < 0 || h < 0 {
		return 0, 0
	}
	return uint32(w), uint32(h)
}

// EndFrame unbinds the window context. The windowing layer presents the
// flipped buffer after the draw callback returns.
func (s *Session) EndFrame() {
	s.frame = nil
}

// Backend reports the GPU backend in use, known once a frame is active.
func (s *Session) Backend() string {
	if s.frame == nil {
		return "unknown"
	}
	return fmt.Sprint(s.frame.Backend())
}

// Info describes the session for diagnostics.
func (s *Session) Info() SessionInfo {
	return SessionInfo{
		Backend:       s.Backend(),
		SwapchainSize: s.length,
		Width:         s.width,
		Height:        s.height,
	}
}

// SwapChain returns the logical ring adapter.
func (s *Session) SwapChain() core.SwapChain { return s.swap }

// Queue returns the submission queue adapter.
func (s *Session) Queue() core.Queue { return s.queue }

// Fence returns the completion marker fence.
func (s *Session) Fence() core.Fence { return s.fence }

// Vector returns the gg-backed vector context.
func (s *Session) Vector() core.VectorContext { return s.vector }

// Close drains the library's GPU work and releases the canvas. The
// caller must have destroyed the frame controller first.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	// Drains the accelerator queue and destroys session-lifetime GPU
	// resources while the device is still alive.
	gg.CloseAccelerator()

	if err := s.canvas.Close(); err != nil {
		return fmt.Errorf("canvas.Close(): %w", err)
	}
	log.Info("GPU session closed")
	return nil
}
