package core

import "time"

// Configuration defines the global application configuration
type Configuration struct {
	Time     TimeConfiguration
	Renderer RendererConfiguration
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond is the floor frame rate the render loop keeps
	// pumping at even when the window system is idle. Set to 0 to
	// render as fast as presentation allows.
	FramesPerSecond int
}

// RendererConfiguration is used to configure the frame controller
type RendererConfiguration struct {
	// SwapchainSize is the ring length N. At least 2.
	SwapchainSize uint32

	ScreenWidth  uint32
	ScreenHeight uint32

	// WaitTimeout bounds every CPU-side wait for a completion marker.
	// Expiry is treated as device loss and is fatal. Zero selects a
	// generous default rather than an unbounded wait.
	WaitTimeout time.Duration
}
