package gpu

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/devblok/slate/core"
)

// swapChain is the logical ring over the window's presentable buffers.
// The windowing layer resizes and flips the native buffers itself; the
// adapter keeps the slot-to-buffer pairing and enforces that resize only
// happens quiesced and with no targets alive.
type swapChain struct {
	session *Session
	alive   int
}

// Length implements core.SwapChain.
func (s *swapChain) Length() int { return s.session.length }

// Resize implements core.SwapChain.
func (s *swapChain) Resize(width, height uint32) error {
	if s.alive != 0 {
		return fmt.Errorf("gpu: resize with %d targets alive", s.alive)
	}
	f := s.session.fence
	f.mu.Lock()
	drained := f.completed == f.signalled
	f.mu.Unlock()
	if !drained {
		return errors.New("gpu: resize with work in flight")
	}

	s.session.width, s.session.height = width, height
	log.WithField("size", fmt.Sprintf("%dx%d", width, height)).Debug("swapchain resized")
	return nil
}

// Target implements core.SwapChain.
func (s *swapChain) Target(index int) (core.Target, error) {
	if index < 0 || index >= s.session.length {
		return nil, fmt.Errorf("gpu: target index %d out of range", index)
	}
	s.alive++
	return &target{
		chain:  s,
		index:  index,
		width:  s.session.width,
		height: s.session.height,
		state:  core.StatePresent,
	}, nil
}

// Present implements core.SwapChain. The actual flip is performed by
// the windowing layer when the draw callback returns; Present checks
// the frame actually reached the surface first.
func (s *swapChain) Present() error {
	if s.session.frame == nil {
		return ErrNoActiveFrame
	}
	if !s.session.flushed {
		return errors.New("gpu: present before library flush")
	}
	return nil
}

// target is one ring position of the swap chain, tracking the resource
// state the protocol believes the underlying buffer is in.
type target struct {
	chain         *swapChain
	index         int
	width, height uint32
	state         core.ResourceState
	released      bool
}

// Release implements core.Target.
func (t *target) Release() {
	if t.released {
		return
	}
	t.released = true
	t.chain.alive--
}
