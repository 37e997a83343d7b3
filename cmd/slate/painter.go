package main

import (
	"fmt"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/slate/core"
	"github.com/devblok/slate/gpu"
)

func newFramePainter(face text.Face) *framePainter {
	return &framePainter{face: face}
}

// framePainter draws the demo scene: a rounded border inset from the
// window edges and a greeting with the running frame number.
type framePainter struct {
	face text.Face
}

// Paint implements core.Painter.
func (p *framePainter) Paint(s core.Surface, info core.FrameInfo) {
	surface, ok := s.(*gpu.Surface)
	if !ok {
		log.Error("Painter received a foreign surface")
		return
	}

	err := surface.Draw(func(cc *gg.Context) {
		const inset = 10
		width := float64(info.Width)
		height := float64(info.Height)

		cc.SetRGB(0.4, 0.4, 0.8)
		cc.SetLineWidth(2)
		cc.DrawRoundedRectangle(inset, inset, width-2*inset, height-2*inset, 10)
		cc.Stroke()

		if p.face != nil {
			cc.SetFont(p.face)
			cc.SetRGB(0.9, 0.9, 0.9)
			cc.DrawString(fmt.Sprintf("Hello slate: gogpu+gg frame %d", info.Frame), 40, 40)
		}
	})
	if err != nil {
		log.WithError(err).WithField("frame", info.Frame).Error("Paint failed")
	}
}
