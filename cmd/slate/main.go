package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/gobuffalo/envy"
	_ "github.com/gogpu/gg/gpu" // register the GPU accelerator
	"github.com/gogpu/gogpu"
	"github.com/gogpu/gpucontext"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/slate/core"
	"github.com/devblok/slate/gpu"
)

func init() {
	runtime.LockOSThread()
}

var probe = flag.Bool("probe", false, "print the GPU session info as JSON after setup and exit")

func configure() core.Configuration {
	return core.Configuration{
		Time: core.TimeConfiguration{
			FramesPerSecond: envInt("SLATE_FPS", 60),
		},
		Renderer: core.RendererConfiguration{
			ScreenWidth:   uint32(envInt("SLATE_WIDTH", 800)),
			ScreenHeight:  uint32(envInt("SLATE_HEIGHT", 600)),
			SwapchainSize: uint32(envInt("SLATE_SWAPCHAIN", 2)),
			WaitTimeout:   gpu.DefaultWaitTimeout,
		},
	}
}

func envInt(name string, fallback int) int {
	value, err := strconv.Atoi(envy.Get(name, strconv.Itoa(fallback)))
	if err != nil {
		log.WithFields(log.Fields{
			"variable": name,
			"fallback": fallback,
		}).Warn("Ignoring unparseable override")
		return fallback
	}
	return value
}

func main() {
	flag.Parse()

	configuration := configure()
	timer := core.NewTime(configuration.Time)
	defer timer.Stop()

	app := gogpu.NewApp(gogpu.DefaultConfig().
		WithTitle("Slate").
		WithSize(int(configuration.Renderer.ScreenWidth), int(configuration.Renderer.ScreenHeight)).
		WithContinuousRender(true))

	painter := newFramePainter(loadFace())

	var (
		session    *gpu.Session
		controller *core.FrameController
		ready      bool
	)

	app.OnDraw(func(dc *gogpu.Context) {
		if session == nil {
			provider := app.GPUContextProvider()
			if provider == nil {
				return
			}

			var err error
			session, err = gpu.NewSession(provider, configuration.Renderer)
			if err != nil {
				log.WithError(err).Error("GPU session setup failed")
				app.Quit()
				return
			}
			controller, err = core.NewFrameController(
				configuration.Renderer,
				session.SwapChain(),
				session.Queue(),
				session.Fence(),
				session.Vector(),
				painter,
			)
			if err != nil {
				log.WithError(err).Error("Frame controller setup failed")
				app.Quit()
				return
			}
		}

		width, height := session.BeginFrame(dc)
		defer session.EndFrame()

		if !ready {
			ready = true
			log.WithFields(log.Fields{
				"backend":   session.Backend(),
				"swapchain": configuration.Renderer.SwapchainSize,
			}).Info("Renderer ready")

			if *probe {
				out, err := json.MarshalIndent(session.Info(), "", "  ")
				if err != nil {
					log.WithError(err).Error("Probe output failed")
				} else {
					fmt.Println(string(out))
				}
				app.Quit()
				return
			}
		}

		if width == 0 || height == 0 {
			return
		}

		// Frame rate cap. The window system drives OnDraw at VSync,
		// anything above the configured rate is skipped.
		select {
		case <-timer.FpsTicker().C:
		default:
			return
		}

		if curW, curH := controller.Size(); width != curW || height != curH {
			controller.NotifyResize(width, height)
		}

		if err := controller.RenderFrame(); err != nil {
			log.WithError(err).Error("Frame failed, shutting down")
			app.Quit()
		}
	})

	app.EventSource().OnKeyPress(func(key gpucontext.Key, _ gpucontext.Modifiers) {
		if key == gpucontext.KeyEscape {
			app.Quit()
		}
	})

	app.OnClose(func() {
		if controller != nil {
			if err := controller.Destroy(); err != nil {
				log.WithError(err).Error("Frame controller teardown failed")
			}
		}
		if session != nil {
			if err := session.Close(); err != nil {
				log.WithError(err).Error("GPU session teardown failed")
			}
		}
	})

	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
	os.Exit(0)
}
