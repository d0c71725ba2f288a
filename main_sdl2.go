//go:build sdl2

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/urfave/cli"
	"github.com/valerio/go-jeebie/jeebie"
	"github.com/valerio/go-jeebie/jeebie/display"
	"github.com/valerio/go-jeebie/jeebie/memory"
	"github.com/valerio/go-jeebie/jeebie/timing"
	"github.com/valerio/go-jeebie/jeebie/video"
	"github.com/veandco/go-sdl2/sdl"
)

// SDL2Frontend is a windowed alternative to the terminal renderer, built
// only with the sdl2 tag since it requires the SDL2 development libraries.
type SDL2Frontend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	emulator *jeebie.Emulator
	running  bool
}

func newSDL2Frontend(emu *jeebie.Emulator) (*SDL2Frontend, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("sdl2: init: %w", err)
	}

	window, err := sdl.CreateWindow("Jeebie", sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		display.DefaultWindowWidth, display.DefaultWindowHeight, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("sdl2: create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sdl2: create renderer: %w", err)
	}

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGBA8888, sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth, video.FramebufferHeight)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sdl2: create texture: %w", err)
	}

	return &SDL2Frontend{
		window:   window,
		renderer: renderer,
		texture:  texture,
		emulator: emu,
		running:  true,
	}, nil
}

func (s *SDL2Frontend) Run() error {
	defer s.cleanup()

	limiter := timing.NewAdaptiveLimiter()

	for s.running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			s.handleEvent(event)
		}
		if !s.running {
			break
		}

		limiter.WaitForNextFrame()
		fb := s.emulator.RunUntilFrame()
		s.draw(fb)
	}

	return nil
}

func (s *SDL2Frontend) cleanup() {
	slog.Info("cleaning up sdl2 frontend")
	s.texture.Destroy()
	s.renderer.Destroy()
	s.window.Destroy()
	sdl.Quit()
}

func (s *SDL2Frontend) handleEvent(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		s.running = false
	case *sdl.KeyboardEvent:
		button, ok := sdlKeyToButton(e.Keysym.Sym)
		if e.Keysym.Sym == sdl.K_ESCAPE && e.Type == sdl.KEYDOWN {
			s.running = false
			return
		}
		if ok {
			s.emulator.SetButtonPressed(button, e.Type == sdl.KEYDOWN)
		}
	}
}

func sdlKeyToButton(key sdl.Keycode) (memory.Button, bool) {
	switch key {
	case sdl.K_RETURN:
		return memory.ButtonStart, true
	case sdl.K_BACKSPACE:
		return memory.ButtonSelect, true
	case sdl.K_UP:
		return memory.ButtonUp, true
	case sdl.K_DOWN:
		return memory.ButtonDown, true
	case sdl.K_LEFT:
		return memory.ButtonLeft, true
	case sdl.K_RIGHT:
		return memory.ButtonRight, true
	case sdl.K_z:
		return memory.ButtonA, true
	case sdl.K_x:
		return memory.ButtonB, true
	default:
		return 0, false
	}
}

func (s *SDL2Frontend) draw(fb *video.FrameBuffer) {
	data := fb.ToSlice()
	pixels := make([]byte, video.FramebufferWidth*video.FramebufferHeight*4)

	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			src := y*video.FramebufferWidth + x
			dst := src * 4

			r, g, b, a := gbColorToRGBA(data[src])
			pixels[dst] = byte(a)
			pixels[dst+1] = byte(b)
			pixels[dst+2] = byte(g)
			pixels[dst+3] = byte(r)
		}
	}

	s.texture.Update(nil, unsafe.Pointer(&pixels[0]), video.FramebufferWidth*4)
	s.renderer.SetDrawColor(display.GrayscaleBlack, display.GrayscaleBlack, display.GrayscaleBlack, display.FullAlpha)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
}

func gbColorToRGBA(pixel uint32) (r, g, b, a uint32) {
	switch pixel {
	case uint32(video.WhiteColor):
		return display.GrayscaleWhite, display.GrayscaleWhite, display.GrayscaleWhite, display.FullAlpha
	case uint32(video.LightGreyColor):
		return display.GrayscaleLightGray, display.GrayscaleLightGray, display.GrayscaleLightGray, display.FullAlpha
	case uint32(video.DarkGreyColor):
		return display.GrayscaleDarkGray, display.GrayscaleDarkGray, display.GrayscaleDarkGray, display.FullAlpha
	default:
		return display.GrayscaleBlack, display.GrayscaleBlack, display.GrayscaleBlack, display.FullAlpha
	}
}

func init() {
	runSDL2 = func(c *cli.Context) error {
		romPath := c.String("rom")
		if romPath == "" {
			if c.NArg() > 0 {
				romPath = c.Args().Get(0)
			} else {
				return errors.New("no ROM path provided")
			}
		}

		emu, err := jeebie.NewWithFile(romPath)
		if err != nil {
			return err
		}

		frontend, err := newSDL2Frontend(emu)
		if err != nil {
			return err
		}

		return frontend.Run()
	}
}
