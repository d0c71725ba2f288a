// Package jeebie ties the CPU, bus and peripherals together into a single
// runnable unit a frontend can drive one frame at a time.
package jeebie

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/valerio/go-jeebie/jeebie/audio"
	"github.com/valerio/go-jeebie/jeebie/cpu"
	"github.com/valerio/go-jeebie/jeebie/memory"
	"github.com/valerio/go-jeebie/jeebie/serial"
	"github.com/valerio/go-jeebie/jeebie/timing"
	"github.com/valerio/go-jeebie/jeebie/video"
)

// Emulator owns the CPU and bus and advances them in whole-frame steps.
type Emulator struct {
	bus *Bus
	cpu *cpu.CPU
}

// New returns an emulator with no cartridge loaded.
func New() *Emulator {
	return &Emulator{
		bus: NewBus(),
		cpu: cpu.New(),
	}
}

// NewWithFile loads a ROM from path and returns an emulator ready to run
// from cycle 0 with IME disabled, matching the post-bootrom handoff state;
// no bootrom image is required since execution starts past it.
func NewWithFile(path string) (*Emulator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jeebie: reading ROM %q: %w", path, err)
	}

	cart := memory.NewCartridgeWithData(data)
	slog.Info("loaded cartridge", "title", cart.Title(), "size", len(data))

	c := cpu.New()
	c.WritePair(cpu.PairAF, 0x01B0)
	c.WritePair(cpu.PairBC, 0x0013)
	c.WritePair(cpu.PairDE, 0x00D8)
	c.WritePair(cpu.PairHL, 0x014D)
	c.SP = 0xFFFE
	c.PC = 0x0100

	return &Emulator{
		bus: &Bus{
			cartridge: cart,
			video:     video.New(),
			ram:       memory.NewRAM(),
			joypad:    memory.NewJoypad(),
			serial:    serial.New(),
			timer:     memory.NewTimer(),
			audio:     audio.New(),
		},
		cpu: c,
	}, nil
}

// RunUntilFrame advances the CPU by one frame's worth of cycles (70224, the
// same budget the bus's video peripheral renders against), counted from the
// CPU's current cycle, and returns the frame it produced. Instructions are
// atomic, so a call can overshoot that budget by part of one instruction;
// the overshoot is not deducted from the next call's budget.
func (e *Emulator) RunUntilFrame() *video.FrameBuffer {
	target := e.cpu.Cycle() + timing.CyclesPerFrame
	e.cpu.RunCycles(e.bus, target)
	return e.currentFrame()
}

// GetCurrentFrame returns the frame as of the CPU's current cycle without
// advancing anything, useful for rendering the very first frame before any
// RunUntilFrame call.
func (e *Emulator) GetCurrentFrame() *video.FrameBuffer {
	return e.currentFrame()
}

func (e *Emulator) currentFrame() *video.FrameBuffer {
	raw := e.bus.Framebuffer(e.cpu.Cycle())
	fb := video.NewFrameBuffer()
	for y := uint(0); y < video.FramebufferHeight; y++ {
		for x := uint(0); x < video.FramebufferWidth; x++ {
			fb.SetPixel(x, y, video.ByteToColor(raw[y*video.FramebufferWidth+x]))
		}
	}
	return fb
}

// SetButtonPressed pushes a physical button's state to the joypad.
func (e *Emulator) SetButtonPressed(b memory.Button, pressed bool) {
	e.bus.Joypad().SetPressed(b, pressed)
}

// Cycle returns the CPU's monotonic cycle counter.
func (e *Emulator) Cycle() uint64 { return e.cpu.Cycle() }
