package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli"
	"github.com/valerio/go-jeebie/jeebie"
	"github.com/valerio/go-jeebie/jeebie/memory"
	"github.com/valerio/go-jeebie/jeebie/textrender"
	"github.com/valerio/go-jeebie/jeebie/timing"
	"github.com/valerio/go-jeebie/jeebie/video"
)

const (
	// Game Boy screen dimensions
	width  = 160
	height = 144

	// Since terminal characters are taller than wide, we'll scale the width more
	// to maintain approximate aspect ratio
	scaleX = 2 // Each pixel becomes 2 characters wide
	scaleY = 1 // Each pixel becomes 1 character tall
)

// Characters to represent different shades of gray
// From darkest to lightest.
var shadeChars = []rune{'█', '▓', '▒', '░'}

// keyMap maps terminal key runes to Game Boy buttons. Arrow/Enter/Backspace
// are handled separately since tcell reports them as named keys, not runes.
var keyMap = map[rune]memory.Button{
	'z': memory.ButtonA,
	'x': memory.ButtonB,
}

type TerminalRenderer struct {
	screen   tcell.Screen
	emulator *jeebie.Emulator
	running  bool
}

func NewTerminalRenderer(emu *jeebie.Emulator) (*TerminalRenderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}

	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}

	return &TerminalRenderer{
		screen:   screen,
		emulator: emu,
		running:  true,
	}, nil
}

func (t *TerminalRenderer) Run() error {
	defer func() {
		slog.Info("Finishing terminal")
		t.screen.Fini()
	}()

	// Set up screen
	t.screen.SetStyle(tcell.StyleDefault.
		Background(tcell.ColorBlack).
		Foreground(tcell.ColorWhite))
	t.screen.Clear()

	// Handle input in a separate goroutine
	go t.handleInput()

	// Main render loop, paced by a drift-compensating limiter rather than a
	// bare ticker so long-running sessions don't slowly drift off the Game
	// Boy's real ~59.7 FPS.
	limiter := timing.NewAdaptiveLimiter()

	// catch SIGINT and SIGTERM
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		slog.Info("Received signal to stop")
		t.running = false
	}()

	for t.running {
		limiter.WaitForNextFrame()
		if !t.running {
			break
		}
		fb := t.emulator.RunUntilFrame()
		t.render(fb)
		t.screen.Show()
	}

	return nil
}

func (t *TerminalRenderer) handleInput() {
	for t.running {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			t.handleKey(ev)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

// handleKey presses the mapped button for this event and releases it again
// almost immediately; tcell delivers no key-up events over an SSH/tty
// session, so every keypress is modeled as a single-frame tap rather than a
// held button.
func (t *TerminalRenderer) handleKey(ev *tcell.EventKey) {
	var button memory.Button
	var ok bool

	switch ev.Key() {
	case tcell.KeyEscape:
		t.running = false
		return
	case tcell.KeyEnter:
		button, ok = memory.ButtonStart, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		button, ok = memory.ButtonSelect, true
	case tcell.KeyUp:
		button, ok = memory.ButtonUp, true
	case tcell.KeyDown:
		button, ok = memory.ButtonDown, true
	case tcell.KeyLeft:
		button, ok = memory.ButtonLeft, true
	case tcell.KeyRight:
		button, ok = memory.ButtonRight, true
	case tcell.KeyRune:
		button, ok = keyMap[ev.Rune()]
	}

	if !ok {
		return
	}

	t.emulator.SetButtonPressed(button, true)
	go func() {
		time.Sleep(16 * time.Millisecond)
		t.emulator.SetButtonPressed(button, false)
	}()
}

func (t *TerminalRenderer) render(fb *video.FrameBuffer) {
	frame := fb.ToSlice()

	// Clear screen with background color
	t.screen.Clear()

	// Render each pixel
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Get pixel value (assuming it's a 32-bit color where higher values = lighter)
			pixel := frame[y*width+x]
			// Convert to shade index (4 shades, so divide by 64 to get 0-3)
			shade := 3 - (pixel>>24)/64 // Invert so higher values = darker
			if shade > 3 {
				shade = 3
			}

			// Draw scaled pixel
			style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
			char := shadeChars[shade]

			// Draw the character repeated scaleX times
			screenX := x * scaleX
			screenY := y * scaleY
			for sx := 0; sx < scaleX; sx++ {
				t.screen.SetContent(screenX+sx, screenY, char, nil, style)
			}
		}
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "Jeebie"
	app.Description = "A simple gameboy emulator"
	app.Usage = "jeebie [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Rendering backend: terminal or sdl2 (sdl2 requires a build with the sdl2 tag)",
			Value: "terminal",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a rendering backend and dump the final frame as text",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode",
			Value: 60,
		},
	}
	app.Action = runEmulator

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	if c.Bool("headless") {
		return runHeadless(romPath, c.Int("frames"))
	}

	if c.String("backend") == "sdl2" {
		if runSDL2 == nil {
			return errors.New("this build was compiled without sdl2 support; rebuild with -tags sdl2")
		}
		return runSDL2(c)
	}

	emu, err := jeebie.NewWithFile(romPath)
	if err != nil {
		return err
	}

	renderer, err := NewTerminalRenderer(emu)
	if err != nil {
		return err
	}

	return renderer.Run()
}

// runHeadless advances the emulator by the given number of frames with no
// rendering backend attached and dumps the final frame as half-block text,
// useful for CI or for quickly checking a ROM boots without a terminal.
func runHeadless(romPath string, frames int) error {
	emu, err := jeebie.NewWithFile(romPath)
	if err != nil {
		return err
	}

	var fb *video.FrameBuffer
	for i := 0; i < frames; i++ {
		fb = emu.RunUntilFrame()
	}

	for _, line := range textrender.Lines(fb) {
		fmt.Println(line)
	}

	return nil
}
