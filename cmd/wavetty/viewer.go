package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"wavelab/internal/scene"
	"wavelab/internal/wave"
)

// viewer maps the field onto the terminal, two grid rows per text row.
type viewer struct {
	screen   tcell.Screen
	scene    scene.Scene
	sim      *wave.Simulation
	renderer *wave.Renderer
	probe    *wave.Probe
	mode     wave.RenderMode

	steps    int
	paused   bool
	lastStep time.Duration

	tone *probeTone
}

func newViewer(sc scene.Scene, mode wave.RenderMode, px, py int) (*viewer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.HideCursor()

	v := &viewer{
		screen:   screen,
		scene:    sc,
		renderer: wave.NewRenderer(sc.Config.Width, sc.Config.Height),
		mode:     mode,
		steps:    clampSteps(*stepsFlag),
	}
	if err := v.reset(px, py); err != nil {
		screen.Fini()
		return nil, err
	}
	return v, nil
}

// reset rebuilds the simulation, keeping the probe position.
func (v *viewer) reset(px, py int) error {
	if v.sim != nil {
		v.sim.Close()
	}
	sim, err := wave.New(v.scene.Config)
	if err != nil {
		return fmt.Errorf("scene %s: %w", v.scene.Name, err)
	}
	probe := wave.NewProbe(px, py, 0, traceLength)
	if err := sim.AddProbe(probe); err != nil {
		sim.Close()
		return fmt.Errorf("probe: %w", err)
	}
	v.sim, v.probe = sim, probe
	if v.tone != nil {
		v.tone.follow(probe)
	}
	log.Printf("Scene %s ready: %s", v.scene.Name, sim)
	return nil
}

func (v *viewer) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !v.handleInput(ev) {
				return
			}
		case <-ticker.C:
			if !v.paused {
				start := time.Now()
				v.sim.Run(v.steps)
				v.lastStep = time.Since(start)
			}
			v.draw()
		}
	}
}

// handleInput returns false when the viewer should exit.
//
//	q, Esc, Ctrl-C  quit
//	Space           pause / resume
//	1, 2, 3         direct, absolute, accumulate rendering
//	r               restart the scene
//	-, +            ticks per frame
func (v *viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				v.paused = !v.paused
			case '1':
				v.mode = wave.RenderDirect
			case '2':
				v.mode = wave.RenderAbsolute
			case '3':
				v.mode = wave.RenderAccumulate
			case 'r':
				if err := v.reset(v.probe.X, v.probe.Y); err != nil {
					log.Printf("Reset failed: %v", err)
					return false
				}
			case '-':
				v.steps = clampSteps(v.steps - 1)
			case '+', '=':
				v.steps = clampSteps(v.steps + 1)
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// draw samples the rendered frame nearest-neighbour onto the terminal. The
// last text row holds the status line.
func (v *viewer) draw() {
	f := v.sim.Field()
	pix := v.renderer.RGBA(f, v.mode)
	cols, rows := v.screen.Size()
	rows--
	if cols <= 0 || rows <= 0 {
		return
	}
	v.screen.Clear()

	sub := rows * 2
	pixel := func(cx, sy int) tcell.Color {
		gx := cx * f.Width / cols
		gy := sy * f.Height / sub
		i := (gy*f.Width + gx) * 4
		return tcell.NewRGBColor(int32(pix[i]), int32(pix[i+1]), int32(pix[i+2]))
	}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			style := tcell.StyleDefault.Foreground(pixel(x, 2*y)).Background(pixel(x, 2*y+1))
			v.screen.SetContent(x, y, '▀', nil, style)
		}
	}

	// Probe marker.
	mx := v.probe.X * cols / f.Width
	my := v.probe.Y * sub / f.Height / 2
	if mx < cols && my < rows {
		v.screen.SetContent(mx, my, '+', nil, tcell.StyleDefault.Foreground(tcell.ColorAqua).Background(tcell.ColorBlack))
	}

	state := "run"
	if v.paused {
		state = "pause"
	}
	status := fmt.Sprintf(" %s | tick %d | %s | %s | %dx | %.1fms | probe %+.4f ",
		v.scene.Title, v.sim.TickCount(), state, v.mode, v.steps,
		v.lastStep.Seconds()*1000, v.probe.Latest())
	statusStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	for x, r := range []rune(status) {
		if x >= cols {
			break
		}
		v.screen.SetContent(x, rows, r, nil, statusStyle)
	}
	v.screen.Show()
}

func (v *viewer) cleanup() {
	if v.tone != nil {
		v.tone.close()
	}
	v.screen.Fini()
	if v.sim != nil {
		v.sim.Close()
	}
}

func clampSteps(n int) int {
	return max(1, min(n, maxSteps))
}
