package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/FabianRolfMatthiasNoll/gbemu/internal/emu"
	"github.com/FabianRolfMatthiasNoll/gbemu/internal/ppu"
)

// App presents a running Machine: it blits the frames the emulation
// goroutine publishes, reports key state changes, and forwards save
// requests. The machine runs on its own goroutine; the App only talks to
// it through its channels.
type App struct {
	cfg  Config
	m    *emu.Machine
	tex  *ebiten.Image
	last emu.Buttons
}

func NewApp(cfg Config, m *emu.Machine) *App {
	cfg.Defaults()
	title := cfg.Title
	if t := m.Title(); t != "" {
		title = cfg.Title + " - [" + t + "]"
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(ppu.ScreenWidth*cfg.Scale, ppu.ScreenHeight*cfg.Scale)
	return &App{
		cfg: cfg,
		m:   m,
		tex: ebiten.NewImage(ppu.ScreenWidth, ppu.ScreenHeight),
	}
}

// Run blocks inside the ebiten game loop until the window closes.
func (a *App) Run() error { return ebiten.RunGame(a) }

func (a *App) Update() error {
	b := emu.Buttons{
		A:      ebiten.IsKeyPressed(ebiten.KeyZ),
		B:      ebiten.IsKeyPressed(ebiten.KeyX),
		Start:  ebiten.IsKeyPressed(ebiten.KeyEnter),
		Select: ebiten.IsKeyPressed(ebiten.KeyBackspace),
		Up:     ebiten.IsKeyPressed(ebiten.KeyArrowUp),
		Down:   ebiten.IsKeyPressed(ebiten.KeyArrowDown),
		Left:   ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		Right:  ebiten.IsKeyPressed(ebiten.KeyArrowRight),
	}
	if b != a.last {
		a.m.PushInput(b)
		a.last = b
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		a.m.RequestSave()
	}

	select {
	case frame := <-a.m.Frames():
		a.tex.WritePixels(frame)
	default:
	}
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	screen.DrawImage(a.tex, nil)
}

func (a *App) Layout(outW, outH int) (int, int) {
	return ppu.ScreenWidth, ppu.ScreenHeight
}
