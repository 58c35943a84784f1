package emu

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/FabianRolfMatthiasNoll/gbemu/internal/bus"
	"github.com/FabianRolfMatthiasNoll/gbemu/internal/cart"
	"github.com/FabianRolfMatthiasNoll/gbemu/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/gbemu/internal/ppu"
)

// Buttons is one input snapshot from the presenter.
type Buttons struct {
	A, B, Start, Select   bool
	Up, Down, Left, Right bool
}

// The four DMG shades as RGBA, lightest first.
var shadeRGBA = [4][4]byte{
	{0xFF, 0xFF, 0xFF, 0xFF},
	{0xAA, 0xAA, 0xAA, 0xFF},
	{0x55, 0x55, 0x55, 0xFF},
	{0x00, 0x00, 0x00, 0xFF},
}

// frameDuration is the hardware refresh period (~59.7 Hz).
var frameDuration = time.Duration(float64(time.Second.Nanoseconds()) / 59.7)

// Machine owns the emulated devices and drives them from the CPU's clock.
// The presenter talks to a running Machine exclusively through bounded
// channels: completed frames out, input snapshots and save requests in.
type Machine struct {
	cfg Config

	cart cart.Cartridge
	bus  *bus.Bus
	cpu  *cpu.CPU

	title string

	fb []byte // RGBA 160x144*4

	frames  chan []byte
	input   chan Buttons
	saveReq chan struct{}
	running atomic.Bool
	done    chan struct{}
}

func New(cfg Config) *Machine {
	return &Machine{
		cfg:     cfg,
		fb:      make([]byte, ppu.ScreenWidth*ppu.ScreenHeight*4),
		frames:  make(chan []byte, 1),
		input:   make(chan Buttons, 1),
		saveReq: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// LoadCartridge parses the header, builds the MBC, and wires a fresh bus
// and CPU around it. romPath may be empty (no battery persistence).
func (m *Machine) LoadCartridge(rom []byte, romPath string) error {
	h, err := cart.ParseHeader(rom)
	if err != nil {
		return fmt.Errorf("load cartridge: %w", err)
	}
	c, err := cart.New(rom, romPath)
	if err != nil {
		return fmt.Errorf("load cartridge: %w", err)
	}
	log.Printf("ROM: %q licensee=%q type=%s banks=%d ram=%dB checksum_ok=%v",
		h.Title, h.Licensee, h.CartTypeStr, h.ROMBanks, h.RAMSizeBytes,
		cart.HeaderChecksumOK(rom))

	m.cart = c
	m.title = h.Title
	m.bus = bus.New(c)
	m.cpu = cpu.New(m.bus)
	return nil
}

// Title returns the cartridge title for the window caption.
func (m *Machine) Title() string { return m.title }

// Bus exposes the bus for tests.
func (m *Machine) Bus() *bus.Bus { return m.bus }

// CPU exposes the CPU for tests.
func (m *Machine) CPU() *cpu.CPU { return m.cpu }

// StepFrame runs the machine until the PPU completes one frame and
// converts the shade buffer to RGBA.
func (m *Machine) StepFrame() {
	p := m.bus.PPU()
	for !p.TakeFrame() {
		m.cpu.Step()
	}
	m.blit(p)
}

func (m *Machine) blit(p *ppu.PPU) {
	shades := p.Framebuffer()
	for i, s := range shades {
		copy(m.fb[i*4:], shadeRGBA[s&3][:])
	}
}

// Framebuffer returns the RGBA buffer of the last completed frame.
func (m *Machine) Framebuffer() []byte { return m.fb }

// SetButtons applies an input snapshot directly (headless/synchronous use).
func (m *Machine) SetButtons(b Buttons) {
	var mask byte
	if b.Right {
		mask |= bus.JoypRight
	}
	if b.Left {
		mask |= bus.JoypLeft
	}
	if b.Up {
		mask |= bus.JoypUp
	}
	if b.Down {
		mask |= bus.JoypDown
	}
	if b.A {
		mask |= bus.JoypA
	}
	if b.B {
		mask |= bus.JoypB
	}
	if b.Select {
		mask |= bus.JoypSelectBtn
	}
	if b.Start {
		mask |= bus.JoypStart
	}
	m.bus.SetJoypadState(mask)
}

// Frames is the presenter's frame channel: capacity one, newest frame
// dropped when the presenter lags (VBlank pacing throttles the producer).
func (m *Machine) Frames() <-chan []byte { return m.frames }

// PushInput publishes an input snapshot; latest wins.
func (m *Machine) PushInput(b Buttons) {
	select {
	case <-m.input:
	default:
	}
	m.input <- b
}

// RequestSave asks the run loop to flush battery RAM at the next frame
// boundary.
func (m *Machine) RequestSave() {
	select {
	case m.saveReq <- struct{}{}:
	default:
	}
}

// Start launches the emulation loop on its own goroutine.
func (m *Machine) Start() {
	m.running.Store(true)
	go m.run()
}

// Stop ends the loop cooperatively and waits for it to flush and exit.
func (m *Machine) Stop() {
	if m.running.CompareAndSwap(true, false) {
		<-m.done
	}
}

// run drives the machine until Stop: one frame per iteration, then sleep
// whatever remains of the 1/59.7 s budget. Battery RAM is flushed before
// returning.
func (m *Machine) run() {
	defer close(m.done)

	last := time.Now()
	for m.running.Load() {
		select {
		case b := <-m.input:
			m.SetButtons(b)
		default:
		}
		select {
		case <-m.saveReq:
			m.saveCart()
		default:
		}

		m.StepFrame()

		// Hand the presenter an immutable copy; drop the frame when the
		// previous one was not consumed yet.
		frame := make([]byte, len(m.fb))
		copy(frame, m.fb)
		select {
		case m.frames <- frame:
		default:
		}

		if m.cfg.LimitFPS {
			elapsed := time.Since(last)
			if elapsed < frameDuration {
				time.Sleep(frameDuration - elapsed)
			}
			last = time.Now()
		}
	}
	m.saveCart()
}

func (m *Machine) saveCart() {
	if m.cart == nil {
		return
	}
	if err := m.cart.Save(); err != nil {
		log.Printf("save: %v", err)
	}
}
