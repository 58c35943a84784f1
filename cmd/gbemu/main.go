package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/FabianRolfMatthiasNoll/gbemu/internal/emu"
	"github.com/FabianRolfMatthiasNoll/gbemu/internal/ui"
)

type cliFlags struct {
	ROMPath string
	Scale   int
	Title   string

	// headless
	Headless bool
	Frames   int
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.IntVar(&f.Scale, "scale", 3, "window scale")
	flag.StringVar(&f.Title, "title", "gbemu", "window title")
	flag.BoolVar(&f.Headless, "headless", false, "run without a window")
	flag.IntVar(&f.Frames, "frames", 300, "frames to run in headless mode")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <rom>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	f.ROMPath = flag.Arg(0)
	return f
}

func runHeadless(m *emu.Machine, frames int) {
	if frames <= 0 {
		frames = 1
	}
	start := time.Now()
	for i := 0; i < frames; i++ {
		m.StepFrame()
	}
	dur := time.Since(start)
	log.Printf("headless: frames=%d elapsed=%s fps=%.2f",
		frames, dur.Truncate(time.Millisecond), float64(frames)/dur.Seconds())
}

func main() {
	f := parseFlags()
	if f.ROMPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	rom, err := os.ReadFile(f.ROMPath)
	if err != nil {
		log.Fatalf("read ROM: %v", err)
	}

	romPath := f.ROMPath
	if abs, err := filepath.Abs(f.ROMPath); err == nil {
		romPath = abs
	}

	m := emu.New(emu.Config{LimitFPS: !f.Headless})
	if err := m.LoadCartridge(rom, romPath); err != nil {
		log.Fatalf("load cartridge: %v", err)
	}

	if f.Headless {
		runHeadless(m, f.Frames)
		return
	}

	m.Start()
	app := ui.NewApp(ui.Config{Title: f.Title, Scale: f.Scale}, m)
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
	// Window closed: stop the emulation loop; it flushes battery RAM on
	// the way out.
	m.Stop()
}
