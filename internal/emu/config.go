package emu

// Config contains settings that affect emulation behavior.
type Config struct {
	LimitFPS bool // throttle the Start loop to ~59.7 Hz; headless benchmarking wants false
}
