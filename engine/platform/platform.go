package platform

import (
	"github.com/spaghettifunk/hearth/engine/core"
)

// Sink receives what the operating system reports.
type Sink interface {
	ProcessKey(key core.KeyCode, pressed bool)
	ProcessButton(button core.Button, pressed bool)
	ProcessMouseMove(x, y int16)
	ProcessMouseWheel(zDelta int8)
	OnResized(width, height uint16)
	OnClose()
}

// Platform is the window and OS layer.
type Platform interface {
	Startup(applicationName string, x, y, width, height uint32, sink Sink) error
	Shutdown() error
	// PumpMessages dispatches pending OS messages to the sink. It returns
	// false once the platform can no longer run.
	PumpMessages() bool
	// GetAbsoluteTime returns seconds since startup.
	GetAbsoluteTime() float64
	Sleep(ms uint64)
	SwapBuffers()
}

func PlatformRequirement() uint64 {
	return 0
}
