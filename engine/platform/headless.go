package platform

import (
	"time"

	"github.com/spaghettifunk/hearth/engine/containers"
	"github.com/spaghettifunk/hearth/engine/core"
)

type MessageKind uint8

const (
	MessageKey MessageKind = iota
	MessageButton
	MessageMouseMove
	MessageMouseWheel
	MessageResize
	MessageClose
)

// Message is an OS message queued on a Headless platform.
type Message struct {
	Kind    MessageKind
	Key     core.KeyCode
	Button  core.Button
	Pressed bool
	X, Y    int16
	ZDelta  int8
	Width   uint16
	Height  uint16
}

// Headless is a platform without a window. Messages injected with Post are
// delivered on the next PumpMessages.
type Headless struct {
	queue   *containers.RingQueue[Message]
	sink    Sink
	start   time.Time
	running bool
	Swaps   uint64
}

func NewHeadless(queueSize int) *Headless {
	return &Headless{queue: containers.NewRingQueue[Message](queueSize)}
}

func (h *Headless) Startup(applicationName string, x, y, width, height uint32, sink Sink) error {
	h.sink = sink
	h.start = time.Now()
	h.running = true
	core.LogInfo("headless platform started for %s (%dx%d)", applicationName, width, height)
	return nil
}

func (h *Headless) Shutdown() error {
	h.running = false
	h.sink = nil
	return nil
}

// Post queues a message. It fails when the queue is full.
func (h *Headless) Post(msg Message) error {
	return h.queue.Enqueue(msg)
}

func (h *Headless) PumpMessages() bool {
	if !h.running {
		return false
	}
	for !h.queue.IsEmpty() {
		msg, err := h.queue.Dequeue()
		if err != nil {
			break
		}
		h.dispatch(msg)
	}
	return h.running
}

func (h *Headless) dispatch(msg Message) {
	if h.sink == nil {
		return
	}
	switch msg.Kind {
	case MessageKey:
		h.sink.ProcessKey(msg.Key, msg.Pressed)
	case MessageButton:
		h.sink.ProcessButton(msg.Button, msg.Pressed)
	case MessageMouseMove:
		h.sink.ProcessMouseMove(msg.X, msg.Y)
	case MessageMouseWheel:
		h.sink.ProcessMouseWheel(msg.ZDelta)
	case MessageResize:
		h.sink.OnResized(msg.Width, msg.Height)
	case MessageClose:
		h.sink.OnClose()
	}
}

func (h *Headless) GetAbsoluteTime() float64 {
	return time.Since(h.start).Seconds()
}

func (h *Headless) Sleep(ms uint64) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

func (h *Headless) SwapBuffers() {
	h.Swaps++
}
