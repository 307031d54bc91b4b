package core

import (
	"reflect"
	"slices"
)

type EventContext struct {
	// 128 bytes
	Data struct {
		I64 [2]int64
		U64 [2]uint64
		F64 [2]float64

		I32 [4]int32
		U32 [4]uint32
		F32 [4]float32

		I16 [8]int16
		U16 [8]uint16

		I8 [16]int8
		U8 [16]uint8

		C [16]string
	}
}

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode uint16

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Keyboard key pressed.
	/* Context usage:
	 * u16 key_code = data.Data.U16[0];
	 */
	EVENT_CODE_KEY_PRESSED SystemEventCode = 0x02

	// Keyboard key released.
	/* Context usage:
	 * u16 key_code = data.Data.U16[0];
	 */
	EVENT_CODE_KEY_RELEASED SystemEventCode = 0x03

	// Mouse button pressed.
	/* Context usage:
	 * u16 button = data.Data.U16[0];
	 */
	EVENT_CODE_BUTTON_PRESSED SystemEventCode = 0x04

	// Mouse button released.
	/* Context usage:
	 * u16 button = data.Data.U16[0];
	 */
	EVENT_CODE_BUTTON_RELEASED SystemEventCode = 0x05

	// Mouse moved.
	/* Context usage:
	 * i16 x = data.Data.I16[0];
	 * i16 y = data.Data.I16[1];
	 */
	EVENT_CODE_MOUSE_MOVED SystemEventCode = 0x06

	// Mouse wheel.
	/* Context usage:
	 * i8 z_delta = data.Data.I8[0];
	 */
	EVENT_CODE_MOUSE_WHEEL SystemEventCode = 0x07

	// Resized/resolution changed from the OS.
	/* Context usage:
	 * u16 width = data.Data.U16[0];
	 * u16 height = data.Data.U16[1];
	 */
	EVENT_CODE_RESIZED SystemEventCode = 0x08

	// A watched asset changed on disk.
	/* Context usage:
	 * string resource_type = data.Data.C[0];
	 * string name = data.Data.C[1];
	 * string path = data.Data.C[2];
	 */
	EVENT_CODE_ASSET_CHANGED SystemEventCode = 0x09

	EVENT_CODE_DEBUG0 SystemEventCode = 0x10
	EVENT_CODE_DEBUG1 SystemEventCode = 0x11
	EVENT_CODE_DEBUG2 SystemEventCode = 0x12
	EVENT_CODE_DEBUG3 SystemEventCode = 0x13
	EVENT_CODE_DEBUG4 SystemEventCode = 0x14

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

// This should be more than enough codes...
const MAX_MESSAGE_CODES = 16384

// Should return true if handled.
type FnOnEvent func(code SystemEventCode, sender interface{}, listenerInst interface{}, data EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
	// code pointer of callback, used for identity
	callbackID uintptr
}

type eventCodeEntry struct {
	events []registeredEvent
}

// EventBus dispatches events to the listeners registered for a code.
// Listener lists hold Go func values, so nothing of the bus is placed in the
// subsystem arena.
type EventBus struct {
	// Lookup table for event codes.
	registered [MAX_MESSAGE_CODES]eventCodeEntry
}

func EventBusRequirement() uint64 {
	return 0
}

func NewEventBus() *EventBus {
	LogInfo("Event subsystem initialized.")
	return &EventBus{}
}

func callbackIdentity(fn FnOnEvent) uintptr {
	if fn == nil {
		return 0
	}
	return reflect.ValueOf(fn).Pointer()
}

// sameListener compares listener identities without panicking on types that
// are not comparable. Slices and maps match when they share backing storage,
// other uncomparable values never match.
func sameListener(a, b interface{}) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta == nil || ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ta.Kind() {
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	}
	return false
}

/**
 * Register to listen for when events are sent with the provided code. Events with duplicate
 * listener/callback combos will not be registered again and will cause this to return false.
 * Two closures built from the same function literal share a code pointer and count as the
 * same callback for the same listener.
 * @param code The event code to listen for.
 * @param listener A listener instance. Can be nil.
 * @param onEvent The callback to be invoked when the event code is fired.
 * @returns true if the event is successfully registered; otherwise false.
 */
func (eb *EventBus) Register(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if eb == nil {
		return false
	}
	if int(code) >= MAX_MESSAGE_CODES || onEvent == nil {
		LogWarn("event register rejected for code %d", code)
		return false
	}
	id := callbackIdentity(onEvent)
	entry := &eb.registered[code]
	for _, e := range entry.events {
		if sameListener(e.listener, listener) && e.callbackID == id {
			LogWarn("listener already registered for event code %d", code)
			return false
		}
	}
	// If at this point, no duplicate was found. Proceed with registration.
	entry.events = append(entry.events, registeredEvent{
		listener:   listener,
		callback:   onEvent,
		callbackID: id,
	})
	return true
}

/**
 * Unregister from listening for when events are sent with the provided code. If no matching
 * registration is found, this function returns false.
 * @param code The event code to stop listening for.
 * @param listener A listener instance. Can be nil.
 * @param onEvent The callback to be unregistered.
 * @returns true if the event is successfully unregistered; otherwise false.
 */
func (eb *EventBus) Unregister(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if eb == nil || int(code) >= MAX_MESSAGE_CODES {
		return false
	}
	entry := &eb.registered[code]
	// On nothing is registered for the code, boot out.
	if len(entry.events) == 0 {
		return false
	}
	id := callbackIdentity(onEvent)
	for i, e := range entry.events {
		if sameListener(e.listener, listener) && e.callbackID == id {
			// Found one, remove it and keep the rest in order.
			entry.events = slices.Delete(entry.events, i, i+1)
			return true
		}
	}
	// Not found.
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 * @param code The event code to fire.
 * @param sender The sender. Can be nil.
 * @param context The event data.
 * @returns true if handled, otherwise false.
 */
func (eb *EventBus) Fire(code SystemEventCode, sender interface{}, context EventContext) bool {
	if eb == nil || int(code) >= MAX_MESSAGE_CODES {
		return false
	}
	events := eb.registered[code].events
	// If nothing is registered for the code, boot out.
	if len(events) == 0 {
		return false
	}
	// Iterate over a snapshot so handlers may unregister while being called.
	snapshot := slices.Clone(events)
	for _, e := range snapshot {
		if e.callback(code, sender, e.listener, context) {
			// Message has been handled, do not send to other listeners.
			return true
		}
	}
	return false
}

// ListenerCount reports how many listeners are registered for a code.
func (eb *EventBus) ListenerCount(code SystemEventCode) int {
	if eb == nil || int(code) >= MAX_MESSAGE_CODES {
		return 0
	}
	return len(eb.registered[code].events)
}

func (eb *EventBus) Shutdown() error {
	if eb == nil {
		return nil
	}
	// Free the events arrays. And objects pointed to should be destroyed on their own.
	for i := range eb.registered {
		eb.registered[i].events = nil
	}
	return nil
}
