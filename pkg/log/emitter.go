package log

import (
	"time"
)

// Emitter stamps events with the identity of the operation producing them.
// The zero value discards everything.
type Emitter struct {
	Logger    Logger
	Layer     Layer
	HandleID  string
	Operation string
	Name      string

	// RemoteAddr is set for transport events.
	RemoteAddr string
}

// With returns a copy of the emitter bound to another layer.
func (e Emitter) With(layer Layer) Emitter {
	e.Layer = layer
	return e
}

func (e Emitter) base(category Category) Event {
	return Event{
		Timestamp:  time.Now(),
		HandleID:   e.HandleID,
		Layer:      e.Layer,
		Category:   category,
		Operation:  e.Operation,
		Name:       e.Name,
		RemoteAddr: e.RemoteAddr,
	}
}

func (e Emitter) emit(event Event) {
	if e.Logger == nil {
		return
	}
	e.Logger.Log(event)
}

// State records a state transition.
func (e Emitter) State(oldState, newState, reason string) {
	ev := e.base(CategoryState)
	ev.StateChange = &StateChangeEvent{OldState: oldState, NewState: newState, Reason: reason}
	e.emit(ev)
}

// Error records a failure of the primary operation.
func (e Emitter) Error(err error, context string) {
	e.emitError(err, context, nil, false)
}

// StatusError records a request-level failure with its service status code.
func (e Emitter) StatusError(err error, context string, code uint8) {
	e.emitError(err, context, &code, false)
}

// CleanupError records a failure while releasing resources. Such failures
// are never returned to the caller.
func (e Emitter) CleanupError(err error, context string) {
	e.emitError(err, context, nil, true)
}

func (e Emitter) emitError(err error, context string, code *uint8, cleanup bool) {
	if err == nil {
		return
	}
	ev := e.base(CategoryError)
	ev.Error = &ErrorEventData{
		Layer:   e.Layer,
		Message: err.Error(),
		Status:  code,
		Context: context,
		Cleanup: cleanup,
	}
	e.emit(ev)
}

// Delivery records a condition update delivery.
func (e Emitter) Delivery(target DeliveryTarget, state bool, payloadSize int) {
	ev := e.base(CategoryDelivery)
	ev.Delivery = &DeliveryEvent{Target: target, State: state, PayloadSize: payloadSize}
	e.emit(ev)
}

// Info records an informational notice.
func (e Emitter) Info(code InfoCode, message string) {
	ev := e.base(CategoryInfo)
	ev.Info = &InfoEvent{Code: code, Message: message}
	e.emit(ev)
}
