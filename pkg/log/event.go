package log

import (
	"time"
)

// Event is a diagnostic event captured at any layer of the bridge.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// HandleID identifies the connection handle (UUID) the event belongs to.
	// Empty for events not tied to a handle.
	HandleID string `cbor:"2,keyasint,omitempty"`

	// Layer where the event was captured.
	Layer Layer `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Operation names the caller-facing operation (observe, register, ...).
	Operation string `cbor:"5,keyasint,omitempty"`

	// Name is the condition registration name, if any.
	Name string `cbor:"6,keyasint,omitempty"`

	// RemoteAddr is the peer address for transport events.
	RemoteAddr string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	StateChange *StateChangeEvent `cbor:"10,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"11,keyasint,omitempty"`
	Delivery    *DeliveryEvent    `cbor:"12,keyasint,omitempty"`
	Info        *InfoEvent        `cbor:"13,keyasint,omitempty"`
}

// Layer indicates which part of the bridge captured the event.
type Layer uint8

const (
	// LayerConnection is the connection handle lifecycle.
	LayerConnection Layer = 0
	// LayerRequest is the single-shot request adapter.
	LayerRequest Layer = 1
	// LayerFence is the condition monitor engine.
	LayerFence Layer = 2
	// LayerDispatch is the out-of-process dispatch router.
	LayerDispatch Layer = 3
	// LayerTransport is the framed transport at the dispatch address.
	LayerTransport Layer = 4
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerConnection:
		return "CONNECTION"
	case LayerRequest:
		return "REQUEST"
	case LayerFence:
		return "FENCE"
	case LayerDispatch:
		return "DISPATCH"
	case LayerTransport:
		return "TRANSPORT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryState indicates a lifecycle state change.
	CategoryState Category = 0
	// CategoryError indicates an error event.
	CategoryError Category = 1
	// CategoryDelivery indicates a condition update delivery.
	CategoryDelivery Category = 2
	// CategoryInfo indicates an informational notice.
	CategoryInfo Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	case CategoryDelivery:
		return "DELIVERY"
	case CategoryInfo:
		return "INFO"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures handle and stream lifecycle transitions.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Status is the service status code for request-level failures.
	Status *uint8 `cbor:"3,keyasint,omitempty"`

	// Context describes what was being performed ("unregister on cancel").
	Context string `cbor:"4,keyasint,omitempty"`

	// Cleanup is true when the error happened while releasing resources
	// after the primary outcome was already determined.
	Cleanup bool `cbor:"5,keyasint,omitempty"`
}

// DeliveryTarget distinguishes in-process and out-of-process deliveries.
type DeliveryTarget uint8

const (
	// DeliveryInProcess is a stream element handed to a live consumer.
	DeliveryInProcess DeliveryTarget = 0
	// DeliveryPersistent is an envelope routed through the dispatch address.
	DeliveryPersistent DeliveryTarget = 1
)

// String returns the delivery target name.
func (d DeliveryTarget) String() string {
	switch d {
	case DeliveryInProcess:
		return "IN_PROCESS"
	case DeliveryPersistent:
		return "PERSISTENT"
	default:
		return "UNKNOWN"
	}
}

// DeliveryEvent captures one condition update delivery.
type DeliveryEvent struct {
	Target      DeliveryTarget `cbor:"1,keyasint"`
	State       bool           `cbor:"2,keyasint"`
	PayloadSize int            `cbor:"3,keyasint,omitempty"`
}

// InfoCode identifies an informational notice.
type InfoCode uint8

const (
	// InfoDuplicateNameReplaced records that a registration replaced an
	// existing one with the same name. Not an error.
	InfoDuplicateNameReplaced InfoCode = 1
	// InfoUnregisterSkipped records that cleanup skipped the unregister
	// because the connection was already gone.
	InfoUnregisterSkipped InfoCode = 2
)

// String returns the info code name.
func (c InfoCode) String() string {
	switch c {
	case InfoDuplicateNameReplaced:
		return "DUPLICATE_NAME_REPLACED"
	case InfoUnregisterSkipped:
		return "UNREGISTER_SKIPPED"
	default:
		return "UNKNOWN"
	}
}

// InfoEvent captures informational notices.
type InfoEvent struct {
	Code    InfoCode `cbor:"1,keyasint"`
	Message string   `cbor:"2,keyasint,omitempty"`
}
