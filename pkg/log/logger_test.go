package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopLogger(t *testing.T) {
	var l Logger = NoopLogger{}
	l.Log(Event{Timestamp: time.Now()})

	assert.Equal(t, NoopLogger{}, OrNoop(nil))
	m := NewMemoryLogger(0)
	assert.Same(t, m, OrNoop(m))
}

func TestMultiLogger(t *testing.T) {
	a := NewMemoryLogger(0)
	b := NewMemoryLogger(0)
	m := NewMultiLogger(a, nil, b)

	m.Log(Event{Layer: LayerFence, Name: "x"})
	m.Log(Event{Layer: LayerFence, Name: "y"})

	assert.Len(t, a.Events(Filter{}), 2)
	assert.Len(t, b.Events(Filter{}), 2)
}

func TestMemoryLogger(t *testing.T) {
	t.Run("Limit", func(t *testing.T) {
		m := NewMemoryLogger(2)
		m.Log(Event{Name: "a"})
		m.Log(Event{Name: "b"})
		m.Log(Event{Name: "c"})

		events := m.Events(Filter{})
		require.Len(t, events, 2)
		assert.Equal(t, "b", events[0].Name)
		assert.Equal(t, "c", events[1].Name)
	})

	t.Run("ErrorsAndReset", func(t *testing.T) {
		m := NewMemoryLogger(0)
		e := Emitter{Logger: m, Layer: LayerFence, Name: "headphones"}
		e.State("", "REGISTERED", "")
		e.CleanupError(errors.New("boom"), "unregister on cancel")
		e.Error(nil, "ignored")

		errs := m.Errors()
		require.Len(t, errs, 1)
		assert.True(t, errs[0].Error.Cleanup)
		assert.Equal(t, "boom", errs[0].Error.Message)

		m.Reset()
		assert.Empty(t, m.Events(Filter{}))
	})
}

func TestEmitter(t *testing.T) {
	m := NewMemoryLogger(0)
	e := Emitter{Logger: m, Layer: LayerRequest, HandleID: "h", Operation: "weather"}

	e.StatusError(errors.New("request failed"), "request", 3)
	e.Delivery(DeliveryInProcess, true, 0)
	e.Info(InfoDuplicateNameReplaced, "timer")

	events := m.Events(Filter{})
	require.Len(t, events, 3)
	for _, ev := range events {
		assert.Equal(t, "h", ev.HandleID)
		assert.Equal(t, "weather", ev.Operation)
		assert.False(t, ev.Timestamp.IsZero())
	}
	require.NotNil(t, events[0].Error.Status)
	assert.Equal(t, uint8(3), *events[0].Error.Status)
	assert.Equal(t, CategoryDelivery, events[1].Category)
	assert.Equal(t, InfoDuplicateNameReplaced, events[2].Info.Code)

	// Zero emitter discards without panicking.
	Emitter{}.State("a", "b", "")
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	adapter := NewSlogAdapter(slog.New(handler))

	adapter.Log(Event{
		Timestamp: time.Now(),
		HandleID:  "handle-123",
		Layer:     LayerConnection,
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			OldState: "CONNECTING",
			NewState: "CONNECTED",
		},
	})
	adapter.Log(Event{
		Timestamp: time.Now(),
		Layer:     LayerFence,
		Category:  CategoryError,
		Name:      "headphones",
		Error:     &ErrorEventData{Layer: LayerFence, Message: "remove failed", Cleanup: true},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var state map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &state))
	assert.Equal(t, "handle-123", state["handle_id"])
	assert.Equal(t, "CONNECTION", state["layer"])
	assert.Equal(t, "CONNECTED", state["new_state"])
	assert.Equal(t, "DEBUG", state["level"])

	var failure map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &failure))
	assert.Equal(t, "WARN", failure["level"])
	assert.Equal(t, "remove failed", failure["error_msg"])
	assert.Equal(t, true, failure["cleanup"])
	assert.Equal(t, "headphones", failure["name"])
}
