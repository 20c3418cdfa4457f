package commands

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Mauin/ReactiveAwareness/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)

func sampleEvents() []log.Event {
	status := uint8(3)
	return []log.Event{
		{
			Timestamp: base,
			HandleID:  "abc12345-6789-0123-4567-890abcdef012",
			Layer:     log.LayerConnection,
			Category:  log.CategoryState,
			Operation: "observe",
			Name:      "headphones",
			StateChange: &log.StateChangeEvent{
				OldState: "IDLE",
				NewState: "CONNECTING",
			},
		},
		{
			Timestamp: base.Add(10 * time.Millisecond),
			HandleID:  "abc12345-6789-0123-4567-890abcdef012",
			Layer:     log.LayerFence,
			Category:  log.CategoryDelivery,
			Operation: "observe",
			Name:      "headphones",
			Delivery:  &log.DeliveryEvent{Target: log.DeliveryInProcess, State: true},
		},
		{
			Timestamp: base.Add(20 * time.Millisecond),
			HandleID:  "abc12345-6789-0123-4567-890abcdef012",
			Layer:     log.LayerFence,
			Category:  log.CategoryError,
			Operation: "observe",
			Name:      "headphones",
			Error: &log.ErrorEventData{
				Layer:   log.LayerFence,
				Message: "request failed: TIMEOUT",
				Status:  &status,
				Context: "unregister on cancel",
				Cleanup: true,
			},
		},
		{
			Timestamp: base.Add(30 * time.Millisecond),
			HandleID:  "abc12345-6789-0123-4567-890abcdef012",
			Layer:     log.LayerConnection,
			Category:  log.CategoryState,
			Operation: "observe",
			Name:      "headphones",
			StateChange: &log.StateChangeEvent{
				OldState: "DISCONNECTING",
				NewState: "DISCONNECTED",
			},
		},
		{
			Timestamp: base.Add(40 * time.Millisecond),
			Layer:     log.LayerFence,
			Category:  log.CategoryInfo,
			Operation: "register",
			Name:      "timer",
			Info:      &log.InfoEvent{Code: log.InfoDuplicateNameReplaced, Message: "timer"},
		},
	}
}

func writeLog(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "diag.dlog")
	logger, err := log.NewFileLogger(path)
	require.NoError(t, err)
	for _, e := range events {
		logger.Log(e)
	}
	require.NoError(t, logger.Close())
	return path
}

func TestFormatEvent(t *testing.T) {
	events := sampleEvents()

	tests := []struct {
		name  string
		event log.Event
		want  []string
	}{
		{"state", events[0], []string{"2026-01-28T10:15:32.123456Z", "[handle:abc12345]", "CONNECTION State", "op=observe", "name=headphones", "IDLE -> CONNECTING"}},
		{"delivery", events[1], []string{"FENCE Delivery", "IN_PROCESS state=true"}},
		{"error", events[2], []string{"Message: request failed: TIMEOUT", "Status: 3", "Context: unregister on cancel", "(during cleanup)"}},
		{"info", events[4], []string{"[handle:-]", "DUPLICATE_NAME_REPLACED", "name=timer"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			formatEvent(&buf, tt.event)
			output := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("expected %q in output, got: %s", want, output)
				}
			}
		})
	}
}

func TestParseFlags(t *testing.T) {
	l, err := ParseLayerFlag("Dispatch")
	require.NoError(t, err)
	assert.Equal(t, log.LayerDispatch, l)

	c, err := ParseCategoryFlag("INFO")
	require.NoError(t, err)
	assert.Equal(t, log.CategoryInfo, c)

	_, err = ParseLayerFlag("wire")
	assert.Error(t, err)
	_, err = ParseCategoryFlag("message")
	assert.Error(t, err)
}

func TestRunView(t *testing.T) {
	path := writeLog(t, sampleEvents())

	var buf bytes.Buffer
	filter, err := FilterOptions{Category: "error"}.Build()
	require.NoError(t, err)
	require.NoError(t, RunView(path, filter, &buf))

	output := buf.String()
	assert.Equal(t, 1, strings.Count(output, "[handle:"))
	assert.Contains(t, output, "unregister on cancel")
}

func TestRunStats(t *testing.T) {
	path := writeLog(t, sampleEvents())

	var buf bytes.Buffer
	require.NoError(t, RunStats(path, &buf))
	output := buf.String()

	for _, want := range []string{
		"Total Events: 5",
		"CONNECTION:  2",
		"FENCE:       3",
		"IN_PROCESS:  1",
		"Handles: 1",
		"observe headphones, ended DISCONNECTED",
		"DUPLICATE_NAME_REPLACED: 1",
		"Errors: 1 (1 during cleanup)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in stats, got:\n%s", want, output)
		}
	}
}

func TestRunFilter(t *testing.T) {
	path := writeLog(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "filtered.dlog")

	n, err := RunFilter(path, out, FilterOptions{Name: "headphones", Layer: "connection"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	reader, err := log.NewReader(out)
	require.NoError(t, err)
	defer reader.Close()
	count := 0
	for {
		e, err := reader.Next()
		if err != nil {
			break
		}
		assert.Equal(t, log.LayerConnection, e.Layer)
		count++
	}
	assert.Equal(t, 2, count)
}

func TestFilterOptionsErrors(t *testing.T) {
	tests := []FilterOptions{
		{TimeStart: "yesterday"},
		{TimeEnd: "2026-13-01"},
		{Layer: "wire"},
		{Category: "message"},
	}
	for _, opts := range tests {
		if _, err := opts.Build(); err == nil {
			t.Errorf("Build(%+v) error = nil, want error", opts)
		}
	}

	start := base.Add(15 * time.Millisecond).Format(time.RFC3339Nano)
	f, err := FilterOptions{TimeStart: start}.Build()
	require.NoError(t, err)
	require.NotNil(t, f.TimeStart)
}

func TestExport(t *testing.T) {
	path := writeLog(t, sampleEvents())

	t.Run("CSV", func(t *testing.T) {
		reader, err := log.NewReader(path)
		require.NoError(t, err)
		defer reader.Close()

		var buf bytes.Buffer
		require.NoError(t, export(reader, "csv", &buf))

		rows, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 6)
		assert.Equal(t, "handle_id", rows[0][1])
		assert.Equal(t, "IDLE->CONNECTING", rows[1][6])
		assert.Equal(t, "IN_PROCESS:true", rows[2][6])
	})

	t.Run("JSONL", func(t *testing.T) {
		reader, err := log.NewReader(path)
		require.NoError(t, err)
		defer reader.Close()

		var buf bytes.Buffer
		require.NoError(t, export(reader, "jsonl", &buf))
		assert.Equal(t, 5, strings.Count(buf.String(), "\n"))
	})

	t.Run("Unknown", func(t *testing.T) {
		reader, err := log.NewReader(path)
		require.NoError(t, err)
		defer reader.Close()
		assert.Error(t, export(reader, "xml", &bytes.Buffer{}))
	})
}
