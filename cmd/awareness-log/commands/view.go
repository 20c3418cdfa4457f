// Package commands implements the awareness-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/Mauin/ReactiveAwareness/pkg/log"
)

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [handle:id] LAYER Type op name
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	handleID := shortenID(event.HandleID)

	var typeLabel string
	switch {
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Error != nil:
		typeLabel = "Error"
	case event.Delivery != nil:
		typeLabel = "Delivery"
	case event.Info != nil:
		typeLabel = event.Info.Code.String()
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [handle:%s] %s %s", ts, handleID, event.Layer, typeLabel)
	if event.Operation != "" {
		fmt.Fprintf(w, " op=%s", event.Operation)
	}
	if event.Name != "" {
		fmt.Fprintf(w, " name=%s", event.Name)
	}
	fmt.Fprintln(w)

	if event.RemoteAddr != "" {
		fmt.Fprintf(w, "  Remote: %s\n", event.RemoteAddr)
	}

	switch {
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	case event.Delivery != nil:
		formatDeliveryDetails(w, event.Delivery)
	case event.Info != nil:
		if event.Info.Message != "" {
			fmt.Fprintf(w, "  %s\n", event.Info.Message)
		}
	}

	fmt.Fprintln(w)
}

// shortenID returns the first 8 characters of a handle or connection ID.
func shortenID(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer)
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Status != nil {
		fmt.Fprintf(w, "  Status: %d\n", *err.Status)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
	if err.Cleanup {
		fmt.Fprintln(w, "  (during cleanup)")
	}
}

func formatDeliveryDetails(w io.Writer, d *log.DeliveryEvent) {
	fmt.Fprintf(w, "  %s state=%t", d.Target, d.State)
	if d.PayloadSize > 0 {
		fmt.Fprintf(w, " payload=%d bytes", d.PayloadSize)
	}
	fmt.Fprintln(w)
}

// ParseLayerFlag parses a layer string from command-line flag (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	return parseLayer(s)
}

func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "connection":
		return log.LayerConnection, nil
	case "request":
		return log.LayerRequest, nil
	case "fence":
		return log.LayerFence, nil
	case "dispatch":
		return log.LayerDispatch, nil
	case "transport":
		return log.LayerTransport, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be connection, request, fence, dispatch, or transport)", s)
	}
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	return parseCategory(s)
}

func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	case "delivery":
		return log.CategoryDelivery, nil
	case "info":
		return log.CategoryInfo, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be state, error, delivery, or info)", s)
	}
}

// RunView writes the events of the log file matching filter to output.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}
