package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/imdesk/imclient/pkg/log"
)

// RunExport converts the log file to jsonl or csv.
func RunExport(path, format, output string) error {
	if format != "jsonl" && format != "csv" {
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "csv" {
		return exportCSV(reader, w)
	}
	return exportJSONL(reader, w)
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "attempt_id", "username", "remote_addr", "layer", "category", "type", "detail"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		eventType, detail := "unknown", ""
		switch {
		case event.Frame != nil:
			eventType = "frame_" + event.Direction.String()
			detail = strconv.Itoa(event.Frame.Size)
		case event.StateChange != nil:
			eventType = "state"
			detail = event.StateChange.NewState
		case event.Outcome != nil:
			eventType = "outcome"
			detail = event.Outcome.Kind
			if event.Outcome.Category != "" {
				detail += "/" + event.Outcome.Category
			}
		case event.Error != nil:
			eventType = "error"
			detail = event.Error.Message
		}

		row := []string{
			event.Timestamp.UTC().Format(timeLayout),
			event.AttemptID,
			event.Username,
			event.RemoteAddr,
			event.Layer.String(),
			event.Category.String(),
			eventType,
			detail,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
}
