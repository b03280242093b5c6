package journal

import (
	"apireq-migrate/internal/models"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"
)

// Print writes entries to w in the named format: text, json or yaml.
func Print(w io.Writer, entries []Entry, format string) error {
	switch format {
	case "", "text":
		PrintText(w, entries, time.Now())
		return nil
	case "json":
		return PrintJSON(w, entries)
	case "yaml":
		return PrintYAML(w, entries)
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

// PrintText writes one line per entry with times relative to now.
func PrintText(w io.Writer, entries []Entry, now time.Time) {
	failed := 0
	for _, e := range entries {
		icon := "✓"
		if !e.Success {
			icon = "✗"
			failed++
		}
		fmt.Fprintf(w, "%s %-6d %-30s %3d  %-8s %s\n",
			icon, e.RecordID, truncate(e.Name, 30), e.StatusCode,
			e.Duration.Round(time.Millisecond), humanize.RelTime(e.Timestamp, now, "ago", "from now"))
		if e.Error != "" {
			fmt.Fprintf(w, "  └ Error: %s\n", e.Error)
		}
	}
	fmt.Fprintf(w, "\n%d entries, %d failed\n", len(entries), failed)
}

// PrintJSON writes entries as an indented JSON array.
func PrintJSON(w io.Writer, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := models.Encode(entries)
	if err != nil {
		return fmt.Errorf("encoding entries: %w", err)
	}
	_, err = w.Write(pretty.Pretty(data))
	return err
}

// PrintYAML writes entries as a YAML sequence.
func PrintYAML(w io.Writer, entries []Entry) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encoding entries: %w", err)
	}
	return enc.Close()
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
