package history

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"
)

// WriteYAML writes entries as a YAML sequence.
func WriteYAML(w io.Writer, entries []Entry) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("history: encode yaml: %w", err)
	}
	return enc.Close()
}

// WriteTable writes entries as aligned columns, one line per cycle.
func WriteTable(w io.Writer, entries []Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tENGINE\tDURATION\tOUTCOME\tTEXT")
	for _, e := range entries {
		detail := e.Text
		if e.Outcome == OutcomeFailed {
			detail = e.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.StartedAt.Format("2006-01-02 15:04:05"),
			e.Engine,
			e.Duration.Round(100*time.Millisecond),
			e.Outcome,
			truncate(strings.TrimSpace(detail), 60))
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
