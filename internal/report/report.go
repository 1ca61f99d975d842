// Package report renders a history as a text table.
package report

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dshills/rewind/internal/history"
)

// Snapshot is the state of a history at one moment.
type Snapshot struct {
	Entries  []history.Info
	Cursor   int
	Capacity int
}

// Take captures h.
func Take(h *history.History) Snapshot {
	return Snapshot{
		Entries:  h.Entries(),
		Cursor:   h.Cursor(),
		Capacity: h.Capacity(),
	}
}

// Options controls Render.
type Options struct {
	// Timestamps adds a TIME column.
	Timestamps bool
}

// Render writes s as an aligned table followed by a summary line. The row at
// the cursor is marked with ">".
func Render(w io.Writer, s Snapshot, opts Options) error {
	if len(s.Entries) == 0 {
		if _, err := fmt.Fprintln(w, "no history"); err != nil {
			return err
		}
		return summary(w, s)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := "\t#\t"
	if opts.Timestamps {
		header += "TIME\t"
	}
	fmt.Fprintln(tw, header+"TAG\tDESCRIPTION\tSTATE")

	for _, e := range s.Entries {
		marker := ""
		if e.Index == s.Cursor {
			marker = ">"
		}
		row := marker + "\t" + strconv.Itoa(e.Index) + "\t"
		if opts.Timestamps {
			row += e.Timestamp.Format("15:04:05") + "\t"
		}
		state := "undone"
		if e.Applied {
			state = "applied"
		}
		fmt.Fprintln(tw, row+orDash(e.GroupTag)+"\t"+orDash(e.Description)+"\t"+state)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return summary(w, s)
}

func summary(w io.Writer, s Snapshot) error {
	_, err := fmt.Fprintf(w, "cursor: %d  entries: %d  capacity: %d\n", s.Cursor, len(s.Entries), s.Capacity)
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
