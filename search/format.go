package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/gookit/color"
)

// FormatResult renders one run for the terminal.
func FormatResult[T comparable](target T, r *Result[T]) string {
	var b strings.Builder
	b.WriteString(color.Bold.Sprint("Target:    "))
	b.WriteString(fmt.Sprintf("%v\n", target))
	b.WriteString(color.Bold.Sprint("Result:    "))
	if r.Found() {
		b.WriteString(color.Green.Sprintf("found %v\n", r.Node.Value))
	} else {
		b.WriteString(color.Yellow.Sprint("not found\n"))
	}
	b.WriteString(color.Bold.Sprint("Visited:   "))
	b.WriteString(fmt.Sprintf("%d\n", r.Visited))
	b.WriteString(color.Bold.Sprint("Spawned:   "))
	b.WriteString(fmt.Sprintf("%d\n", r.Spawned))
	b.WriteString(color.Bold.Sprint("Skipped:   "))
	b.WriteString(fmt.Sprintf("%d\n", r.Skipped))
	b.WriteString(color.Bold.Sprint("Discarded: "))
	b.WriteString(fmt.Sprintf("%d\n", r.Discarded))
	b.WriteString(color.Bold.Sprint("Elapsed:   "))
	b.WriteString(fmt.Sprintf("%s\n", r.Elapsed.Round(time.Microsecond)))
	b.WriteString(color.Gray.Sprintf("Run:       %s\n", r.RunID))
	return b.String()
}

// FormatSummary renders totals over a batch of runs.
func FormatSummary[T comparable](results []*Result[T]) string {
	var (
		found   int
		visited int64
		elapsed time.Duration
	)
	for _, r := range results {
		if r.Found() {
			found++
		}
		visited += r.Visited
		elapsed += r.Elapsed
	}
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(color.Gray.Sprint("--------------------------------------------------------------------------------"))
	b.WriteString("\n")
	b.WriteString(color.Cyan.Sprint("Summary"))
	b.WriteString("\n")
	b.WriteString(color.Gray.Sprint("--------------------------------------------------------------------------------"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Searches:      %d\n", len(results)))
	b.WriteString(fmt.Sprintf("  Found:         %d\n", found))
	b.WriteString(fmt.Sprintf("  Nodes visited: %d\n", visited))
	b.WriteString(fmt.Sprintf("  Search time:   %s\n", elapsed.Round(time.Microsecond)))
	return b.String()
}
