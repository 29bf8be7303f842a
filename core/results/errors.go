package results

import (
	"fmt"
	"sort"
	"strings"
)

// BalanceError reports a solved value that breaks a conservation law. It
// points at a formulation bug, never at bad input.
type BalanceError struct {
	Check string
	// Interval is -1 for checks over the whole horizon.
	Interval int
	In       float64
	Out      float64
}

func (e *BalanceError) Error() string {
	if e.Interval < 0 {
		return fmt.Sprintf("results: %s violated: %v != %v", e.Check, e.In, e.Out)
	}
	return fmt.Sprintf("results: %s violated in interval %d: %v != %v", e.Check, e.Interval, e.In, e.Out)
}

// SpillError lists the spill columns used by a solution when spill use is
// configured as fatal.
type SpillError struct {
	Columns map[string]float64
	Total   int
}

func (e *SpillError) Error() string {
	return "results: spill occurred: " + describeSpill(e.Columns, e.Total)
}

func describeSpill(cols map[string]float64, total int) string {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%.6g", name, cols[name])
	}
	return fmt.Sprintf("%d of %d spill columns [%s]", len(cols), total, strings.Join(parts, " "))
}
