// Package export writes optimisation results as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/kilianp07/energylp/core/results"
)

// Formats lists the supported output formats.
var Formats = []string{"csv", "json"}

// Write dispatches to the writer of format.
func Write(w io.Writer, format string, res *results.SimulationResult) error {
	switch format {
	case "csv":
		return WriteCSV(w, res.Table)
	case "json":
		return WriteJSON(w, res)
	default:
		return fmt.Errorf("export: unknown format %q", format)
	}
}

// WriteCSV writes the table with one row per interval. The first column is
// the interval index; infeasible values are written as NaN.
func WriteCSV(w io.Writer, t *results.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"interval"}, t.Names()...)); err != nil {
		return err
	}
	cols := t.Columns()
	for i := 0; i < t.Rows(); i++ {
		rec := make([]string, 0, len(cols)+1)
		rec = append(rec, strconv.Itoa(i))
		for _, c := range cols {
			rec = append(rec, strconv.FormatFloat(c.Values[i], 'f', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonColumn struct {
	Name      string     `json:"name"`
	Asset     string     `json:"asset,omitempty"`
	Attribute string     `json:"attribute,omitempty"`
	Kind      string     `json:"kind"`
	Spill     bool       `json:"spill,omitempty"`
	Values    []*float64 `json:"values"`
}

type jsonResult struct {
	RunID        string             `json:"run_id"`
	Site         string             `json:"site"`
	Feasible     bool               `json:"feasible"`
	Objective    *float64           `json:"objective"`
	Spill        bool               `json:"spill"`
	SpillColumns map[string]float64 `json:"spill_columns,omitempty"`
	Intervals    int                `json:"intervals"`
	Columns      []jsonColumn       `json:"columns"`
}

// finite maps NaN and infinities to null.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// WriteJSON writes the result summary followed by every column in table
// order.
func WriteJSON(w io.Writer, res *results.SimulationResult) error {
	out := jsonResult{
		RunID:        res.RunID,
		Site:         res.Site,
		Feasible:     res.Feasible,
		Objective:    finite(res.Objective),
		Spill:        res.Spill,
		SpillColumns: res.SpillColumns,
		Intervals:    res.Table.Rows(),
	}
	for _, c := range res.Table.Columns() {
		jc := jsonColumn{
			Name:      c.Name,
			Asset:     c.Asset,
			Attribute: c.Attribute,
			Kind:      c.Kind.String(),
			Spill:     c.Spill,
			Values:    make([]*float64, len(c.Values)),
		}
		for i, v := range c.Values {
			jc.Values[i] = finite(v)
		}
		out.Columns = append(out.Columns, jc)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
