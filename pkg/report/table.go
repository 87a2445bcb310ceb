package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/menta2k/chlorophyll-imager/pkg/types"
)

// Table lists every cell row-major with 1-indexed row and column numbers
func Table(grid *types.EstimateGrid) []types.TableRow {
	rows := make([]types.TableRow, 0, grid.Rows*grid.Columns)
	for r := 0; r < grid.Rows; r++ {
		for c := 0; c < grid.Columns; c++ {
			rows = append(rows, types.TableRow{Row: r + 1, Column: c + 1, Value: grid.At(r, c)})
		}
	}
	return rows
}

// Summary describes the assigned cells of a grid. The statistics are zero
// when no cell is assigned.
type Summary struct {
	Cells      int     `json:"cells"`
	Assigned   int     `json:"assigned"`
	Unassigned int     `json:"unassigned"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
}

// Summarize computes statistics over the assigned cells
func Summarize(grid *types.EstimateGrid) Summary {
	s := Summary{Cells: len(grid.Values)}
	values := make([]float64, 0, len(grid.Values))
	for i, v := range grid.Values {
		if grid.Source[i] >= 0 {
			values = append(values, v)
		}
	}
	s.Assigned = len(values)
	s.Unassigned = s.Cells - s.Assigned
	if len(values) == 0 {
		return s
	}

	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		s.StdDev = 0
	}
	s.Min = floats.Min(values)
	s.Max = floats.Max(values)
	return s
}

// WriteCSV writes the table with the Row,Column,chl header
func WriteCSV(w io.Writer, rows []types.TableRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Row", "Column", "chl"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Row),
			strconv.Itoa(r.Column),
			strconv.FormatFloat(r.Value, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d,%d: %w", r.Row, r.Column, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Cell is a table row in JSON form; Chl is null for an unassigned cell
type Cell struct {
	Row    int      `json:"row"`
	Column int      `json:"column"`
	Chl    *float64 `json:"chl"`
}

// Report is the machine-readable result of processing one image
type Report struct {
	Image            string  `json:"image"`
	Status           string  `json:"status"`
	Rows             int     `json:"rows"`
	Columns          int     `json:"columns"`
	Regions          int     `json:"regions"`
	DroppedRegions   int     `json:"dropped_regions"`
	Cells            []Cell  `json:"cells"`
	Summary          Summary `json:"summary"`
	GrayscaleDivisor float64 `json:"grayscale_divisor,omitempty"`
}

// Cells converts table rows to their JSON form
func Cells(rows []types.TableRow) []Cell {
	cells := make([]Cell, len(rows))
	for i, r := range rows {
		cells[i] = Cell{Row: r.Row, Column: r.Column}
		if !math.IsNaN(r.Value) && !math.IsInf(r.Value, 0) {
			v := r.Value
			cells[i].Chl = &v
		}
	}
	return cells
}

// WriteJSON writes the report as indented JSON
func WriteJSON(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// GrayscaleName appends the decoding hint to the base name of a grayscale
// output: multiplying a pixel value by divisor recovers the estimate.
func GrayscaleName(base string, divisor float64) string {
	return fmt.Sprintf("%s__chl=pixelValue_multiplied_by_%.1f", base, divisor)
}
