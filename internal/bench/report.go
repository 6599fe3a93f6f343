package bench

import (
	"encoding/csv"
	"io"
	"strconv"
)

// Reporter consumes trial results as a sweep produces them.
type Reporter interface {
	Report(Result) error
	Flush() error
}

// CSVHeader is the column layout written by CSVWriter.
var CSVHeader = []string{
	"producers", "consumers", "capacity", "items_per_producer",
	"total_items", "status", "seconds", "ops_per_sec",
	"backend", "max_depth",
}

// CSVWriter writes one row per result, preceded by CSVHeader.
type CSVWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewCSVWriter returns a CSVWriter writing to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// Report writes res as a CSV row. The header is written before the first row.
func (c *CSVWriter) Report(res Result) error {
	if !c.wroteHeader {
		if err := c.w.Write(CSVHeader); err != nil {
			return err
		}
		c.wroteHeader = true
	}
	if err := c.w.Write(Row(res)); err != nil {
		return err
	}
	// Rows are flushed as they arrive so long sweeps stream.
	c.w.Flush()
	return c.w.Error()
}

// Flush writes the header if no row was reported and flushes the writer.
func (c *CSVWriter) Flush() error {
	if !c.wroteHeader {
		if err := c.w.Write(CSVHeader); err != nil {
			return err
		}
		c.wroteHeader = true
	}
	c.w.Flush()
	return c.w.Error()
}

// Row formats res in CSVHeader column order.
func Row(res Result) []string {
	return []string{
		strconv.Itoa(res.Trial.Producers),
		strconv.Itoa(res.Trial.Consumers),
		strconv.Itoa(res.Trial.Capacity),
		strconv.Itoa(res.Trial.ItemsPerProducer),
		strconv.Itoa(res.Total),
		res.Status,
		strconv.FormatFloat(res.Elapsed.Seconds(), 'f', 6, 64),
		strconv.FormatFloat(res.OpsPerSec, 'f', 0, 64),
		res.Backend,
		strconv.Itoa(res.MaxDepth),
	}
}
