// Package write serializes close-approach records to CSV or JSON.
//
// Records whose approach is unlinked are written with the approach's own
// designation, an empty name, an unknown diameter and a false hazard flag.
package write

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"iter"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/ajitpratap0/neo-explorer/internal/metrics"
	"github.com/ajitpratap0/neo-explorer/internal/models"
)

// ErrUnsupportedFormat is returned by Write for an output path whose
// extension selects no writer.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// CSVHeader is the header row of CSV output.
var CSVHeader = []string{
	"datetime_utc", "distance_au", "velocity_km_s",
	"designation", "name", "diameter_km", "potentially_hazardous",
}

// Entry is one element of JSON output. Field order is the key order.
type Entry struct {
	DatetimeUTC string   `json:"datetime_utc"`
	DistanceAU  float64  `json:"distance_au"`
	VelocityKmS float64  `json:"velocity_km_s"`
	NEO         EntryNEO `json:"neo"`
}

// EntryNEO is the nested object of an Entry. DiameterKm is null when the
// diameter is unknown.
type EntryNEO struct {
	Designation          string   `json:"designation"`
	Name                 string   `json:"name"`
	DiameterKm           *float64 `json:"diameter_km"`
	PotentiallyHazardous bool     `json:"potentially_hazardous"`
}

// Diameter returns the diameter, NaN when unknown.
func (n EntryNEO) Diameter() float64 {
	if n.DiameterKm == nil {
		return math.NaN()
	}
	return *n.DiameterKm
}

// Write writes results to path, choosing CSV or JSON by its extension.
func Write(path string, results iter.Seq[models.Record]) (int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return WriteCSV(path, results)
	case ".json":
		return WriteJSON(path, results)
	default:
		return 0, errors.WithHint(errors.Wrapf(ErrUnsupportedFormat, "output %s", path),
			"use a .csv or .json file name")
	}
}

// WriteCSV writes results to a CSV file at path.
func WriteCSV(path string, results iter.Seq[models.Record]) (int, error) {
	return writeFile(path, results, EncodeCSV)
}

// WriteJSON writes results to a JSON file at path.
func WriteJSON(path string, results iter.Seq[models.Record]) (int, error) {
	return writeFile(path, results, EncodeJSON)
}

func writeFile(path string, results iter.Seq[models.Record], encode func(io.Writer, iter.Seq[models.Record]) (int, error)) (n int, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, errors.Wrapf(err, "creating %s", path)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "closing %s", path)
		}
	}()

	n, err = encode(f, results)
	if err != nil {
		return n, errors.Wrapf(err, "writing %s", path)
	}
	metrics.Add(metrics.RecordsWritten, int64(n))
	return n, nil
}

// EncodeCSV writes the header and one row per record to w.
func EncodeCSV(w io.Writer, results iter.Seq[models.Record]) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return 0, errors.Wrap(err, "writing CSV header")
	}

	n := 0
	for r := range results {
		neo := entryNEO(r)
		diameter := "nan"
		if neo.DiameterKm != nil {
			diameter = formatFloat(*neo.DiameterKm)
		}
		row := []string{
			r.Approach.TimeString(),
			formatFloat(r.Approach.Distance),
			formatFloat(r.Approach.Velocity),
			neo.Designation,
			neo.Name,
			diameter,
			hazardFlag(neo.PotentiallyHazardous),
		}
		if err := cw.Write(row); err != nil {
			return n, errors.Wrap(err, "writing CSV row")
		}
		n++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, errors.Wrap(err, "flushing CSV")
	}
	return n, nil
}

// EncodeJSON writes records to w as an indented JSON array.
func EncodeJSON(w io.Writer, results iter.Seq[models.Record]) (int, error) {
	entries := []Entry{}
	for r := range results {
		entries = append(entries, NewEntry(r))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return 0, errors.Wrap(err, "encoding JSON")
	}
	return len(entries), nil
}

// DecodeJSON reads output previously written by EncodeJSON.
func DecodeJSON(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, errors.Wrap(err, "decoding JSON")
	}
	return entries, nil
}

// NewEntry converts a record to its JSON output shape.
func NewEntry(r models.Record) Entry {
	return Entry{
		DatetimeUTC: r.Approach.TimeString(),
		DistanceAU:  r.Approach.Distance,
		VelocityKmS: r.Approach.Velocity,
		NEO:         entryNEO(r),
	}
}

func entryNEO(r models.Record) EntryNEO {
	if r.NEO == nil {
		return EntryNEO{Designation: r.Approach.Designation}
	}
	out := EntryNEO{
		Designation:          r.NEO.Designation,
		Name:                 r.NEO.DisplayName(),
		PotentiallyHazardous: r.NEO.Hazardous,
	}
	if r.NEO.HasDiameter() {
		d := r.NEO.Diameter
		out.DiameterKm = &d
	}
	return out
}

func hazardFlag(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
