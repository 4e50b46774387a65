// Package extract reads the raw near-Earth object catalog (CSV) and the
// close-approach extract (JSON) into unlinked model collections.
//
// Both loaders share one policy for bad rows: a row that cannot be parsed is
// skipped with a warning and counted in metrics.RowsSkipped, and loading
// continues. Problems with the document itself (unreadable input, missing
// header or field manifest) abort the load.
package extract

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/ajitpratap0/neo-explorer/internal/metrics"
	"github.com/ajitpratap0/neo-explorer/internal/models"
)

// Catalog column names.
const (
	ColDesignation = "pdes"
	ColName        = "name"
	ColDiameter    = "diameter"
	ColHazardous   = "pha"
)

// Close-approach field names.
const (
	FieldTime        = "cd"
	FieldDistance    = "dist"
	FieldVelocity    = "v_rel"
	FieldDesignation = "des"
)

// hazardousFlag is the catalog's code for a potentially hazardous object.
const hazardousFlag = "Y"

// LoadNEOs reads the near-Earth object catalog at path.
func LoadNEOs(path string, logger *slog.Logger) ([]models.NearEarthObject, error) {
	f, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return ReadNEOs(f, path, logger)
}

// ReadNEOs parses a catalog CSV from r. source names the input in errors and logs.
func ReadNEOs(r io.Reader, source string, logger *slog.Logger) ([]models.NearEarthObject, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SchemaError{Source: source, Field: ColDesignation}
		}
		return nil, errors.Wrapf(err, "reading header of %s", source)
	}

	cols, err := resolveColumns(source, header, ColDesignation, ColName, ColDiameter, ColHazardous)
	if err != nil {
		return nil, err
	}
	width := maxIndex(cols) + 1

	var neos []models.NearEarthObject
	for {
		rec, readErr := cr.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			var parseErr *csv.ParseError
			if errors.As(readErr, &parseErr) {
				skipRow(logger, source, parseErr.StartLine, parseErr.Err.Error())
				continue
			}
			return nil, errors.Wrapf(readErr, "reading %s", source)
		}

		line, _ := cr.FieldPos(0)
		if len(rec) < width {
			skipRow(logger, source, line, "row has too few fields")
			continue
		}

		designation := strings.TrimSpace(rec[cols[ColDesignation]])
		if designation == "" {
			skipRow(logger, source, line, "blank designation")
			continue
		}

		diameter := math.NaN()
		if raw := strings.TrimSpace(rec[cols[ColDiameter]]); raw != "" {
			d, parseErr := strconv.ParseFloat(raw, 64)
			if parseErr != nil || math.IsInf(d, 0) {
				skipRow(logger, source, line, "invalid diameter "+strconv.Quote(raw))
				continue
			}
			diameter = d
		}

		neos = append(neos, models.NewNearEarthObject(
			designation,
			strings.TrimSpace(rec[cols[ColName]]),
			diameter,
			strings.TrimSpace(rec[cols[ColHazardous]]) == hazardousFlag,
		))
	}

	metrics.Add(metrics.NEOsLoaded, int64(len(neos)))
	logger.Debug("extract: loaded near-Earth objects", "source", source, "count", len(neos))
	return neos, nil
}

// cadDocument is the close-approach extract: a field manifest and a row matrix.
type cadDocument struct {
	Fields []string `json:"fields"`
	Data   [][]any  `json:"data"`
}

// LoadApproaches reads the close-approach extract at path.
func LoadApproaches(path string, logger *slog.Logger) ([]models.CloseApproach, error) {
	f, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return ReadApproaches(f, path, logger)
}

// ReadApproaches parses a close-approach JSON document from r.
func ReadApproaches(r io.Reader, source string, logger *slog.Logger) ([]models.CloseApproach, error) {
	var doc cadDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", source)
	}

	cols, err := resolveColumns(source, doc.Fields, FieldTime, FieldDistance, FieldVelocity, FieldDesignation)
	if err != nil {
		return nil, err
	}
	width := maxIndex(cols) + 1

	approaches := make([]models.CloseApproach, 0, len(doc.Data))
	for i, row := range doc.Data {
		rowNum := i + 1
		if len(row) < width {
			skipRow(logger, source, rowNum, "row has too few fields")
			continue
		}

		designation, ok := cellString(row[cols[FieldDesignation]])
		if !ok || designation == "" {
			skipRow(logger, source, rowNum, "missing designation")
			continue
		}

		rawTime, ok := cellString(row[cols[FieldTime]])
		if !ok {
			skipRow(logger, source, rowNum, "missing approach time")
			continue
		}
		t, parseErr := time.Parse(models.CADTimeLayout, rawTime)
		if parseErr != nil {
			skipRow(logger, source, rowNum, "invalid approach time "+strconv.Quote(rawTime))
			continue
		}

		distance, parseErr := cellFloat(row[cols[FieldDistance]])
		if parseErr != nil {
			skipRow(logger, source, rowNum, "invalid distance: "+parseErr.Error())
			continue
		}

		velocity, parseErr := cellFloat(row[cols[FieldVelocity]])
		if parseErr != nil {
			skipRow(logger, source, rowNum, "invalid velocity: "+parseErr.Error())
			continue
		}

		approaches = append(approaches, models.NewCloseApproach(designation, t, distance, velocity))
	}

	metrics.Add(metrics.ApproachesLoaded, int64(len(approaches)))
	logger.Debug("extract: loaded close approaches", "source", source, "count", len(approaches))
	return approaches, nil
}

// resolveColumns maps each required name to its position in header.
func resolveColumns(source string, header []string, required ...string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	cols := make(map[string]int, len(required))
	for _, name := range required {
		idx, ok := positions[name]
		if !ok {
			return nil, &SchemaError{Source: source, Field: name}
		}
		cols[name] = idx
	}
	return cols, nil
}

func maxIndex(cols map[string]int) int {
	m := -1
	for _, idx := range cols {
		m = max(m, idx)
	}
	return m
}

func skipRow(logger *slog.Logger, source string, row int, reason string) {
	metrics.Inc(metrics.RowsSkipped)
	logger.Warn("extract: skipping malformed row", "source", source, "row", row, "reason", reason)
}

func cellString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	default:
		return "", false
	}
}

func cellFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, errors.Newf("%q is not a finite number", x)
		}
		return f, nil
	case nil:
		return 0, errors.New("value is null")
	default:
		return 0, errors.Newf("unexpected %T value", v)
	}
}
