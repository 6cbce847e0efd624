// Package ingest parses raw hangboard force recordings.
//
// The input is a headerless five-column CSV produced by the force gauge:
// epoch timestamp (ms), sample number, raw battery reading, measured mass
// (kg), and a trailing masses column the analysis does not use. Parsing
// normalizes timestamps to a zero-based millisecond offset and converts
// the mass column to newtons.
package ingest

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultGravityMPS2 is the kilogram-force to newton conversion factor.
const DefaultGravityMPS2 = 9.81

// ErrMalformedInput marks rows that cannot be interpreted as recorder
// output. Any single bad row fails the whole file; there is no
// partial-row recovery.
var ErrMalformedInput = errors.New("malformed recording")

// ParseFile reads and parses a recording CSV from disk.
func ParseFile(path string, gravityMPS2 float64) (*Recording, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("input path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recording file: %w", err)
	}
	return ParseBytes(data, gravityMPS2)
}

// ParseBytes parses raw CSV bytes into the row/sample model used by the
// analysis and by JSONL export.
func ParseBytes(data []byte, gravityMPS2 float64) (*Recording, error) {
	if gravityMPS2 <= 0 {
		gravityMPS2 = DefaultGravityMPS2
	}
	sum := sha256.Sum256(data)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = columnCount
	cr.TrimLeadingSpace = true

	rows := make([]Row, 0, 4096)
	samples := make([]Sample, 0, 4096)
	var firstEpochMS int64

	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}

		idx := len(rows)
		row, err := parseRow(idx, fields)
		if err != nil {
			return nil, err
		}
		if idx == 0 {
			firstEpochMS = row.TimestampEpochMS
		}
		row.ElapsedMS = float64(row.TimestampEpochMS - firstEpochMS)
		row.ForceN = row.MassKG * gravityMPS2

		rows = append(rows, row)
		samples = append(samples, Sample{TimestampMS: row.ElapsedMS, ForceN: row.ForceN})
	}

	return &Recording{
		Rows:            rows,
		Samples:         samples,
		GravityMPS2:     gravityMPS2,
		SourceSHA256:    hex.EncodeToString(sum[:]),
		SourceSizeBytes: int64(len(data)),
	}, nil
}

func parseRow(idx int, fields []string) (Row, error) {
	ts, err := strconv.ParseInt(strings.TrimSpace(fields[colTimestamp]), 10, 64)
	if err != nil {
		return Row{}, fmt.Errorf("%w: row %d: timestamp %q is not an integer", ErrMalformedInput, idx+1, fields[colTimestamp])
	}

	numeric := make([]float64, columnCount)
	for col := colSampleNumber; col < columnCount; col++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[col]), 64)
		if err != nil {
			return Row{}, fmt.Errorf("%w: row %d: column %d %q is not numeric", ErrMalformedInput, idx+1, col+1, fields[col])
		}
		numeric[col] = v
	}

	return Row{
		RowIndex:         idx,
		TimestampEpochMS: ts,
		SampleNumber:     numeric[colSampleNumber],
		BattRaw:          numeric[colBattRaw],
		MassKG:           numeric[colMassKG],
		Masses:           numeric[colMasses],
	}, nil
}
