package frame

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/eclyon/pkg/errors"
)

// missingTokens are read as missing values.
var missingTokens = map[string]bool{"": true, "NA": true, "NaN": true, "nan": true, "null": true}

// ReadCSV reads a CSV table with a header row.
//
// Each column is typed once, here: Numeric if every non-missing value parses as
// a float, Bool if every value is true/false with none missing, String otherwise.
// Datetime columns are produced later by explicit parsing.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.NewModelError("frame.ReadCSV", "missing header", errors.ErrEmptyData)
		}
		return nil, errors.Wrap(err, "frame.ReadCSV: read header")
	}
	header = append([]string(nil), header...)

	raw := make([][]string, len(header))
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "frame.ReadCSV")
		}
		for j := range header {
			raw[j] = append(raw[j], strings.TrimSpace(rec[j]))
		}
	}

	cols := make([]*Column, len(header))
	for j, name := range header {
		cols[j] = inferColumn(strings.TrimSpace(name), raw[j])
	}
	return New(cols...)
}

func inferColumn(name string, values []string) *Column {
	if nums, ok := parseFloats(values); ok {
		return NewNumeric(name, nums)
	}
	if bools, ok := parseBools(values); ok {
		return NewBool(name, bools)
	}
	valid := make([]bool, len(values))
	for i, v := range values {
		valid[i] = !missingTokens[v]
	}
	return NewString(name, values, valid)
}

func parseFloats(values []string) ([]float64, bool) {
	out := make([]float64, len(values))
	for i, v := range values {
		if missingTokens[v] {
			out[i] = math.NaN()
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

func parseBools(values []string) ([]bool, bool) {
	if len(values) == 0 {
		return nil, false
	}
	out := make([]bool, len(values))
	for i, v := range values {
		switch strings.ToLower(v) {
		case "true":
			out[i] = true
		case "false":
			out[i] = false
		default:
			return nil, false
		}
	}
	return out, true
}

// WriteCSV writes the dataset with a header row. Missing values are written as
// empty fields.
func (d *Dataset) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(d.Names()); err != nil {
		return errors.Wrap(err, "Dataset.WriteCSV")
	}

	rec := make([]string, d.NumCols())
	for i := 0; i < d.NumRows(); i++ {
		for j, c := range d.cols {
			label, ok := c.Label(i)
			if !ok {
				label = ""
			}
			rec[j] = label
		}
		if err := writer.Write(rec); err != nil {
			return errors.Wrap(err, "Dataset.WriteCSV")
		}
	}
	writer.Flush()
	return writer.Error()
}
