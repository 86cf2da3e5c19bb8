// Package rows reads tabular input for batch generation.
//
// One Row corresponds to one output asset. Rows are keyed by column name
// so that a ColumnMapping can pull values without caring about column
// order in the source file.
package rows

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/bannerforge/bannerforge/pkg/errors"
)

// Row is one record of uploaded tabular data, keyed by column name.
type Row map[string]string

// Value returns the trimmed value of the named column. Missing columns
// return the empty string; absence is "use default", never an error.
func (r Row) Value(column string) string {
	return strings.TrimSpace(r[column])
}

// Set holds the parsed upload: ordered headers plus one Row per record.
type Set struct {
	Headers []string
	Rows    []Row
}

// ReadCSV parses CSV data into a Set. The first record is the header row.
// An upload with no data rows is an input error per the batch contract:
// the job is never created.
func ReadCSV(r io.Reader) (*Set, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // tolerate ragged rows; missing cells resolve to defaults

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse csv")
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyUpload, "upload contains no rows")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	set := &Set{Headers: headers}
	for _, rec := range records[1:] {
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			}
		}
		set.Rows = append(set.Rows, row)
	}

	if len(set.Rows) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyUpload, "upload contains a header but no data rows")
	}
	return set, nil
}
