// Package export renders entity lists as spreadsheets.
package export

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"libraryapi/internal/query"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Write streams items as a single-sheet workbook: one header row of field
// names, then one row per entity in the given order.
func Write[E any](w io.Writer, sheet string, schema *query.Schema[E], items []E) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return errors.Wrap(err, "name sheet")
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return errors.Wrap(err, "open stream writer")
	}

	fields := schema.Fields()
	header := make([]any, len(fields))
	for i, fld := range fields {
		header[i] = fld.Name()
	}
	if err := sw.SetRow("A1", header); err != nil {
		return errors.Wrap(err, "write header")
	}

	for r := range items {
		row := make([]any, len(fields))
		for i, fld := range fields {
			row[i] = cellValue(fld.Get(&items[r]))
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return errors.Wrapf(err, "row %d", r+2)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return errors.Wrapf(err, "write row %d", r+2)
		}
	}

	if err := sw.Flush(); err != nil {
		return errors.Wrap(err, "flush sheet")
	}
	_, err = f.WriteTo(w)
	return errors.Wrap(err, "write workbook")
}

func cellValue(v any) any {
	switch v := v.(type) {
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.UTC().Format(time.RFC3339)
	case uuid.UUID:
		if v == uuid.Nil {
			return ""
		}
		return v.String()
	}
	return v
}
