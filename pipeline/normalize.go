package pipeline

import (
	"github.com/spektr-org/ladder/schema"
	"github.com/spektr-org/ladder/table"
)

// NormalizeSnapshot renames snapshot columns onto panel naming and stamps
// year on every row. Renaming is exact-match; unmapped names pass through.
// The input frame is not modified and no row is dropped.
func NormalizeSnapshot(snapshot *table.Frame, year int) *table.Frame {
	return renameAndStamp(snapshot, schema.SnapshotRenames(), year)
}

func renameAndStamp(in *table.Frame, renames map[string]string, year int) *table.Frame {
	columns := in.Columns()
	for i, c := range columns {
		if to, ok := renames[c]; ok {
			columns[i] = to
		}
	}
	if !in.HasColumn(schema.ColYear) {
		columns = append(columns, schema.ColYear)
	}

	records := in.Records()
	for i := range records {
		cells := make(map[string]table.Value, len(records[i].Cells))
		for k, v := range records[i].Cells {
			if to, ok := renames[k]; ok {
				k = to
			}
			cells[k] = v
		}
		records[i].Cells = cells
		records[i].Year = year
	}

	meta := in.Meta()
	meta.Path = ""
	return table.NewFrame(meta, columns, records)
}
