package pipeline

import (
	"fmt"

	"github.com/spektr-org/ladder/schema"
	"github.com/spektr-org/ladder/table"
)

// FilterPanel keeps the panel rows whose entity the snapshot also covers and
// drops the sentiment columns. Row order is preserved. The second return
// value lists excluded entities in first-seen order; under CoveragePanel
// nothing is excluded.
//
// Returns an EmptyIntersection error when the two sources share no entity,
// whatever the policy.
func FilterPanel(panel *table.Frame, snapshotEntities []string, policy CoveragePolicy) (*table.Frame, []string, error) {
	covered := make(map[string]bool, len(snapshotEntities))
	for _, e := range snapshotEntities {
		covered[e] = true
	}

	shared := 0
	var excluded []string
	for _, e := range panel.Entities() {
		if covered[e] {
			shared++
			continue
		}
		if policy != CoveragePanel {
			excluded = append(excluded, e)
		}
	}
	if shared == 0 {
		return nil, nil, &table.Error{
			Kind:   table.KindEmptyIntersection,
			Source: panel.Name(),
			Detail: fmt.Sprintf("none of %d panel entities appear among %d snapshot entities",
				len(panel.Entities()), len(snapshotEntities)),
		}
	}

	drop := make(map[string]bool)
	for _, c := range schema.SentimentColumns() {
		drop[c] = true
	}

	var columns []string
	for _, c := range panel.Columns() {
		if !drop[c] {
			columns = append(columns, c)
		}
	}

	var records []table.Record
	for _, r := range panel.Records() {
		if policy != CoveragePanel && !covered[r.Entity] {
			continue
		}
		for c := range drop {
			delete(r.Cells, c)
		}
		records = append(records, r)
	}

	meta := panel.Meta()
	meta.Path = ""
	return table.NewFrame(meta, columns, records), excluded, nil
}
