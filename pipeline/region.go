package pipeline

import (
	"sort"

	"github.com/spektr-org/ladder/table"
)

// RegionLookup maps entity names to the region the snapshot assigns them.
// Read-only after construction.
type RegionLookup struct {
	regions   map[string]string
	conflicts map[string]bool
}

// NewRegionLookup indexes every snapshot row. When an entity appears more
// than once, the last row wins; entities whose rows disagree are reported
// by Conflicts.
func NewRegionLookup(snapshot *table.Frame) *RegionLookup {
	l := &RegionLookup{
		regions:   make(map[string]string, snapshot.Len()),
		conflicts: make(map[string]bool),
	}
	for i := 0; i < snapshot.Len(); i++ {
		r := snapshot.Record(i)
		if prev, ok := l.regions[r.Entity]; ok && prev != r.Region {
			l.conflicts[r.Entity] = true
		}
		l.regions[r.Entity] = r.Region
	}
	return l
}

// Resolve returns the entity's region. Unknown entities, and entities whose
// snapshot region was empty, resolve to table.UnknownRegion with ok false.
func (l *RegionLookup) Resolve(entity string) (region string, ok bool) {
	region = l.regions[entity]
	if region == "" {
		return table.UnknownRegion, false
	}
	return region, true
}

// Len is the number of distinct entities indexed.
func (l *RegionLookup) Len() int { return len(l.regions) }

// Conflicts lists, sorted, the entities whose snapshot rows named
// different regions.
func (l *RegionLookup) Conflicts() []string {
	out := make([]string, 0, len(l.conflicts))
	for e := range l.conflicts {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
