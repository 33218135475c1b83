package schema

// ============================================================================
// SCHEMA — Column names and source layouts for the happiness datasets
// ============================================================================
// Two sources describe the same metrics with different column names:
//   panel     multi-year history, canonical naming, two sentiment columns
//   snapshot  one year, its own naming, carries the regional indicator
//
// Layouts declare which columns the loader reads and which must be present.
// Columns not declared by a layout are skipped at load time.
// ============================================================================

// Canonical (panel) column names.
const (
	ColEntity         = "Country name"
	ColYear           = "year"
	ColLifeLadder     = "Life Ladder"
	ColLogGDP         = "Log GDP per capita"
	ColSocialSupport  = "Social support"
	ColLifeExpectancy = "Healthy life expectancy at birth"
	ColFreedom        = "Freedom to make life choices"
	ColGenerosity     = "Generosity"
	ColCorruption     = "Perceptions of corruption"
	ColPositiveAffect = "Positive affect"
	ColNegativeAffect = "Negative affect"
	ColRegion         = "region"
)

// Snapshot-only column names. The last four are extras the loader skips.
const (
	ColRegionalIndicator     = "Regional indicator"
	ColLadderScore           = "Ladder score"
	ColLoggedGDP             = "Logged GDP per capita"
	ColHealthyLifeExpectancy = "Healthy life expectancy"
	ColLadderStandardError   = "Standard error of ladder score"
	ColUpperWhisker          = "upperwhisker"
	ColLowerWhisker          = "lowerwhisker"
	ColLadderScoreInDystopia = "Ladder score in Dystopia"
)

// Kind is the declared type of a column.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Role tells the loader which record field a column populates.
type Role int

const (
	RoleEntity Role = iota
	RoleYear
	RoleRegion
	RoleMetric
)

// ColumnSpec declares one column of a source layout.
type ColumnSpec struct {
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	Role     Role   `json:"role"`
	Required bool   `json:"required"`
}

// Layout is the declared shape of one source.
type Layout struct {
	Name    string       `json:"name"`
	Columns []ColumnSpec `json:"columns"`
}

// Lookup returns the ColumnSpec for a column name.
func (l Layout) Lookup(name string) (ColumnSpec, bool) {
	for _, c := range l.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// Required returns the names of required columns in declaration order.
func (l Layout) Required() []string {
	var out []string
	for _, c := range l.Columns {
		if c.Required {
			out = append(out, c.Name)
		}
	}
	return out
}

// Names returns every declared column name.
func (l Layout) Names() []string {
	out := make([]string, len(l.Columns))
	for i, c := range l.Columns {
		out[i] = c.Name
	}
	return out
}

// PanelLayout is the multi-year history: entity, year, seven metrics and the
// two sentiment columns. Sentiment columns are optional since the panel
// filter drops them anyway.
func PanelLayout() Layout {
	return Layout{
		Name: "panel",
		Columns: []ColumnSpec{
			{Name: ColEntity, Kind: KindString, Role: RoleEntity, Required: true},
			{Name: ColYear, Kind: KindInt, Role: RoleYear, Required: true},
			metric(ColLifeLadder, true),
			metric(ColLogGDP, true),
			metric(ColSocialSupport, true),
			metric(ColLifeExpectancy, true),
			metric(ColFreedom, true),
			metric(ColGenerosity, true),
			metric(ColCorruption, true),
			metric(ColPositiveAffect, false),
			metric(ColNegativeAffect, false),
		},
	}
}

// SnapshotLayout is the single-year report in its native naming.
func SnapshotLayout() Layout {
	return Layout{
		Name: "snapshot",
		Columns: []ColumnSpec{
			{Name: ColEntity, Kind: KindString, Role: RoleEntity, Required: true},
			{Name: ColRegionalIndicator, Kind: KindString, Role: RoleRegion, Required: true},
			metric(ColLadderScore, true),
			metric(ColLoggedGDP, true),
			metric(ColSocialSupport, true),
			metric(ColHealthyLifeExpectancy, true),
			metric(ColFreedom, true),
			metric(ColGenerosity, true),
			metric(ColCorruption, true),
		},
	}
}

func metric(name string, required bool) ColumnSpec {
	return ColumnSpec{Name: name, Kind: KindFloat, Role: RoleMetric, Required: required}
}

// SnapshotRenames maps snapshot column names onto panel column names.
// Returns a fresh map on every call.
func SnapshotRenames() map[string]string {
	return map[string]string{
		ColLadderScore:           ColLifeLadder,
		ColLoggedGDP:             ColLogGDP,
		ColHealthyLifeExpectancy: ColLifeExpectancy,
	}
}

// SentimentColumns are the panel columns the snapshot does not carry.
func SentimentColumns() []string {
	return []string{ColPositiveAffect, ColNegativeAffect}
}

// MetricColumns lists the metrics shared by both sources, canonical naming.
func MetricColumns() []string {
	return []string{
		ColLifeLadder,
		ColLogGDP,
		ColSocialSupport,
		ColLifeExpectancy,
		ColFreedom,
		ColGenerosity,
		ColCorruption,
	}
}

// MergedColumns is the exact column set of the merged table.
func MergedColumns() []string {
	cols := []string{ColEntity, ColYear}
	cols = append(cols, MetricColumns()...)
	return append(cols, ColRegion)
}
