package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/spektr-org/ladder/schema"
	"github.com/spektr-org/ladder/table"
)

const panelHeader = "Country name,year,Life Ladder,Log GDP per capita,Social support," +
	"Healthy life expectancy at birth,Freedom to make life choices,Generosity," +
	"Perceptions of corruption,Positive affect,Negative affect"

const snapshotHeader = "Country name,Regional indicator,Ladder score,Standard error of ladder score," +
	"upperwhisker,lowerwhisker,Logged GDP per capita,Social support,Healthy life expectancy," +
	"Freedom to make life choices,Generosity,Perceptions of corruption,Ladder score in Dystopia"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func lines(rows ...string) string {
	return strings.Join(rows, "\n") + "\n"
}

// ============================================================================
// DELIMITED SOURCES
// ============================================================================

func TestLoadFrame_Panel(t *testing.T) {
	path := writeFile(t, "panel.csv", lines(
		panelHeader,
		"Wonderland,2005,6.1,9.2,0.8,65.1,0.7,0.01,0.6,0.7,0.2",
		"Wonderland,2006,6.2,9.3,,65.2,0.7,NaN,0.6,0.7,0.2",
		"  Elbonia ,2006,4.1,8.1,0.6,55.0,0.5,-0.1,0.9,,",
	))

	frame, err := LoadFrame(context.Background(), path, schema.PanelLayout(), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	assert.Equal(t, schema.PanelLayout().Names(), frame.Columns())
	assert.Equal(t, "panel", frame.Name())
	assert.Equal(t, path, frame.Meta().Path)
	require.Equal(t, 3, frame.Len())

	first := frame.Record(0)
	assert.Equal(t, "Wonderland", first.Entity)
	assert.Equal(t, 2005, first.Year)
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, table.Float(6.1), first.Cell(schema.ColLifeLadder))
	assert.Equal(t, table.Float(0.2), first.Cell(schema.ColNegativeAffect))

	second := frame.Record(1)
	assert.False(t, second.Cell(schema.ColSocialSupport).Valid, "empty cell")
	assert.False(t, second.Cell(schema.ColGenerosity).Valid, "NaN cell")

	third := frame.Record(2)
	assert.Equal(t, "Elbonia", third.Entity, "entity trimmed")
	assert.Equal(t, table.Float(-0.1), third.Cell(schema.ColGenerosity))
	assert.False(t, third.Cell(schema.ColPositiveAffect).Valid)
}

func TestLoadFrame_SnapshotSkipsExtraColumns(t *testing.T) {
	path := writeFile(t, "snapshot.csv", lines(
		snapshotHeader,
		`Wonderland,"Fictiona  North",7.842,0.032,7.904,7.780,10.775,0.954,72.0,0.949,-0.098,0.186,2.43`,
	))

	frame, err := LoadFrame(context.Background(), path, schema.SnapshotLayout())
	require.NoError(t, err)

	assert.Equal(t, []string{
		schema.ColEntity,
		schema.ColRegionalIndicator,
		schema.ColLadderScore,
		schema.ColLoggedGDP,
		schema.ColSocialSupport,
		schema.ColHealthyLifeExpectancy,
		schema.ColFreedom,
		schema.ColGenerosity,
		schema.ColCorruption,
	}, frame.Columns())
	assert.False(t, frame.HasColumn(schema.ColUpperWhisker))

	rec := frame.Record(0)
	assert.Equal(t, "Fictiona North", rec.Region, "inner whitespace collapsed")
	assert.Equal(t, 0, rec.Year)
	assert.Equal(t, table.Float(7.842), rec.Cell(schema.ColLadderScore))
	assert.NotContains(t, rec.Cells, schema.ColLadderScoreInDystopia)
}

func TestLoadFrame_TSVAndDelimiter(t *testing.T) {
	tsv := strings.ReplaceAll(lines(panelHeader, "Wonderland,2010,6.5,9.5,0.8,66,0.7,0.1,0.5,0.7,0.2"), ",", "\t")
	frame, err := LoadFrame(context.Background(), writeFile(t, "panel.tsv", tsv), schema.PanelLayout())
	require.NoError(t, err)
	assert.Equal(t, 2010, frame.Record(0).Year)

	semi := strings.ReplaceAll(lines(panelHeader, "Wonderland,2011,6.5,9.5,0.8,66,0.7,0.1,0.5,0.7,0.2"), ",", ";")
	frame, err = LoadFrame(context.Background(), writeFile(t, "panel.txt", semi), schema.PanelLayout(), WithDelimiter(';'))
	require.NoError(t, err)
	assert.Equal(t, 2011, frame.Record(0).Year)
}

func TestLoadFrame_BOMAndUnicode(t *testing.T) {
	decomposed := "Co\u0302te d'Ivoire"
	path := writeFile(t, "panel.csv", lines(
		"\ufeff"+panelHeader,
		decomposed+",2015,5.0,8.0,0.6,50,0.7,0.0,0.7,0.6,0.3",
	))

	frame, err := LoadFrame(context.Background(), path, schema.PanelLayout())
	require.NoError(t, err)
	assert.Equal(t, "C\u00f4te d'Ivoire", frame.Record(0).Entity)
}

// ============================================================================
// WORKBOOKS
// ============================================================================

func writeWorkbook(t *testing.T, sheet string, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, r := range rows {
		cells := make([]interface{}, len(r))
		for j, v := range r {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &cells))
	}

	path := filepath.Join(t.TempDir(), "snapshot.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadFrame_Workbook(t *testing.T) {
	rows := [][]string{
		strings.Split(snapshotHeader, ","),
		{"Wonderland", "Fictiona", "7.842", "0.032", "7.904", "7.780", "10.775", "0.954", "72.0", "0.949", "-0.098", "0.186", "2.43"},
		{},
		{"Elbonia", "Muddy Lands", "4.2", "0.05", "4.3", "4.1", "8.1", "0.6", "55", "0.5", "0.1"},
	}

	t.Run("first sheet", func(t *testing.T) {
		frame, err := LoadFrame(context.Background(), writeWorkbook(t, "Sheet1", rows), schema.SnapshotLayout())
		require.NoError(t, err)
		require.Equal(t, 2, frame.Len(), "blank row skipped")
		assert.Equal(t, table.Float(7.842), frame.Record(0).Cell(schema.ColLadderScore))
		assert.Equal(t, 4, frame.Record(1).Line)
		assert.False(t, frame.Record(1).Cell(schema.ColCorruption).Valid, "trailing cells padded as missing")
	})

	t.Run("named sheet", func(t *testing.T) {
		path := writeWorkbook(t, "Report 2021", rows)
		frame, err := LoadFrame(context.Background(), path, schema.SnapshotLayout(), WithSheet("Report 2021"))
		require.NoError(t, err)
		assert.Equal(t, 2, frame.Len())

		_, err = LoadFrame(context.Background(), path, schema.SnapshotLayout(), WithSheet("Nope"))
		assert.True(t, errors.Is(err, table.ErrSourceUnavailable))
	})
}

// ============================================================================
// FAILURES
// ============================================================================

func TestLoadFrame_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.csv")
	_, err := LoadFrame(context.Background(), path, schema.PanelLayout())
	require.Error(t, err)
	assert.True(t, errors.Is(err, table.ErrSourceUnavailable))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.True(t, table.IsFatal(err))

	var te *table.Error
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "panel", te.Source)
	assert.Equal(t, path, te.Path)
}

func TestLoadFrame_EmptyFile(t *testing.T) {
	_, err := LoadFrame(context.Background(), writeFile(t, "panel.csv", ""), schema.PanelLayout())
	assert.True(t, errors.Is(err, table.ErrSourceUnavailable))
}

func TestLoadFrame_MissingColumnSuggests(t *testing.T) {
	header := strings.Replace(panelHeader, "Life Ladder", "Life Ladder score", 1)
	path := writeFile(t, "panel.csv", lines(header, "Wonderland,2005,6.1,9.2,0.8,65.1,0.7,0.01,0.6,0.7,0.2"))

	_, err := LoadFrame(context.Background(), path, schema.PanelLayout())
	require.Error(t, err)
	assert.True(t, errors.Is(err, table.ErrSchemaMismatch))

	var te *table.Error
	require.True(t, errors.As(err, &te))
	assert.Equal(t, schema.ColLifeLadder, te.Column)
	assert.Contains(t, te.Detail, `did you mean "Life Ladder score"?`)
}

func TestLoadFrame_MalformedRows(t *testing.T) {
	good := "Wonderland,2005,6.1,9.2,0.8,65.1,0.7,0.01,0.6,0.7,0.2"
	tests := []struct {
		name   string
		row    string
		column string
	}{
		{"bad year", "Wonderland,20x6,6.1,9.2,0.8,65.1,0.7,0.01,0.6,0.7,0.2", schema.ColYear},
		{"year out of range", "Wonderland,2004,6.1,9.2,0.8,65.1,0.7,0.01,0.6,0.7,0.2", schema.ColYear},
		{"bad metric", "Wonderland,2006,high,9.2,0.8,65.1,0.7,0.01,0.6,0.7,0.2", schema.ColLifeLadder},
		{"empty entity", " ,2006,6.1,9.2,0.8,65.1,0.7,0.01,0.6,0.7,0.2", schema.ColEntity},
		{"short row", "Wonderland,2006,6.1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "panel.csv", lines(panelHeader, good, tt.row))

			_, err := LoadFrame(context.Background(), path, schema.PanelLayout())
			require.Error(t, err)
			assert.True(t, errors.Is(err, table.ErrMalformedRow))

			var te *table.Error
			require.True(t, errors.As(err, &te))
			assert.Equal(t, 3, te.Line)
			assert.Equal(t, tt.column, te.Column)
			assert.Equal(t, "panel", te.Source)

			frame, err := LoadFrame(context.Background(), path, schema.PanelLayout(), WithSkipMalformed(true))
			require.NoError(t, err)
			assert.Equal(t, 1, frame.Len())
			assert.Equal(t, 1, frame.Meta().Skipped)
		})
	}
}

func TestLoadFrame_YearRange(t *testing.T) {
	path := writeFile(t, "panel.csv", lines(panelHeader, "Wonderland,2001,6.1,9.2,0.8,65.1,0.7,0.01,0.6,0.7,0.2"))

	_, err := LoadFrame(context.Background(), path, schema.PanelLayout())
	assert.True(t, errors.Is(err, table.ErrMalformedRow))

	frame, err := LoadFrame(context.Background(), path, schema.PanelLayout(), WithYearRange(2000, 2021))
	require.NoError(t, err)
	assert.Equal(t, 2001, frame.Record(0).Year)
}

func TestLoadFrame_Cancelled(t *testing.T) {
	path := writeFile(t, "panel.csv", lines(panelHeader, "Wonderland,2005,6.1,9.2,0.8,65.1,0.7,0.01,0.6,0.7,0.2"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadFrame(ctx, path, schema.PanelLayout())
	assert.True(t, errors.Is(err, context.Canceled))
}

// ============================================================================
// LOAD SOURCES
// ============================================================================

func TestLoadSources(t *testing.T) {
	defer goleak.VerifyNone(t)

	panel := writeFile(t, "panel.csv", lines(panelHeader, "Wonderland,2005,6.1,9.2,0.8,65.1,0.7,0.01,0.6,0.7,0.2"))
	snapshot := writeFile(t, "snapshot.csv", lines(snapshotHeader,
		"Wonderland,Fictiona,7.842,0.032,7.904,7.780,10.775,0.954,72.0,0.949,-0.098,0.186,2.43"))

	p, s, err := LoadSources(context.Background(), panel, snapshot)
	require.NoError(t, err)
	assert.Equal(t, "panel", p.Name())
	assert.Equal(t, "snapshot", s.Name())
	assert.Equal(t, 1, p.Len())
	assert.Equal(t, 1, s.Len())
}

func TestLoadSources_OneFails(t *testing.T) {
	defer goleak.VerifyNone(t)

	panel := writeFile(t, "panel.csv", lines(panelHeader, "Wonderland,2005,6.1,9.2,0.8,65.1,0.7,0.01,0.6,0.7,0.2"))
	missing := filepath.Join(t.TempDir(), "snapshot.csv")

	p, s, err := LoadSources(context.Background(), panel, missing)
	require.Error(t, err)
	assert.Nil(t, p)
	assert.Nil(t, s)
	assert.Equal(t, table.KindSourceUnavailable, table.KindOf(err))

	var te *table.Error
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "snapshot", te.Source)
}

// ============================================================================
// RAW ACCESS
// ============================================================================

func TestReadRaw(t *testing.T) {
	path := writeFile(t, "odd.csv", lines("Country, score ,extra", "A,1", "B,x,y"))

	header, rows, err := ReadRaw(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Country", "score", "extra"}, header)
	assert.Equal(t, [][]string{{"A", "1"}, {"B", "x", "y"}}, rows)
}

func TestNormalizeEntity(t *testing.T) {
	tests := map[string]string{
		"  Wonderland  ":       "Wonderland",
		"Hong Kong   S.A.R.":  "Hong Kong S.A.R.",
		"Co\u0302te d'Ivoire": "C\u00f4te d'Ivoire",
		"":                     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeEntity(in), "%q", in)
	}
}
