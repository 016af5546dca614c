package sheet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-registry/sheet"
)

func TestTable_CellPadsMissingColumns(t *testing.T) {
	table := sheet.Table{
		Header: []string{"a", "b", "c"},
		Rows:   [][]string{{"1"}, {"2", "x", "y"}},
	}

	assert.Equal(t, "1", table.Cell(0, "a"))
	assert.Equal(t, "", table.Cell(0, "c"), "short rows read as empty")
	assert.Equal(t, "", table.Cell(1, "missing"), "unknown columns read as empty")
	assert.Equal(t, "", table.Cell(5, "a"), "out of range rows read as empty")
	assert.Equal(t, "y", table.Cell(1, " c "))
}

func TestCellUpdate_ApplyWritesOnlyNamedCells(t *testing.T) {
	header := []string{"id", "state", "by"}
	row := []string{"E1", ""}

	update := sheet.CellUpdate{
		Row:     0,
		Columns: []string{"state", "by"},
		Values:  []string{"done", "E2"},
		Expect:  map[string]string{"state": ""},
	}

	out, err := update.Apply(header, row)
	require.NoError(t, err)
	assert.Equal(t, []string{"E1", "done", "E2"}, out)
	assert.Equal(t, []string{"E1", ""}, row, "input row must not be modified")
}

func TestCellUpdate_ApplyRejectsStaleExpectation(t *testing.T) {
	// GIVEN: The cell was already written by someone else
	header := []string{"id", "state"}
	row := []string{"E1", "done"}

	// WHEN: An update expects it to still be empty
	update := sheet.CellUpdate{
		Columns: []string{"state"},
		Values:  []string{"done"},
		Expect:  map[string]string{"state": ""},
	}
	_, err := update.Apply(header, row)

	// THEN: The write is refused with a conflict
	require.ErrorIs(t, err, sheet.ErrConflict)
	var conflict *sheet.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "done", conflict.Actual)
}

func TestCellUpdate_ApplyRejectsUnknownColumn(t *testing.T) {
	update := sheet.CellUpdate{Columns: []string{"nope"}, Values: []string{"x"}}
	_, err := update.Apply([]string{"id"}, []string{"E1"})
	assert.ErrorIs(t, err, sheet.ErrUnknownColumn)
}

func TestCellUpdate_ValidateMismatchedValues(t *testing.T) {
	update := sheet.CellUpdate{Columns: []string{"a", "b"}, Values: []string{"x"}}
	assert.ErrorIs(t, update.Validate(), sheet.ErrMalformedUpdate)

	update = sheet.CellUpdate{Row: -1, Columns: []string{"a"}, Values: []string{"x"}}
	assert.ErrorIs(t, update.Validate(), sheet.ErrRowOutOfRange)
}

func TestMergeHeader_AppendsMissingColumns(t *testing.T) {
	merged, added := sheet.MergeHeader(
		[]string{"maNVYT", "HuyPhep"},
		[]string{"maNVYT", "HuyPhep", "nguoiHuy"},
	)
	assert.True(t, added)
	assert.Equal(t, []string{"maNVYT", "HuyPhep", "nguoiHuy"}, merged)

	_, added = sheet.MergeHeader(merged, []string{"nguoiHuy"})
	assert.False(t, added)
}
