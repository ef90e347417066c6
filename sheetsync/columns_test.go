package sheetsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedHeader(t *testing.T) {
	var header = expectedHeader(testFields())
	assert.Equal(t, []string{"ID", "Email", "Username", "User Role", "Company", "First Name", "Last Name"}, header)
}

func TestColumnMapTrimsAndLastDuplicateWins(t *testing.T) {
	var m = columnMap([]string{"ID", " Email ", "Phone", "Email"})
	assert.Equal(t, 0, m["ID"])
	assert.Equal(t, 3, m["Email"], "later duplicate overwrites earlier")
	assert.Equal(t, 2, m["Phone"])
}

func TestResolveColumnsKeepsOwnedHeader(t *testing.T) {
	var rows = [][]string{
		{" id ", "Custom", "Header"},
		{"1", "a@x.com", "x"},
	}
	var store = newFakeStore("Sheet1", rows)
	var engine = newTestEngine(t, testConfig(), store, newFakeDirectory())

	grid, err := engine.resolveColumns()
	require.NoError(t, err)
	assert.Equal(t, []string{" id ", "Custom", "Header"}, grid.Header, "marker match is case-insensitive and trimmed")
	assert.Empty(t, store.updates)
}

func TestResolveColumnsRegeneratesForeignHeader(t *testing.T) {
	var store = newFakeStore("Sheet1", [][]string{
		{"Name", "Whatever"},
		{"keep", "me"},
	})
	var engine = newTestEngine(t, testConfig(), store, newFakeDirectory())

	grid, err := engine.resolveColumns()
	require.NoError(t, err)
	assert.Equal(t, testHeader(), grid.Header)
	assert.Equal(t, testHeader(), store.rows["Sheet1"][0][:len(testHeader())])
	assert.Equal(t, "keep", store.rows["Sheet1"][1][0], "data rows are untouched")
	assert.Equal(t, 0, grid.Columns["ID"])
}

func TestResolveColumnsCreatesHeaderOnEmptySheet(t *testing.T) {
	var store = newFakeStore("Sheet1", nil)
	var engine = newTestEngine(t, testConfig(), store, newFakeDirectory())

	grid, err := engine.resolveColumns()
	require.NoError(t, err)
	assert.Equal(t, testHeader(), grid.Header)
	require.NotEmpty(t, store.rows["Sheet1"])
	assert.Equal(t, testHeader(), store.rows["Sheet1"][0])
}

func TestResolveColumnsUsesCache(t *testing.T) {
	var store = newFakeStore("Sheet1", [][]string{testHeader()})
	var engine = newTestEngine(t, testConfig(), store, newFakeDirectory())

	first, err := engine.resolveColumns()
	require.NoError(t, err)
	store.failGet = true // a cached grid means no second remote read
	second, err := engine.resolveColumns()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestEnsureSheetExistsCreatesMissingSheet(t *testing.T) {
	var store = newFakeStore("Other", nil)
	var cfg = testConfig() // wants "Sheet1"
	var engine = newTestEngine(t, cfg, store, newFakeDirectory())

	assert.True(t, engine.ensureSheetExists())
	require.Len(t, store.sheets, 2)
	assert.Equal(t, "Sheet1", store.sheets[1].Title)
}

func TestEnsureSheetExistsFailsWhenCreateFails(t *testing.T) {
	var store = newFakeStore("Other", nil)
	store.failCreate = true
	var engine = newTestEngine(t, testConfig(), store, newFakeDirectory())

	assert.False(t, engine.ensureSheetExists())
}

func TestSheetIDMatchesTitleCaseInsensitively(t *testing.T) {
	var store = newFakeStore("SHEET1", nil)
	var engine = newTestEngine(t, testConfig(), store, newFakeDirectory())

	id, err := engine.sheetID()
	require.NoError(t, err)
	assert.Equal(t, int64(100), id)
}
